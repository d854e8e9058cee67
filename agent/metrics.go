package agent

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nstehr/funnel/agent"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics are no-ops until a global MeterProvider is installed.
type metrics struct {
	turns    metric.Int64Counter
	repairs  metric.Int64Counter
	removals metric.Int64Counter
	attacks  metric.Int64Counter
	breaches metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&out.turns, "funnel.turns", "Turns played"},
		{&out.repairs, "funnel.repairs.scheduled", "Structures rebuilt by the repair scheduler"},
		{&out.removals, "funnel.removals.scheduled", "Damaged structures scheduled for removal"},
		{&out.attacks, "funnel.attacks.committed", "Attack methods committed"},
		{&out.breaches, "funnel.breaches", "Opponent units that reached our edge"},
	}
	for _, c := range counters {
		*c.dst, err = m.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}
	return &out, nil
}

func (m *metrics) turn(ctx context.Context, repairs, removals int) {
	m.turns.Add(ctx, 1)
	m.repairs.Add(ctx, int64(repairs))
	m.removals.Add(ctx, int64(removals))
}

func (m *metrics) attack(ctx context.Context, method string) {
	m.attacks.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

func (m *metrics) breach(ctx context.Context, side string) {
	m.breaches.Add(ctx, 1, metric.WithAttributes(attribute.String("side", side)))
}
