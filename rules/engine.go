package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine runs compiled rules against the turn each time the agent plays.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category, keeping competing tactics off the same budget.
type Engine struct {
	mu     sync.RWMutex
	rules  []*Rule
	Memory map[string]any
	memMu  sync.Mutex // guards all reads/writes to Memory

	lastDiagTurn int
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		rules:        compiled,
		Memory:       make(map[string]any),
		lastDiagTurn: -idleDiagInterval,
	}, nil
}

// Evaluate runs all rules against the turn and returns the names of the rules that fired.
func (e *Engine) Evaluate(t *Turn) ([]string, error) {
	if t == nil || t.Builder == nil {
		return nil, fmt.Errorf("evaluate: turn has no builder")
	}
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	e.memMu.Lock()
	defer e.memMu.Unlock()

	env := RuleEnv{T: t, Memory: e.Memory}
	fired := make(map[string]bool) // category → exclusive rule already fired

	var names []string
	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		names = append(names, r.Name)
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)

		if err := r.Action(env); err != nil {
			slog.Error("rule action error", "rule", r.Name, "error", err)
		}

		if r.Exclusive {
			fired[r.Category] = true
		}
	}

	if len(names) == 0 {
		e.logIdleDiagnostics(env)
	}

	return names, nil
}

// Swap atomically replaces the rule set (called by the strategist when the
// doctrine changes). Compiles first; if compilation fails the old rules
// remain active. Memory survives the swap so attack cadence carries over.
func (e *Engine) Swap(newRules []*Rule) error {
	compiled, err := compileRules(newRules)
	if err != nil {
		return err
	}
	names := make([]string, len(compiled))
	for i, r := range compiled {
		names[i] = r.Name
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled), "rules", names)
	return nil
}

// Rules returns the active rule set in evaluation order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Rule(nil), e.rules...)
}

const idleDiagInterval = 5

// logIdleDiagnostics helps debug "why isn't the agent doing anything?" by
// dumping the ledger when zero rules fire. Throttled to avoid log spam.
func (e *Engine) logIdleDiagnostics(env RuleEnv) {
	turn := env.TurnNumber()
	if turn-e.lastDiagTurn < idleDiagInterval {
		return
	}
	e.lastDiagTurn = turn

	slog.Warn("idle diagnostics",
		"turn", turn,
		"sp", env.SP(),
		"mp", env.MP(),
		"commands", len(env.T.Builder.Commands()),
		"turnsSinceAttack", env.TurnsSinceAttack(),
		"breaches", env.BreachCount(),
	)
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
