package rules

import (
	"testing"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/turn"
)

func newTurn(number int, sp, mp float64) *Turn {
	s := model.EmptySnapshot(number, model.DefaultConfig())
	s.Resources[0] = model.ResourcePool{SP: sp, MP: mp}
	return &Turn{Builder: turn.New(s)}
}

func TestDoctrineRulesCompile(t *testing.T) {
	engine, err := NewEngine(CompileDoctrine(DefaultDoctrine()))
	if err != nil {
		t.Fatalf("NewEngine(CompileDoctrine()) failed: %v", err)
	}
	if len(engine.rules) != 6 {
		t.Errorf("expected 6 rules, got %d", len(engine.rules))
	}
	for i := 1; i < len(engine.rules); i++ {
		if engine.rules[i].Priority > engine.rules[i-1].Priority {
			t.Errorf("rules not sorted by priority: %s (%d) > %s (%d)",
				engine.rules[i].Name, engine.rules[i].Priority,
				engine.rules[i-1].Name, engine.rules[i-1].Priority)
		}
	}
}

func TestNewEngineRejectsBadCondition(t *testing.T) {
	_, err := NewEngine([]*Rule{{Name: "bad", ConditionSrc: `NoSuchHelper()`, Action: func(RuleEnv) error { return nil }}})
	if err == nil {
		t.Fatal("expected compile error for unknown helper")
	}
}

func TestEvaluateExclusiveCategory(t *testing.T) {
	noop := func(RuleEnv) error { return nil }
	engine, err := NewEngine([]*Rule{
		{Name: "low", Priority: 5, Category: "a", ConditionSrc: `true`, Action: noop},
		{Name: "high", Priority: 10, Category: "a", Exclusive: true, ConditionSrc: `true`, Action: noop},
		{Name: "other", Priority: 1, Category: "b", ConditionSrc: `TurnNumber() == 3`, Action: noop},
		{Name: "never", Priority: 7, Category: "c", ConditionSrc: `false`, Action: noop},
	})
	if err != nil {
		t.Fatal(err)
	}
	fired, err := engine.Evaluate(newTurn(3, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 2 || fired[0] != "high" || fired[1] != "other" {
		t.Errorf("fired = %v, want [high other]", fired)
	}
}

func TestEvaluateWithoutBuilder(t *testing.T) {
	engine, _ := NewEngine(nil)
	if _, err := engine.Evaluate(&Turn{}); err == nil {
		t.Error("expected error for turn without builder")
	}
}

func TestSwapKeepsRulesOnFailure(t *testing.T) {
	engine, err := NewEngine(CompileDoctrine(DefaultDoctrine()))
	if err != nil {
		t.Fatal(err)
	}
	before := len(engine.Rules())
	err = engine.Swap([]*Rule{{Name: "bad", ConditionSrc: `1 +`}})
	if err == nil {
		t.Fatal("expected swap error")
	}
	if got := len(engine.Rules()); got != before {
		t.Errorf("rules after failed swap = %d, want %d", got, before)
	}

	engine.Memory["lastAttackTurn"] = 4
	if err := engine.Swap(CompileDoctrine(Doctrine{Aggression: 1})); err != nil {
		t.Fatal(err)
	}
	if engine.Memory["lastAttackTurn"] != 4 {
		t.Error("memory cleared by swap")
	}
}

func TestEvaluateOpeningStall(t *testing.T) {
	engine, err := NewEngine(CompileDoctrine(DefaultDoctrine()))
	if err != nil {
		t.Fatal(err)
	}
	tn := newTurn(1, 0, 5)
	fired, err := engine.Evaluate(tn)
	if err != nil {
		t.Fatal(err)
	}
	if len(fired) != 1 || fired[0] != "stall-interceptors" {
		t.Errorf("fired = %v, want [stall-interceptors]", fired)
	}
	if got := len(tn.Builder.Commands()); got != 2 {
		t.Errorf("commands = %d, want 2", got)
	}
}

func hasFired(fired []string, name string) bool {
	for _, n := range fired {
		if n == name {
			return true
		}
	}
	return false
}

func TestEvaluateStallWhileTrailing(t *testing.T) {
	engine, err := NewEngine(CompileDoctrine(DefaultDoctrine()))
	if err != nil {
		t.Fatal(err)
	}

	even := newTurn(6, 0, 2)
	even.Builder.Snapshot().Health = [2]float64{20, 20}
	fired, err := engine.Evaluate(even)
	if err != nil {
		t.Fatal(err)
	}
	if hasFired(fired, "stall-interceptors") {
		t.Errorf("fired = %v, stall after the opening on even health", fired)
	}

	trailing := newTurn(7, 0, 2)
	trailing.Builder.Snapshot().Health = [2]float64{12, 20}
	fired, err = engine.Evaluate(trailing)
	if err != nil {
		t.Fatal(err)
	}
	if !hasFired(fired, "stall-interceptors") {
		t.Errorf("fired = %v, want stall-interceptors while trailing", fired)
	}
}

func TestEvaluateDemolisherPushNeedsStructures(t *testing.T) {
	engine, err := NewEngine(CompileDoctrine(DefaultDoctrine()))
	if err != nil {
		t.Fatal(err)
	}

	fired, err := engine.Evaluate(newTurn(6, 0, 12))
	if err != nil {
		t.Fatal(err)
	}
	if hasFired(fired, "demolisher-push") {
		t.Errorf("fired = %v, demolisher push against an empty half", fired)
	}

	tn := newTurn(8, 0, 12)
	tn.Builder.Snapshot().Place(model.Unit{Kind: model.Wall, Owner: 1, X: 13, Y: 14})
	fired, err = engine.Evaluate(tn)
	if err != nil {
		t.Fatal(err)
	}
	if !hasFired(fired, "demolisher-push") {
		t.Fatalf("fired = %v, want demolisher-push", fired)
	}
	if tn.Attack == nil || tn.Attack.Placed != 4 {
		t.Errorf("attack = %+v, want 4 demolishers", tn.Attack)
	}
}
