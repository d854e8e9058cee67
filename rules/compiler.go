package rules

import "fmt"

// CompileDoctrine generates a complete rule set from a doctrine's weights.
// All conditions are built via fmt.Sprintf with interpolated values, so the
// compiler never generates invalid expr.
func CompileDoctrine(d Doctrine) []*Rule {
	d.Validate()
	var rules []*Rule

	// --- Offence ---

	rules = append(rules, &Rule{
		Name:         "launch-attack",
		Priority:     900,
		Category:     "attack",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`TurnNumber() >= %d && TurnsSinceAttack() >= %d && MP() > 0`, d.FirstAttackTurn(), d.AttackCadence()),
		Action:       ActionLaunchAttack,
	})

	// Fallbacks only run when the selector committed nothing; the category
	// keeps a demolisher push and an interceptor stall from sharing a turn.
	// Demolishers only pay off against standing structures.
	rules = append(rules, &Rule{
		Name:      "demolisher-push",
		Priority:  850,
		Category:  "fallback",
		Exclusive: true,
		ConditionSrc: fmt.Sprintf(`!AttackCommitted() && TurnNumber() >= %d && TurnsSinceAttack() >= %d && Affordable("demolisher") >= %d && EnemyCount("wall") + EnemyCount("turret") > 0`,
			d.FirstAttackTurn(), d.AttackCadence(), d.DemolisherMinimum),
		Action: DemolisherPush(d.DemolisherMinimum),
	})

	// Stall through the opening, and again whenever we trail on health.
	if d.StallTurns > 0 {
		rules = append(rules, &Rule{
			Name:         "stall-interceptors",
			Priority:     800,
			Category:     "fallback",
			Exclusive:    true,
			ConditionSrc: fmt.Sprintf(`!AttackCommitted() && (TurnNumber() < %d || Health() < EnemyHealth()) && Affordable("interceptor") >= 2`, d.StallTurns),
			Action:       ActionStallInterceptors,
		})
	}

	// --- Defence ---

	rules = append(rules, &Rule{
		Name:         "reactive-turrets",
		Priority:     700,
		Category:     "defense",
		Exclusive:    false,
		ConditionSrc: `RecentBreaches() > 0 && Affordable("turret") > 0`,
		Action:       ReactiveTurrets(d.ReactiveTurrets()),
	})

	rules = append(rules, &Rule{
		Name:         "patch-optional-walls",
		Priority:     650,
		Category:     "defense",
		Exclusive:    false,
		ConditionSrc: `HasOptionalWalls()`,
		Action:       ActionPatchOptionalWalls,
	})

	// --- Economy (parameterized by EconomyPriority) ---

	reserve := lerpf(d.SupportReserve*1.5, d.SupportReserve*0.5, d.EconomyPriority)
	rules = append(rules, &Rule{
		Name:         "endgame-supports",
		Priority:     600,
		Category:     "economy",
		Exclusive:    true,
		ConditionSrc: fmt.Sprintf(`HasEndgameSupports() && TurnNumber() >= %d && SP() - Cost("support") >= %.2f`, d.EndgameTurn(), reserve),
		Action:       EndgameSupports(reserve),
	})

	return rules
}
