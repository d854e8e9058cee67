package rules

import "math"

// Doctrine is the tactical posture layered on top of the milestone build.
// Weights are 0.0–1.0; the compiler maps them to concrete rule parameters.
type Doctrine struct {
	Name            string  `json:"name" mapstructure:"name"`
	Rationale       string  `json:"rationale" mapstructure:"rationale"`
	Aggression      float64 `json:"aggression" mapstructure:"aggression"`
	EconomyPriority float64 `json:"economy_priority" mapstructure:"economyPriority"`
	DefensePriority float64 `json:"defense_priority" mapstructure:"defensePriority"`
	// StallTurns is how many opening turns interceptors are sent to stall rushes.
	StallTurns int `json:"stall_turns" mapstructure:"stallTurns"`
	// SupportReserve is the SP kept back when spending surplus on supports.
	SupportReserve    float64 `json:"support_reserve" mapstructure:"supportReserve"`
	DemolisherMinimum int     `json:"demolisher_minimum" mapstructure:"demolisherMinimum"`
}

// DefaultDoctrine returns a balanced baseline doctrine.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name:              "Balanced",
		Rationale:         "Default balanced strategy",
		Aggression:        0.5,
		EconomyPriority:   0.5,
		DefensePriority:   0.5,
		StallTurns:        3,
		SupportReserve:    12,
		DemolisherMinimum: 4,
	}
}

// Validate clamps all weights to their valid ranges.
func (d *Doctrine) Validate() {
	d.Aggression = clamp(d.Aggression, 0, 1)
	d.EconomyPriority = clamp(d.EconomyPriority, 0, 1)
	d.DefensePriority = clamp(d.DefensePriority, 0, 1)
	d.StallTurns = clampInt(d.StallTurns, 0, 10)
	d.SupportReserve = clamp(d.SupportReserve, 0, 40)
	d.DemolisherMinimum = clampInt(d.DemolisherMinimum, 1, 10)
}

// AttackCadence is the minimum number of turns between committed attacks.
func (d Doctrine) AttackCadence() int { return lerp(4, 1, d.Aggression) }

// FirstAttackTurn is the earliest turn an attack may be launched.
func (d Doctrine) FirstAttackTurn() int { return lerp(5, 2, d.Aggression) }

// EndgameTurn is the turn surplus SP starts flowing into supports.
func (d Doctrine) EndgameTurn() int { return lerp(20, 8, d.EconomyPriority) }

// ReactiveTurrets caps the turrets placed per turn in response to breaches.
func (d Doctrine) ReactiveTurrets() int { return lerp(1, 4, d.DefensePriority) }

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// lerp linearly interpolates between min and max by t (0–1), returning an int.
func lerp(min, max int, t float64) int {
	return min + int(math.Round(float64(max-min)*t))
}

// lerpf linearly interpolates between min and max by t (0–1), returning a float64.
func lerpf(min, max, t float64) float64 {
	return min + (max-min)*t
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
