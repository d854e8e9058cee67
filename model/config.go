package model

// UnitInfo is one entry of the engine's unitInformation array. Entries arrive in a
// fixed order: wall, support, turret, scout, demolisher, interceptor, remove, upgrade.
type UnitInfo struct {
	Shorthand    string       `json:"shorthand"`
	Cost1        float64      `json:"cost1"`
	Cost2        float64      `json:"cost2"`
	StartHealth  float64      `json:"startHealth"`
	DamageWalker float64      `json:"attackDamageWalker"`
	AttackRange  float64      `json:"attackRange"`
	Shield       float64      `json:"shieldPerUnit"`
	Upgrade      *UnitUpgrade `json:"upgrade,omitempty"`
}

// UnitUpgrade lists the fields an upgrade overrides; zero means unchanged.
type UnitUpgrade struct {
	Cost1        float64 `json:"cost1"`
	Cost2        float64 `json:"cost2"`
	StartHealth  float64 `json:"startHealth"`
	DamageWalker float64 `json:"attackDamageWalker"`
	AttackRange  float64 `json:"attackRange"`
	Shield       float64 `json:"shieldPerUnit"`
}

var infoOrder = []UnitKind{Wall, Support, Turret, Scout, Demolisher, Interceptor, Remove, Upgrade}

// UnitSpec is the resolved static description of one unit kind.
type UnitSpec struct {
	Kind           UnitKind
	Shorthand      string
	Cost           Cost
	UpgradeCost    Cost
	Health         float64
	UpgradedHealth float64
	Damage         float64
	UpgradedDamage float64
	Range          float64
	UpgradedRange  float64
	Shield         float64
}

// Tunables are the agent-side thresholds that are not part of the engine config.
type Tunables struct {
	RepairThreshold  float64
	InvestmentMargin float64
	MinScoutSurplus  int
}

// DefaultTunables returns the thresholds the agent was tuned with.
func DefaultTunables() Tunables {
	return Tunables{RepairThreshold: 0.75, InvestmentMargin: 10, MinScoutSurplus: 4}
}

// Config is bound once per session and shared read-only by every component.
type Config struct {
	Player int
	Arena  Arena
	Tunables

	units      map[UnitKind]UnitSpec
	shorthands map[string]UnitKind
}

// NewConfig resolves the engine's unit table. Missing entries fall back to defaults.
func NewConfig(player int, infos []UnitInfo, t Tunables) *Config {
	cfg := &Config{
		Player:     player,
		Arena:      Arena{Size: DefaultArenaSize},
		Tunables:   t,
		units:      make(map[UnitKind]UnitSpec),
		shorthands: make(map[string]UnitKind),
	}
	for i, kind := range infoOrder {
		info := defaultInfos[i]
		if i < len(infos) && infos[i].Shorthand != "" {
			info = infos[i]
		}
		cfg.bind(kind, info)
	}
	return cfg
}

// DefaultConfig is the standard rule set seen from player 0.
func DefaultConfig() *Config {
	return NewConfig(0, nil, DefaultTunables())
}

func (c *Config) bind(kind UnitKind, info UnitInfo) {
	spec := UnitSpec{
		Kind:           kind,
		Shorthand:      info.Shorthand,
		Cost:           Cost{SP: info.Cost1, MP: info.Cost2},
		Health:         info.StartHealth,
		UpgradedHealth: info.StartHealth,
		Damage:         info.DamageWalker,
		UpgradedDamage: info.DamageWalker,
		Range:          info.AttackRange,
		UpgradedRange:  info.AttackRange,
		Shield:         info.Shield,
	}
	if up := info.Upgrade; up != nil {
		spec.UpgradeCost = Cost{SP: up.Cost1, MP: up.Cost2}
		if up.StartHealth > 0 {
			spec.UpgradedHealth = up.StartHealth
		}
		if up.DamageWalker > 0 {
			spec.UpgradedDamage = up.DamageWalker
		}
		if up.AttackRange > 0 {
			spec.UpgradedRange = up.AttackRange
		}
	}
	c.units[kind] = spec
	c.shorthands[info.Shorthand] = kind
}

// Opponent is the other player's index.
func (c *Config) Opponent() int { return 1 - c.Player }

// Spec returns the static description of k; unknown kinds yield a zero spec.
func (c *Config) Spec(k UnitKind) UnitSpec { return c.units[k] }

// KindOf maps an engine shorthand to its kind.
func (c *Config) KindOf(shorthand string) UnitKind {
	if k, ok := c.shorthands[shorthand]; ok {
		return k
	}
	return KindUnknown
}

func (c *Config) Shorthand(k UnitKind) string { return c.units[k].Shorthand }

var defaultInfos = []UnitInfo{
	{Shorthand: "FF", Cost1: 1, StartHealth: 60, Upgrade: &UnitUpgrade{Cost1: 1, StartHealth: 120}},
	{Shorthand: "EF", Cost1: 4, StartHealth: 30, AttackRange: 3.5, Shield: 3, Upgrade: &UnitUpgrade{Cost1: 4, AttackRange: 7}},
	{Shorthand: "DF", Cost1: 2, StartHealth: 75, DamageWalker: 5, AttackRange: 2.5, Upgrade: &UnitUpgrade{Cost1: 4, DamageWalker: 15, AttackRange: 3.5}},
	{Shorthand: "PI", Cost2: 1, StartHealth: 15, DamageWalker: 2, AttackRange: 3.5},
	{Shorthand: "EI", Cost2: 3, StartHealth: 5, DamageWalker: 8, AttackRange: 4.5},
	{Shorthand: "SI", Cost2: 1, StartHealth: 40, DamageWalker: 20, AttackRange: 4.5},
	{Shorthand: "RM"},
	{Shorthand: "UP"},
}
