// Package config loads the agent's settings from defaults, an optional
// funnel.yaml and FUNNEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/nstehr/funnel/model"
	"github.com/nstehr/funnel/rules"
)

// JournalConfig selects the optional turn journal backend.
type JournalConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Driver  string `json:"driver" mapstructure:"driver"`
	DSN     string `json:"dsn" mapstructure:"dsn"`
}

type RepairConfig struct {
	Threshold float64 `json:"threshold" mapstructure:"threshold"`
}

type PredictConfig struct {
	InvestmentMargin float64 `json:"investmentMargin" mapstructure:"investmentMargin"`
}

type AttackConfig struct {
	MinScouts int `json:"minScouts" mapstructure:"minScouts"`
}

type StrategistConfig struct {
	// BreachThreshold is the number of breaches on one side that triggers reinforcement.
	BreachThreshold int `json:"breachThreshold" mapstructure:"breachThreshold"`
}

// Settings is the resolved, read-only configuration.
type Settings struct {
	SocketPath string           `json:"socketPath" mapstructure:"socketPath"`
	LogLevel   string           `json:"logLevel" mapstructure:"logLevel"`
	Build      string           `json:"build" mapstructure:"build"`
	PlansDir   string           `json:"plansDir" mapstructure:"plansDir"`
	Doctrine   rules.Doctrine   `json:"doctrine" mapstructure:"doctrine"`
	Journal    JournalConfig    `json:"journal" mapstructure:"journal"`
	Repair     RepairConfig     `json:"repair" mapstructure:"repair"`
	Predict    PredictConfig    `json:"predict" mapstructure:"predict"`
	Attack     AttackConfig     `json:"attack" mapstructure:"attack"`
	Strategist StrategistConfig `json:"strategist" mapstructure:"strategist"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("socketPath", "/tmp/funnel.sock")
	v.SetDefault("logLevel", "info")
	v.SetDefault("build", "funnel")
	v.SetDefault("plansDir", "")

	d := rules.DefaultDoctrine()
	v.SetDefault("doctrine.name", d.Name)
	v.SetDefault("doctrine.rationale", d.Rationale)
	v.SetDefault("doctrine.aggression", d.Aggression)
	v.SetDefault("doctrine.economyPriority", d.EconomyPriority)
	v.SetDefault("doctrine.defensePriority", d.DefensePriority)
	v.SetDefault("doctrine.stallTurns", d.StallTurns)
	v.SetDefault("doctrine.supportReserve", d.SupportReserve)
	v.SetDefault("doctrine.demolisherMinimum", d.DemolisherMinimum)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "funnel.db")

	t := model.DefaultTunables()
	v.SetDefault("repair.threshold", t.RepairThreshold)
	v.SetDefault("predict.investmentMargin", t.InvestmentMargin)
	v.SetDefault("attack.minScouts", t.MinScoutSurplus)

	v.SetDefault("strategist.breachThreshold", 3)
}

// Load reads funnel.yaml from configDir if present. A missing file is not an error;
// defaults and FUNNEL_* environment variables still apply.
func Load(configDir string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("funnel")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix("FUNNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	s.Doctrine.Validate()
	return s, nil
}

func (s Settings) validate() error {
	switch s.Journal.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("journal driver %q: must be sqlite or postgres", s.Journal.Driver)
	}
	if s.Repair.Threshold <= 0 || s.Repair.Threshold > 1 {
		return fmt.Errorf("repair threshold %v: must be in (0, 1]", s.Repair.Threshold)
	}
	if s.Build == "" {
		return errors.New("build: must name a milestone table")
	}
	return nil
}

// Tunables returns the agent-side thresholds bound into every session's model.Config.
func (s Settings) Tunables() model.Tunables {
	return model.Tunables{
		RepairThreshold:  s.Repair.Threshold,
		InvestmentMargin: s.Predict.InvestmentMargin,
		MinScoutSurplus:  s.Attack.MinScouts,
	}
}

// Level maps LogLevel to a slog level, defaulting to info.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
