// Package journal persists each turn's decisions and the breaches reported
// between turns, for offline review of games.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TurnRecord is one submitted turn.
type TurnRecord struct {
	ID            uint   `gorm:"primarykey"`
	Session       string `gorm:"index:idx_turn_session,priority:1;size:36"`
	Turn          int    `gorm:"index:idx_turn_session,priority:2"`
	SP            float64
	MP            float64
	PredictedSide int
	PredictTier   string `gorm:"size:16"`
	AttackMethod  string `gorm:"size:64"`
	Repairs       int
	Removals      int
	Rules         datatypes.JSON
	Commands      datatypes.JSON
	CreatedAt     time.Time
}

// BreachRecord is one opponent unit that reached our edge.
type BreachRecord struct {
	ID      uint   `gorm:"primarykey"`
	Session string `gorm:"index;size:36"`
	Turn    int
	X       int
	Y       int
	Side    int
	Damage  float64
}

// Journal writes records for a database. A nil *Journal discards everything.
type Journal struct {
	db *gorm.DB
}

// Open connects to driver ("sqlite" or "postgres") and migrates the schema.
func Open(driver, dsn string) (*Journal, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true})
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s journal: %w", driver, err)
	}
	if err := db.AutoMigrate(&TurnRecord{}, &BreachRecord{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	slog.Info("journal opened", "driver", driver)
	return &Journal{db: db}, nil
}

// JSON encodes v for a datatypes.JSON column, logging and storing null on failure.
func JSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("journal encode failed", "error", err)
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}

func (j *Journal) RecordTurn(r TurnRecord) error {
	if j == nil {
		return nil
	}
	if len(r.Rules) == 0 {
		r.Rules = JSON([]string{})
	}
	if len(r.Commands) == 0 {
		r.Commands = JSON([]any{})
	}
	if err := j.db.Create(&r).Error; err != nil {
		return fmt.Errorf("record turn %d: %w", r.Turn, err)
	}
	return nil
}

func (j *Journal) RecordBreaches(rs []BreachRecord) error {
	if j == nil || len(rs) == 0 {
		return nil
	}
	if err := j.db.Create(&rs).Error; err != nil {
		return fmt.Errorf("record %d breaches: %w", len(rs), err)
	}
	return nil
}

// Turns returns a session's turns in turn order.
func (j *Journal) Turns(session string) ([]TurnRecord, error) {
	var out []TurnRecord
	if j == nil {
		return out, nil
	}
	if err := j.db.Where("session = ?", session).Order("turn").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load turns: %w", err)
	}
	return out, nil
}

// BreachesBySide counts a session's breaches per side.
func (j *Journal) BreachesBySide(session string) (map[int]int, error) {
	out := make(map[int]int)
	if j == nil {
		return out, nil
	}
	var rows []struct {
		Side  int
		Count int
	}
	err := j.db.Model(&BreachRecord{}).
		Select("side, count(*) as count").
		Where("session = ?", session).
		Group("side").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count breaches: %w", err)
	}
	for _, r := range rows {
		out[r.Side] = r.Count
	}
	return out, nil
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return fmt.Errorf("access sql interface: %w", err)
	}
	return sqlDB.Close()
}
