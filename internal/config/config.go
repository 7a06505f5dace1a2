// Package config loads knolbox settings from defaults, a YAML file,
// KNOLBOX_ environment variables and command-line flags.
package config

import (
	"github.com/conorfennell/knolbox/internal/domain"
	"github.com/conorfennell/knolbox/internal/leitner"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	ReposDir string         `koanf:"repos_dir" validate:"required"`
	Rules    RulesConfig    `koanf:"rules"`
	Session  SessionConfig  `koanf:"session"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// RulesConfig describes the Leitner boxes.
type RulesConfig struct {
	NumberOfBoxes     int         `koanf:"number_of_boxes"       validate:"gt=0,lte=64"`
	MaxNewCardsPerDay int         `koanf:"max_new_cards_per_day" validate:"gte=0"`
	Boxes             []BoxConfig `koanf:"boxes"                 validate:"dive"`
}

// BoxConfig holds the interval and movement rules of one box.
type BoxConfig struct {
	Box                    int `koanf:"box"                      validate:"gte=0"`
	IntervalDays           int `koanf:"interval_days"            validate:"gt=0,lte=36500"`
	CorrectAnswersNeeded   int `koanf:"correct_answers_needed"   validate:"gt=0"`
	IncorrectAnswersNeeded int `koanf:"incorrect_answers_needed" validate:"gt=0"`
	DemoteToBox            int `koanf:"demote_to_box"            validate:"gte=0"`
}

// SessionConfig holds study session defaults.
type SessionConfig struct {
	MaxCards        int    `koanf:"max_cards"        validate:"gt=0"`
	Mode            string `koanf:"mode"`
	Shuffle         bool   `koanf:"shuffle"`
	CheckpointEvery int    `koanf:"checkpoint_every" validate:"gt=0"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	rules := leitner.DefaultRuleSet()
	boxes := make([]BoxConfig, 0, rules.NumberOfBoxes)
	for box := 0; box < rules.NumberOfBoxes; box++ {
		boxes = append(boxes, BoxConfig{
			Box:                    box,
			IntervalDays:           rules.Intervals[box],
			CorrectAnswersNeeded:   rules.Promotion[box].CorrectAnswersNeeded,
			IncorrectAnswersNeeded: 1,
			DemoteToBox:            0,
		})
	}

	return Config{
		Database: DatabaseConfig{Path: "knolbox.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		ReposDir: "repos",
		Rules: RulesConfig{
			NumberOfBoxes:     rules.NumberOfBoxes,
			MaxNewCardsPerDay: rules.MaxNewCardsPerDay,
			Boxes:             boxes,
		},
		Session: SessionConfig{
			MaxCards:        20,
			Mode:            string(domain.StudyModeFrontToBack),
			CheckpointEvery: 5,
		},
	}
}

// RuleSet converts the rules section for the scheduler.
func (c *Config) RuleSet() leitner.RuleSet {
	rs := leitner.RuleSet{
		NumberOfBoxes:     c.Rules.NumberOfBoxes,
		Promotion:         make(map[int]leitner.PromotionRule, len(c.Rules.Boxes)),
		Demotion:          make(map[int]leitner.DemotionRule, len(c.Rules.Boxes)),
		Intervals:         make(map[int]int, len(c.Rules.Boxes)),
		MaxNewCardsPerDay: c.Rules.MaxNewCardsPerDay,
	}
	for _, b := range c.Rules.Boxes {
		rs.Promotion[b.Box] = leitner.PromotionRule{CorrectAnswersNeeded: b.CorrectAnswersNeeded}
		rs.Demotion[b.Box] = leitner.DemotionRule{
			IncorrectAnswersNeeded: b.IncorrectAnswersNeeded,
			DemoteToBox:            b.DemoteToBox,
		}
		rs.Intervals[b.Box] = b.IntervalDays
	}
	return rs
}

// StudyMode returns the parsed session mode. Load has already validated it.
func (c *Config) StudyMode() domain.StudyMode {
	mode, err := domain.ParseStudyMode(c.Session.Mode)
	if err != nil {
		return domain.StudyModeFrontToBack
	}
	return mode
}
