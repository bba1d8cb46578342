package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
)

const nudgeRulesEnv = "NUDGE_RULES_YAML"

//go:embed nudges.yaml
var nudgesFS embed.FS

type Cooldowns struct {
	Hydration int `yaml:"hydration"`
	Meals     int `yaml:"meals"`
	Physical  int `yaml:"physical"`
	Sedentary int `yaml:"sedentary"`
}

type Scheduler struct {
	Tick        time.Duration `yaml:"tick"`
	Concurrency int           `yaml:"concurrency"`
	PageSize    int           `yaml:"page_size"`
}

// Config holds the deployment-wide nudge defaults.
type Config struct {
	QuietStart                 rules.TimeOfDay
	QuietEnd                   rules.TimeOfDay
	SedentaryIgnoresQuietHours bool
	Cooldowns                  Cooldowns
	Snooze                     time.Duration
	Scheduler                  Scheduler
}

type yamlConfig struct {
	Config     string `yaml:"config"`
	Version    int    `yaml:"version"`
	QuietHours struct {
		Start *rules.TimeOfDay `yaml:"start"`
		End   *rules.TimeOfDay `yaml:"end"`
	} `yaml:"quiet_hours"`
	SedentaryIgnoresQuietHours bool       `yaml:"sedentary_ignores_quiet_hours"`
	Cooldowns                  *Cooldowns `yaml:"cooldowns"`
	SnoozeMinutes              *int       `yaml:"snooze_minutes"`
	Scheduler                  *Scheduler `yaml:"scheduler"`
}

// Fallback is used when the YAML is missing or invalid.
func Fallback() Config {
	return Config{
		QuietStart: rules.DefaultQuietStart,
		QuietEnd:   rules.DefaultQuietEnd,
		Cooldowns: Cooldowns{
			Hydration: rules.DefaultCooldownHydration,
			Meals:     rules.DefaultCooldownMeals,
			Physical:  rules.DefaultCooldownPhysical,
			Sedentary: rules.DefaultCooldownSedentary,
		},
		Snooze: 10 * time.Minute,
		Scheduler: Scheduler{
			Tick:        time.Minute,
			Concurrency: 8,
			PageSize:    200,
		},
	}
}

// Settings converts the defaults into evaluator settings.
func (c Config) Settings() rules.Settings {
	qs, qe := c.QuietStart, c.QuietEnd
	ch, cm, cp, cs := c.Cooldowns.Hydration, c.Cooldowns.Meals, c.Cooldowns.Physical, c.Cooldowns.Sedentary
	return rules.Settings{
		QuietStart:                 &qs,
		QuietEnd:                   &qe,
		CooldownHydration:          &ch,
		CooldownMeals:              &cm,
		CooldownPhysical:           &cp,
		CooldownSedentary:          &cs,
		SedentaryIgnoresQuietHours: c.SedentaryIgnoresQuietHours,
	}
}

var (
	currentOnce sync.Once
	currentCfg  Config
	currentErr  error
)

// Current loads the config once per process and falls back on error.
func Current(log *logger.Logger) Config {
	currentOnce.Do(func() {
		currentCfg, currentErr = Load()
	})
	if currentErr != nil {
		if log != nil {
			log.Warn("nudge rules config load failed; using fallback", "error", currentErr)
		}
		return Fallback()
	}
	return currentCfg
}

// Load reads NUDGE_RULES_YAML when set, otherwise the embedded file.
func Load() (Config, error) {
	data, err := readNudgesYAML()
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

func readNudgesYAML() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(nudgeRulesEnv)); path != "" {
		return os.ReadFile(path)
	}
	return nudgesFS.ReadFile("nudges.yaml")
}

// Parse decodes a YAML document. Sections left out keep their fallback
// values.
func Parse(data []byte) (Config, error) {
	var doc yamlConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, err
	}
	if err := validate(&doc); err != nil {
		return Config{}, err
	}

	cfg := Fallback()
	if doc.QuietHours.Start != nil {
		cfg.QuietStart = *doc.QuietHours.Start
	}
	if doc.QuietHours.End != nil {
		cfg.QuietEnd = *doc.QuietHours.End
	}
	cfg.SedentaryIgnoresQuietHours = doc.SedentaryIgnoresQuietHours
	if doc.Cooldowns != nil {
		cfg.Cooldowns = *doc.Cooldowns
	}
	if doc.SnoozeMinutes != nil {
		cfg.Snooze = time.Duration(*doc.SnoozeMinutes) * time.Minute
	}
	if s := doc.Scheduler; s != nil {
		if s.Tick > 0 {
			cfg.Scheduler.Tick = s.Tick
		}
		if s.Concurrency > 0 {
			cfg.Scheduler.Concurrency = s.Concurrency
		}
		if s.PageSize > 0 {
			cfg.Scheduler.PageSize = s.PageSize
		}
	}
	return cfg, nil
}

func validate(doc *yamlConfig) error {
	if doc == nil {
		return errors.New("missing config")
	}
	if strings.TrimSpace(doc.Config) != "nudges" {
		return fmt.Errorf("unexpected config: %q", doc.Config)
	}
	if c := doc.Cooldowns; c != nil {
		for name, v := range map[string]int{
			"hydration": c.Hydration,
			"meals":     c.Meals,
			"physical":  c.Physical,
			"sedentary": c.Sedentary,
		} {
			if v < 0 {
				return fmt.Errorf("cooldowns.%s: must be >= 0, got %d", name, v)
			}
		}
	}
	if doc.SnoozeMinutes != nil && *doc.SnoozeMinutes <= 0 {
		return fmt.Errorf("snooze_minutes: must be > 0, got %d", *doc.SnoozeMinutes)
	}
	return nil
}
