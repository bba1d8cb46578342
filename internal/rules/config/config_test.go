package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/rules"
)

func TestEmbeddedConfigMatchesFallback(t *testing.T) {
	t.Setenv(nudgeRulesEnv, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fb := Fallback()
	if cfg.QuietStart != fb.QuietStart || cfg.QuietEnd != fb.QuietEnd {
		t.Fatalf("quiet hours: got %s-%s want %s-%s", cfg.QuietStart, cfg.QuietEnd, fb.QuietStart, fb.QuietEnd)
	}
	if cfg.Cooldowns != fb.Cooldowns {
		t.Fatalf("cooldowns: got %+v want %+v", cfg.Cooldowns, fb.Cooldowns)
	}
	if cfg.Snooze != 10*time.Minute || cfg.Scheduler.Tick != time.Minute {
		t.Fatalf("snooze=%v tick=%v", cfg.Snooze, cfg.Scheduler.Tick)
	}
}

func TestParsePartialOverride(t *testing.T) {
	cfg, err := Parse([]byte(`
config: nudges
quiet_hours:
  start: "23:30"
cooldowns:
  hydration: 5
  meals: 60
  physical: 60
  sedentary: 10
scheduler:
  tick: 30s
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.QuietStart != rules.NewTimeOfDay(23, 30) || cfg.QuietEnd != rules.DefaultQuietEnd {
		t.Fatalf("quiet=%s-%s", cfg.QuietStart, cfg.QuietEnd)
	}
	if cfg.Cooldowns.Hydration != 5 || cfg.Scheduler.Tick != 30*time.Second || cfg.Scheduler.Concurrency != 8 {
		t.Fatalf("cfg=%+v", cfg)
	}
	s := cfg.Settings()
	if s.CooldownHydration == nil || *s.CooldownHydration != 5 {
		t.Fatalf("settings cooldown=%v", s.CooldownHydration)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"wrong kind":        "config: pipelines\n",
		"negative cooldown": "config: nudges\ncooldowns:\n  hydration: -1\n",
		"zero snooze":       "config: nudges\nsnooze_minutes: 0\n",
		"bad time":          "config: nudges\nquiet_hours:\n  start: \"25:00\"\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nudges.yaml")
	if err := os.WriteFile(path, []byte("config: nudges\nsnooze_minutes: 25\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(nudgeRulesEnv, path)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Snooze != 25*time.Minute {
		t.Fatalf("snooze=%v", cfg.Snooze)
	}
}
