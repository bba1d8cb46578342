package app

import (
	"reflect"
	"testing"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/data/db"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "JWT_SECRET_KEY", "ACCESS_TOKEN_TTL", "SESSION_IDLE_TIMEOUT_MINUTES", "REDIS_ADDR", "CORS_ALLOWED_ORIGINS", "NUDGE_SCHEDULER_ENABLED", "TEMPORAL_ADDRESS"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(nil)
	if cfg.Address() != ":8080" {
		t.Fatalf("Address=%q", cfg.Address())
	}
	if cfg.DB.Driver != db.DriverSQLite {
		t.Fatalf("Driver=%q", cfg.DB.Driver)
	}
	if cfg.Auth.AccessTTL != time.Hour || cfg.Auth.IdleTimeout != 120*time.Minute {
		t.Fatalf("auth=%+v", cfg.Auth)
	}
	if cfg.Redis.Addr != "" || !cfg.SchedulerEnabled || cfg.Temporal.Enabled() {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.AllowedOrigins != nil {
		t.Fatalf("AllowedOrigins=%v", cfg.AllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9000")
	t.Setenv("ACCESS_TOKEN_TTL", "900")
	t.Setenv("SESSION_IDLE_TIMEOUT_MINUTES", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("NUDGE_SCHEDULER_ENABLED", "false")

	cfg := LoadConfig(nil)
	if cfg.Address() != "127.0.0.1:9000" {
		t.Fatalf("Address=%q", cfg.Address())
	}
	if cfg.Auth.AccessTTL != 15*time.Minute || cfg.Auth.IdleTimeout != 30*time.Minute {
		t.Fatalf("auth=%+v", cfg.Auth)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Fatalf("AllowedOrigins=%v", cfg.AllowedOrigins)
	}
	if cfg.SchedulerEnabled {
		t.Fatalf("scheduler should be disabled")
	}
}
