package app

import (
	"strings"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/data/db"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/envutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime/bus"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
	"github.com/yungbote/healthwhisperer-backend/internal/temporalx"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	LogMode     string
	Port        string
	ServiceName string
	Environment string
	Version     string

	DB   db.Config
	Auth services.AuthConfig

	AllowedOrigins []string

	// Redis.Addr empty means SSE fan-out stays in process.
	Redis bus.RedisConfig

	SchedulerEnabled bool
	Temporal         temporalx.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("SERVICE_NAME", "healthwhisperer"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", ""),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverSQLite),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "healthwhisperer"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SQLitePath:       envutil.String("SQLITE_PATH", "healthwhisperer.db"),
		},
		Auth: services.AuthConfig{
			JWTSecret:   envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
			AccessTTL:   envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
			RefreshTTL:  envutil.Duration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
			IdleTimeout: time.Duration(envutil.Int("SESSION_IDLE_TIMEOUT_MINUTES", 120)) * time.Minute,
		},
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		Redis: bus.RedisConfig{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", "healthwhisperer:sse"),
		},
		SchedulerEnabled: envutil.Bool("NUDGE_SCHEDULER_ENABLED", true),
		Temporal:         temporalx.LoadConfig(),
	}
	if cfg.Auth.JWTSecret == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY not set; using the development default")
	}
	return cfg
}

func (c Config) Address() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
