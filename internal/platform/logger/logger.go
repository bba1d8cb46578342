package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Logger is a sugared zap logger whose key/value pairs pass through the
// scrubber before they are written.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	scrub         scrubber
}

// New builds a JSON logger for "prod"/"production" and a console logger
// otherwise. LOG_LEVEL overrides the default level (info in production,
// debug elsewhere).
func New(mode string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	if m := strings.ToLower(strings.TrimSpace(mode)); m == "prod" || m == "production" {
		cfg = zap.NewProductionConfig()
	}
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		lvl, err := zap.ParseAtomicLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.Level = lvl
	}
	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: base.Sugar(), scrub: activeScrubber()}, nil
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.SugaredLogger.Debugw(msg, l.scrub.pairs(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.SugaredLogger.Infow(msg, l.scrub.pairs(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.SugaredLogger.Warnw(msg, l.scrub.pairs(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.SugaredLogger.Errorw(msg, l.scrub.pairs(kv)...) }
func (l *Logger) Fatal(msg string, kv ...any) { l.SugaredLogger.Fatalw(msg, l.scrub.pairs(kv)...) }

// With returns a child logger carrying kv on every line.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub.pairs(kv)...), scrub: l.scrub}
}
