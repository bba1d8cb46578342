package temporalx

import (
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	DialTimeout       time.Duration
	DialMaxWait       time.Duration
	AutoRegister      bool
	RetentionDays     int
	WorkerConcurrency int
}

// Enabled reports whether a Temporal frontend is configured.
func (c Config) Enabled() bool { return c.Address != "" }

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "healthwhisperer"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "healthwhisperer-nudges"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		DialTimeout:       envutil.Duration("TEMPORAL_DIAL_TIMEOUT", 5*time.Second),
		DialMaxWait:       envutil.Duration("TEMPORAL_DIAL_MAX_WAIT", time.Minute),
		AutoRegister:      envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		RetentionDays:     clampInt(envutil.Int("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7), 1, 365),
		WorkerConcurrency: clampInt(envutil.Int("TEMPORAL_WORKER_CONCURRENCY", 4), 1, 64),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
