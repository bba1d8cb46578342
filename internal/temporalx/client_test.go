package temporalx

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEMPORAL_ADDRESS", "")
	t.Setenv("TEMPORAL_NAMESPACE_RETENTION_DAYS", "900")
	cfg := LoadConfig()
	if cfg.Enabled() || cfg.Namespace != "healthwhisperer" || cfg.TaskQueue != "healthwhisperer-nudges" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.RetentionDays != 365 {
		t.Fatalf("retention=%d", cfg.RetentionDays)
	}

	c, err := Dial(context.Background(), logger.Nop(), cfg)
	if c != nil || err != nil {
		t.Fatalf("disabled dial: c=%v err=%v", c, err)
	}
}

func TestBackoff(t *testing.T) {
	if backoff(1) != 250*time.Millisecond || backoff(3) != time.Second || backoff(20) != dialBackoffMax {
		t.Fatalf("backoff=%v %v %v", backoff(1), backoff(3), backoff(20))
	}
	if !isRetryableRPC(status.Error(codes.Unavailable, "down")) || isRetryableRPC(status.Error(codes.NotFound, "x")) {
		t.Fatalf("rpc classification")
	}
	if !isRetryableRPC(context.DeadlineExceeded) || isRetryableRPC(errors.New("other")) {
		t.Fatalf("non-rpc classification")
	}
}

func TestTLSConfigRequiresPair(t *testing.T) {
	if _, err := loadTLSConfig(Config{ClientCAPath: "/nope"}); err == nil {
		t.Fatalf("expected error without cert/key")
	}
}
