package app

import (
	"context"
	"errors"
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/gcp"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/openai"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime/bus"
	"github.com/yungbote/healthwhisperer-backend/internal/temporalx"
)

// Clients are the external connections. Every field except Bus may be nil
// when the matching integration is not configured.
type Clients struct {
	Bus      bus.Bus
	OpenAI   openai.Client
	Archive  gcp.ExportArchive
	Temporal temporalsdkclient.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	var c Clients

	if cfg.Redis.Addr != "" {
		b, err := bus.NewRedisBus(ctx, log, cfg.Redis)
		if err != nil {
			return c, fmt.Errorf("init redis bus: %w", err)
		}
		c.Bus = b
		log.Info("SSE fan-out via redis", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	} else {
		c.Bus = bus.NewLocalBus()
	}

	ai, err := openai.NewClient(log, openai.ConfigFromEnv())
	switch {
	case errors.Is(err, openai.ErrNotConfigured):
		log.Info("OPENAI_API_KEY not set; copy falls back to templates")
	case err != nil:
		c.Close(log)
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	default:
		c.OpenAI = ai
	}

	storageCfg, err := gcp.StorageConfigFromEnv()
	if err != nil {
		c.Close(log)
		return Clients{}, fmt.Errorf("export archive config: %w", err)
	}
	if c.Archive, err = gcp.NewExportArchive(ctx, log, storageCfg); err != nil {
		c.Close(log)
		return Clients{}, fmt.Errorf("init export archive: %w", err)
	}

	if cfg.SchedulerEnabled {
		if c.Temporal, err = temporalx.Dial(ctx, log, cfg.Temporal); err != nil {
			c.Close(log)
			return Clients{}, err
		}
	}
	return c, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Archive != nil {
		if err := c.Archive.Close(); err != nil {
			log.Warn("export archive close failed", "error", err)
		}
	}
	if c.Bus != nil {
		if err := c.Bus.Close(); err != nil {
			log.Warn("SSE bus close failed", "error", err)
		}
	}
}
