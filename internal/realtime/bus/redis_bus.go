package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(ctx context.Context, log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "healthwhisperer:sse"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisBusWithClient(log, rdb, ch), nil
}

func newRedisBusWithClient(log *logger.Logger, rdb *goredis.Client, channel string) *redisBus {
	return &redisBus{
		log:     log.With("service", "RedisSSEBus"),
		rdb:     rdb,
		channel: channel,
	}
}

// maxMessageAge drops notifications that sat in a reconnect backlog; a
// nudge shown minutes late is worse than none.
const maxMessageAge = 30 * time.Second

type envelope struct {
	SentAt time.Time           `json:"sent_at"`
	Msg    realtime.SSEMessage `json:"msg"`
}

func encodeEnvelope(msg realtime.SSEMessage, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{SentAt: now.UTC(), Msg: msg})
}

func decodeEnvelope(payload string, now time.Time) (realtime.SSEMessage, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return realtime.SSEMessage{}, err
	}
	if env.Msg.Channel == "" {
		return realtime.SSEMessage{}, fmt.Errorf("message without channel")
	}
	if age := now.Sub(env.SentAt); !env.SentAt.IsZero() && age > maxMessageAge {
		return realtime.SSEMessage{}, fmt.Errorf("stale message (%s old)", age.Truncate(time.Second))
	}
	return env.Msg, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bus not initialized")
	}
	raw, err := encodeEnvelope(msg, time.Now())
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// StartForwarder subscribes before returning so no message published after
// it returns is missed.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					b.log.Warn("redis SSE subscription closed")
					return
				}
				msg, err := decodeEnvelope(m.Payload, time.Now())
				if err != nil {
					b.log.Warn("dropping redis SSE message", "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
