package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
)

// localBus delivers in-process only. Used when REDIS_ADDR is unset.
type localBus struct {
	mu        sync.RWMutex
	listeners []func(realtime.SSEMessage)
}

func NewLocalBus() Bus { return &localBus{} }

func (b *localBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.listeners {
		fn(msg)
	}
	return nil
}

func (b *localBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	b.listeners = append(b.listeners, onMsg)
	idx := len(b.listeners) - 1
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.listeners[idx] = func(realtime.SSEMessage) {}
		b.mu.Unlock()
	}()
	return nil
}

func (b *localBus) Close() error { return nil }
