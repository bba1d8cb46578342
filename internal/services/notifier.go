package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
)

// NudgeNotifier pushes nudge and log activity to the user's SSE channel.
type NudgeNotifier interface {
	NudgeFired(ctx context.Context, userID uuid.UUID, fired rules.FiredRule)
	NudgeResponded(ctx context.Context, userID uuid.UUID, n *types.Nudge)
	LogCreated(ctx context.Context, userID uuid.UUID, l *types.Log)
}

type nudgeNotifier struct {
	emit SSEEmitter
}

func NewNudgeNotifier(emit SSEEmitter) NudgeNotifier {
	return &nudgeNotifier{emit: emit}
}

func (n *nudgeNotifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (n *nudgeNotifier) NudgeFired(ctx context.Context, userID uuid.UUID, fired rules.FiredRule) {
	n.send(ctx, userID, realtime.SSEEventNudgeFired, map[string]any{"nudge": fired})
}

func (n *nudgeNotifier) NudgeResponded(ctx context.Context, userID uuid.UUID, nudge *types.Nudge) {
	n.send(ctx, userID, realtime.SSEEventNudgeResponded, map[string]any{"nudge": nudge})
}

func (n *nudgeNotifier) LogCreated(ctx context.Context, userID uuid.UUID, l *types.Log) {
	n.send(ctx, userID, realtime.SSEEventLogCreated, map[string]any{"log_id": l.ID, "type": l.Type, "ts": l.Timestamp})
}
