package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventNudgeFired     SSEEvent = "NudgeFired"
	SSEEventNudgeResponded SSEEvent = "NudgeResponded"
	SSEEventLogCreated     SSEEvent = "LogCreated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every stream of userID subscribes to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
