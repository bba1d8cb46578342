package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/healthwhisperer-backend/internal/http/response"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/ctxutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // by session id
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/sse/stream
// A second stream for the same session replaces the first.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.SessionID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("not authenticated"))
		return
	}

	client := h.hub.NewSSEClient(rd.UserID)
	h.mu.Lock()
	if existing, ok := h.clients[rd.SessionID]; ok {
		h.hub.CloseClient(existing)
	}
	h.clients[rd.SessionID] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, realtime.UserChannel(rd.UserID))
	h.log.Debug("SSE stream open", "user_id", rd.UserID, "session_id", rd.SessionID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[rd.SessionID] == client {
		delete(h.clients, rd.SessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}
