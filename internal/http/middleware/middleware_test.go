package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/apierr"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/ctxutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type stubAuth struct {
	services.AuthService
	userID uuid.UUID
}

func (s *stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	switch token {
	case "good":
	case "stale":
		return nil, apierr.New(http.StatusUnauthorized, "session_timeout", errors.New("session timed out"))
	default:
		return nil, errors.New("bad token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID, SessionID: uuid.New()}), nil
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	am := NewAuthMiddleware(logger.Nop(), &stubAuth{userID: userID})

	r := gin.New()
	r.Use(am.RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetRequestData(c.Request.Context()).UserID.String())
	})

	cases := []struct {
		name   string
		header string
		query  string
		want   int
		code   string
	}{
		{"missing", "", "", http.StatusUnauthorized, "unauthorized"},
		{"bad", "Bearer nope", "", http.StatusUnauthorized, "unauthorized"},
		{"timed out", "Bearer stale", "", http.StatusUnauthorized, "session_timeout"},
		{"bearer", "Bearer good", "", http.StatusOK, ""},
		{"query token", "", "?token=good", http.StatusOK, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status=%d body=%s", tc.name, rec.Code, rec.Body.String())
		}
		if tc.want == http.StatusOK && rec.Body.String() != userID.String() {
			t.Fatalf("%s: body=%s", tc.name, rec.Body.String())
		}
		if tc.want != http.StatusOK && !strings.Contains(rec.Body.String(), `"code":"`+tc.code+`"`) {
			t.Fatalf("%s: envelope=%s", tc.name, rec.Body.String())
		}
	}
}

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID == "" {
		t.Fatalf("trace data=%+v", seen)
	}
	if rec.Header().Get(HeaderRequestID) != "req-1" || rec.Header().Get(HeaderTraceID) != seen.TraceID {
		t.Fatalf("headers=%v", rec.Header())
	}
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("METRICS_ENABLED", "true")
	m := observability.Init(logger.Nop())
	if m == nil {
		t.Fatalf("metrics not initialized")
	}
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/logs", func(c *gin.Context) {
		time.Sleep(time.Millisecond)
		c.Status(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/logs", nil))

	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(b.String(), `hw_api_requests_total{method="GET",route="/api/logs",status="200"} 1.000000`) {
		t.Fatalf("missing request series:\n%s", b.String())
	}
}
