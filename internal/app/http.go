package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/healthwhisperer-backend/internal/http"
	httpH "github.com/yungbote/healthwhisperer-backend/internal/http/handlers"
	httpMW "github.com/yungbote/healthwhisperer-backend/internal/http/middleware"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
)

func wireServer(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	s Services,
	hub *realtime.SSEHub,
	metrics *observability.Metrics,
) *apphttp.Server {
	log.Info("Wiring HTTP server...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		AllowedOrigins:  cfg.AllowedOrigins,
		ServiceName:     cfg.ServiceName,
		AuthHandler:     httpH.NewAuthHandler(s.Auth),
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, s.Auth),
		UserHandler:     httpH.NewUserHandler(s.User, s.Profile),
		LogHandler:      httpH.NewLogHandler(s.Log),
		NudgeHandler:    httpH.NewNudgeHandler(s.Nudge),
		SummaryHandler:  httpH.NewSummaryHandler(s.Summary, s.Export),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub),
		HealthHandler:   httpH.NewHealthHandler(db, metrics),
	})
}
