package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/healthwhisperer-backend/internal/http/handlers"
	httpMW "github.com/yungbote/healthwhisperer-backend/internal/http/middleware"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	// ServiceName enables otelgin spans when set.
	ServiceName string

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	UserHandler     *httpH.UserHandler
	LogHandler      *httpH.LogHandler
	NudgeHandler    *httpH.NudgeHandler
	SummaryHandler  *httpH.SummaryHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		if cfg.Metrics != nil {
			r.GET("/metrics", cfg.HealthHandler.Metrics)
		}
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
			api.POST("/password/reset", cfg.AuthHandler.ResetPassword)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Me
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
			protected.GET("/me/preferences", cfg.UserHandler.GetPreferences)
			protected.PATCH("/me/preferences", cfg.UserHandler.PatchPreferences)
			protected.GET("/me/profile", cfg.UserHandler.GetProfile)
			protected.PUT("/me/profile", cfg.UserHandler.PutProfile)
		}

		// Logs
		if cfg.LogHandler != nil {
			protected.POST("/logs/:type", cfg.LogHandler.Create)
			protected.GET("/logs", cfg.LogHandler.List)
			protected.DELETE("/logs/:id", cfg.LogHandler.Delete)
		}

		// Nudges
		if cfg.NudgeHandler != nil {
			protected.POST("/nudges/evaluate", cfg.NudgeHandler.Evaluate)
			protected.POST("/nudges/suggest", cfg.NudgeHandler.Suggest)
			protected.GET("/nudges", cfg.NudgeHandler.List)
			protected.GET("/nudges/rules", cfg.NudgeHandler.ListRules)
			protected.POST("/nudges/rules/:rule_id/respond", cfg.NudgeHandler.RespondRule)
			protected.POST("/nudges/:id/respond", cfg.NudgeHandler.RespondNudge)
		}

		// Summary, AI copy and export
		if cfg.SummaryHandler != nil {
			protected.GET("/summary/today", cfg.SummaryHandler.Today)
			protected.GET("/ai/headline", cfg.SummaryHandler.Headline)
			protected.POST("/ai/portions", cfg.SummaryHandler.Portions)
			protected.GET("/export/bundle", cfg.SummaryHandler.Bundle)
			protected.GET("/export/:kind", cfg.SummaryHandler.Export)
		}

		// Admin
		if cfg.HealthHandler != nil {
			protected.GET("/admin/db", cfg.HealthHandler.DBInfo)
		}
	}

	return r
}
