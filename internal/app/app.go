package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/db"
	apphttp "github.com/yungbote/healthwhisperer-backend/internal/http"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/envutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	"github.com/yungbote/healthwhisperer-backend/internal/realtime"
	rulesconfig "github.com/yungbote/healthwhisperer-backend/internal/rules/config"
	"github.com/yungbote/healthwhisperer-backend/internal/temporalx/nudgesweep"
	"github.com/yungbote/healthwhisperer-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Server   *apphttp.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	dbs, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, err
	}

	rulesCfg := rulesconfig.Current(log)
	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(dbs.DB(), log)
	serviceset := wireServices(dbs.DB(), log, cfg, rulesCfg, reposet, clients, metrics)

	return &App{
		Log:          log,
		DB:           dbs.DB(),
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		SSEHub:       hub,
		Server:       wireServer(dbs.DB(), log, cfg, serviceset, hub, metrics),
		dbService:    dbs,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the SSE forwarder and the nudge scheduler. With Temporal
// configured the sweep runs as a workflow; otherwise the in-process ticker
// drives it.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
		return fmt.Errorf("start SSE forwarder: %w", err)
	}

	if !a.Cfg.SchedulerEnabled {
		a.Log.Info("nudge scheduler disabled")
		return nil
	}
	sched := a.Services.Scheduler
	if a.Clients.Temporal == nil {
		sched.Start(ctx)
		return nil
	}
	runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Cfg.Temporal, sched, nudgesweep.Input{Interval: sched.Interval()})
	if err != nil {
		return err
	}
	return runner.Start(ctx)
}

// Run serves HTTP until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	a.Log.Info("HTTP server listening", "address", a.Cfg.Address())
	return a.Server.Run(ctx, a.Cfg.Address())
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close(a.Log)
	if a.otelShutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(shutdownCtx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	a.Log.Sync()
}
