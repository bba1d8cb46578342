package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/jobs/scheduler"
	"github.com/yungbote/healthwhisperer-backend/internal/observability"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
	rulesconfig "github.com/yungbote/healthwhisperer-backend/internal/rules/config"
	"github.com/yungbote/healthwhisperer-backend/internal/services"
)

type Services struct {
	Auth    services.AuthService
	User    services.UserService
	Profile services.ProfileService
	Log     services.LogService
	Nudge   services.NudgeService
	Summary services.SummaryService
	Export  services.ExportService

	Notifier  services.NudgeNotifier
	Scheduler *scheduler.Scheduler
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	rulesCfg rulesconfig.Config,
	r Repos,
	c Clients,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")
	notify := services.NewNudgeNotifier(&services.BusEmitter{Bus: c.Bus, Log: log})
	copy := services.NewCopywriter(log, c.OpenAI)

	nudge := services.NewNudgeService(db, log, r.User, r.Profile, r.Log, r.Nudge, r.RuleState, copy, notify, rulesCfg, metrics)
	return Services{
		Auth:      services.NewAuthService(db, log, r.User, r.Profile, r.UserToken, cfg.Auth),
		User:      services.NewUserService(log, r.User),
		Profile:   services.NewProfileService(log, r.Profile),
		Log:       services.NewLogService(log, r.Log, notify),
		Nudge:     nudge,
		Summary:   services.NewSummaryService(log, r.User, r.Profile, r.Log, r.Nudge, copy),
		Export:    services.NewExportService(log, r.User, r.Profile, r.Log, r.Nudge, r.RuleState, c.Archive),
		Notifier:  notify,
		Scheduler: scheduler.New(log, r.User, nudge, rulesCfg.Scheduler, metrics),
	}
}
