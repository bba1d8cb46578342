package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos/auth"
	"github.com/yungbote/healthwhisperer-backend/internal/data/repos/health"
	"github.com/yungbote/healthwhisperer-backend/internal/data/repos/nudge"
	"github.com/yungbote/healthwhisperer-backend/internal/data/repos/user"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type ProfileRepo = health.ProfileRepo
type LogRepo = health.LogRepo
type LogFilter = health.LogFilter

type NudgeRepo = nudge.NudgeRepo
type NudgeFilter = nudge.NudgeFilter
type RuleStateRepo = nudge.RuleStateRepo
type RuleStateUpdate = nudge.RuleStateUpdate

const (
	DefaultLogLimit = health.DefaultLogLimit
	MaxLogLimit     = health.MaxLogLimit

	DefaultNudgeLimit = nudge.DefaultNudgeLimit
	MaxNudgeLimit     = nudge.MaxNudgeLimit
)

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return health.NewProfileRepo(db, baseLog)
}

func NewLogRepo(db *gorm.DB, baseLog *logger.Logger) LogRepo {
	return health.NewLogRepo(db, baseLog)
}

func NewNudgeRepo(db *gorm.DB, baseLog *logger.Logger) NudgeRepo {
	return nudge.NewNudgeRepo(db, baseLog)
}

func NewRuleStateRepo(db *gorm.DB, baseLog *logger.Logger) RuleStateRepo {
	return nudge.NewRuleStateRepo(db, baseLog)
}
