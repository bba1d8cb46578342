package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	Profile   repos.ProfileRepo
	Log       repos.LogRepo
	Nudge     repos.NudgeRepo
	RuleState repos.RuleStateRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		Profile:   repos.NewProfileRepo(db, log),
		Log:       repos.NewLogRepo(db, log),
		Nudge:     repos.NewNudgeRepo(db, log),
		RuleState: repos.NewRuleStateRepo(db, log),
	}
}
