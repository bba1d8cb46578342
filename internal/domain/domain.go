package domain

import (
	"github.com/yungbote/healthwhisperer-backend/internal/domain/auth"
	"github.com/yungbote/healthwhisperer-backend/internal/domain/health"
	"github.com/yungbote/healthwhisperer-backend/internal/domain/nudge"
	"github.com/yungbote/healthwhisperer-backend/internal/domain/user"
)

const (
	LogTypeMental    = health.LogTypeMental
	LogTypeNutrition = health.LogTypeNutrition
	LogTypePhysical  = health.LogTypePhysical

	NudgeSourceRule = nudge.SourceRule
	NudgeSourceAI   = nudge.SourceAI
)

type User = user.User
type Preferences = user.Preferences
type QuietHours = user.QuietHours
type UserToken = auth.UserToken

type Profile = health.Profile
type Log = health.Log

type Nudge = nudge.Nudge
type RuleState = nudge.RuleState

var (
	DefaultPreferences = user.DefaultPreferences
	DecodePreferences  = user.DecodePreferences
	MergePreferences   = user.MergePreferences
)

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Profile{},
		&Log{},
		&Nudge{},
		&RuleState{},
	}
}

// TableNames are the tables Models creates.
var TableNames = []string{"users", "user_token", "profiles", "logs", "nudges", "rules_state"}
