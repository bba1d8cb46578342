package nudge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RuleState is the per (user, rule) firing record. Rows are created lazily
// and never deleted by the evaluator.
type RuleState struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_rules_state_user_rule,priority:1" json:"user_id"`
	RuleID       string          `gorm:"not null;column:rule_id;uniqueIndex:idx_rules_state_user_rule,priority:2" json:"rule_id"`
	LastFiredAt  *time.Time      `gorm:"column:last_fired_at" json:"last_fired_at,omitempty"`
	SnoozedUntil *time.Time      `gorm:"column:snoozed_until" json:"snoozed_until,omitempty"`
	FiredOnDate  *datatypes.Date `gorm:"column:fired_on_date" json:"fired_on_date,omitempty"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (RuleState) TableName() string { return "rules_state" }

func (s *RuleState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
