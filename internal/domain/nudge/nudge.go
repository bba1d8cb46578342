package nudge

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SourceRule = "rule"
	SourceAI   = "ai"
)

// Nudge is a delivered or suggested nudge and the user's response to it.
// Accepted is nil until the user accepts or dismisses.
type Nudge struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_nudges_user_created,priority:1" json:"user_id"`
	RuleID      string     `gorm:"column:rule_id;index" json:"rule_id,omitempty"`
	Source      string     `gorm:"column:source;not null" json:"source"`
	Category    string     `gorm:"column:category;not null" json:"category"`
	Title       string     `gorm:"column:title" json:"title"`
	Body        string     `gorm:"column:body" json:"body"`
	Rationale   string     `gorm:"column:rationale" json:"rationale,omitempty"`
	Accepted    *bool      `gorm:"column:accepted" json:"accepted"`
	RespondedAt *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_nudges_user_created,priority:2" json:"created_at"`
}

func (Nudge) TableName() string { return "nudges" }

func (n *Nudge) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return nil
}
