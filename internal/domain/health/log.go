package health

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LogTypeMental    = "mental"
	LogTypeNutrition = "nutrition"
	LogTypePhysical  = "physical"
)

// Log is one logged event. Payload shape depends on Type.
type Log struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_logs_user_type_ts,priority:1" json:"user_id"`
	Type      string         `gorm:"not null;column:type;index:idx_logs_user_type_ts,priority:2" json:"type"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	Timestamp time.Time      `gorm:"not null;column:ts;index:idx_logs_user_type_ts,priority:3" json:"ts"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (Log) TableName() string { return "logs" }

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	l.Timestamp = l.Timestamp.UTC()
	return nil
}
