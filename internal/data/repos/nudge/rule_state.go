package nudge

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

// RuleStateUpdate is a partial upsert: nil fields leave the stored value
// unchanged (or NULL for a new row).
type RuleStateUpdate struct {
	UserID       uuid.UUID
	RuleID       string
	LastFiredAt  *time.Time
	SnoozedUntil *time.Time
	FiredOnDate  *datatypes.Date
}

type RuleStateRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID, ruleID string) (*types.RuleState, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.RuleState, error)
	Upsert(dbc dbctx.Context, u RuleStateUpdate) error
}

type ruleStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRuleStateRepo(db *gorm.DB, baseLog *logger.Logger) RuleStateRepo {
	return &ruleStateRepo{
		db:  db,
		log: baseLog.With("repo", "RuleStateRepo"),
	}
}

// Get returns nil, nil when the rule has never fired or been snoozed.
func (r *ruleStateRepo) Get(dbc dbctx.Context, userID uuid.UUID, ruleID string) (*types.RuleState, error) {
	t := dbc.Conn(r.db)
	if userID == uuid.Nil || ruleID == "" {
		return nil, nil
	}
	var row types.RuleState
	err := t.Where("user_id = ? AND rule_id = ?", userID, ruleID).
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ruleStateRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.RuleState, error) {
	t := dbc.Conn(r.db)
	var out []*types.RuleState
	if userID == uuid.Nil {
		return out, nil
	}
	if err := t.Where("user_id = ?", userID).
		Order("rule_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert is last-writer-wins per column on (user_id, rule_id).
func (r *ruleStateRepo) Upsert(dbc dbctx.Context, u RuleStateUpdate) error {
	t := dbc.Conn(r.db)
	if u.UserID == uuid.Nil || u.RuleID == "" {
		return nil
	}

	row := &types.RuleState{
		ID:          uuid.New(),
		UserID:      u.UserID,
		RuleID:      u.RuleID,
		FiredOnDate: u.FiredOnDate,
		UpdatedAt:   time.Now().UTC(),
	}
	cols := []string{"updated_at"}
	if u.LastFiredAt != nil {
		v := u.LastFiredAt.UTC()
		row.LastFiredAt = &v
		cols = append(cols, "last_fired_at")
	}
	if u.SnoozedUntil != nil {
		v := u.SnoozedUntil.UTC()
		row.SnoozedUntil = &v
		cols = append(cols, "snoozed_until")
	}
	if u.FiredOnDate != nil {
		cols = append(cols, "fired_on_date")
	}

	return t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "rule_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).
		Create(row).Error
}
