package nudge

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

const (
	DefaultNudgeLimit = 50
	MaxNudgeLimit     = 500
)

type NudgeFilter struct {
	Category string
	RuleID   string
	Since    *time.Time
	Until    *time.Time
	Limit    int
}

type NudgeRepo interface {
	Create(dbc dbctx.Context, nudges []*types.Nudge) ([]*types.Nudge, error)
	GetByID(dbc dbctx.Context, userID, nudgeID uuid.UUID) (*types.Nudge, error)
	List(dbc dbctx.Context, userID uuid.UUID, f NudgeFilter) ([]*types.Nudge, error)
	SetResponse(dbc dbctx.Context, userID, nudgeID uuid.UUID, accepted *bool, at time.Time) (bool, error)
}

type nudgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNudgeRepo(db *gorm.DB, baseLog *logger.Logger) NudgeRepo {
	return &nudgeRepo{
		db:  db,
		log: baseLog.With("repo", "NudgeRepo"),
	}
}

func (r *nudgeRepo) Create(dbc dbctx.Context, nudges []*types.Nudge) ([]*types.Nudge, error) {
	t := dbc.Conn(r.db)
	if len(nudges) == 0 {
		return []*types.Nudge{}, nil
	}
	if err := t.Create(&nudges).Error; err != nil {
		return nil, err
	}
	return nudges, nil
}

func (r *nudgeRepo) GetByID(dbc dbctx.Context, userID, nudgeID uuid.UUID) (*types.Nudge, error) {
	t := dbc.Conn(r.db)
	if userID == uuid.Nil || nudgeID == uuid.Nil {
		return nil, nil
	}
	var row types.Nudge
	err := t.Where("id = ? AND user_id = ?", nudgeID, userID).
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

// List returns the newest nudges first.
func (r *nudgeRepo) List(dbc dbctx.Context, userID uuid.UUID, f NudgeFilter) ([]*types.Nudge, error) {
	t := dbc.Conn(r.db)
	var out []*types.Nudge
	if userID == uuid.Nil {
		return out, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultNudgeLimit
	}
	if limit > MaxNudgeLimit {
		limit = MaxNudgeLimit
	}
	q := t.Where("user_id = ?", userID)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.RuleID != "" {
		q = q.Where("rule_id = ?", f.RuleID)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", f.Since.UTC())
	}
	if f.Until != nil {
		q = q.Where("created_at < ?", f.Until.UTC())
	}
	if err := q.Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SetResponse records accept (true), dismiss (false) or snooze (nil). It
// reports false when the nudge does not belong to the user.
func (r *nudgeRepo) SetResponse(dbc dbctx.Context, userID, nudgeID uuid.UUID, accepted *bool, at time.Time) (bool, error) {
	t := dbc.Conn(r.db)
	res := t.Model(&types.Nudge{}).
		Where("id = ? AND user_id = ?", nudgeID, userID).
		Updates(map[string]any{
			"accepted":     accepted,
			"responded_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
