package health

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type ProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Profile, error)
	Upsert(dbc dbctx.Context, row *types.Profile) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{
		db:  db,
		log: baseLog.With("repo", "ProfileRepo"),
	}
}

// GetByUserID returns nil, nil when the user has no profile yet.
func (r *profileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	t := dbc.Conn(r.db)
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.Profile
	err := t.Where("user_id = ?", userID).Limit(1).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *profileRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Profile, error) {
	t := dbc.Conn(r.db)
	var out []*types.Profile
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := t.Where("user_id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *profileRepo) Upsert(dbc dbctx.Context, row *types.Profile) error {
	t := dbc.Conn(r.db)
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	return t.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"dob",
			"sex",
			"height_cm",
			"weight_kg",
			"activity_level",
			"dietary_prefs",
			"allergies",
			"medical_conditions",
			"disabilities",
			"goals",
			"favorite_activities",
			"happy_triggers",
			"social_circle",
			"doctor_notes",
			"updated_at",
		}),
	}).
		Create(row).Error
}
