package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error)
	GetByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error)
	GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error)
	TouchLastSeen(dbc dbctx.Context, tokenID uuid.UUID, at time.Time) error
	SoftDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error
	SoftDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error
	FullDeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*types.UserToken) ([]*types.UserToken, error) {
	t := dbc.Conn(utr.db)
	if len(userTokens) == 0 {
		return []*types.UserToken{}, nil
	}
	if err := t.Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) ([]*types.UserToken, error) {
	t := dbc.Conn(utr.db)
	var results []*types.UserToken
	if len(tokenIDs) == 0 {
		return results, nil
	}
	if err := t.Where("id IN ?", tokenIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) GetByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.UserToken, error) {
	t := dbc.Conn(utr.db)
	var results []*types.UserToken
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := t.Where("user_id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) GetByRefreshTokens(dbc dbctx.Context, refreshTokens []string) ([]*types.UserToken, error) {
	t := dbc.Conn(utr.db)
	var results []*types.UserToken
	if len(refreshTokens) == 0 {
		return results, nil
	}
	if err := t.Where("refresh_token IN ?", refreshTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) TouchLastSeen(dbc dbctx.Context, tokenID uuid.UUID, at time.Time) error {
	t := dbc.Conn(utr.db)
	if tokenID == uuid.Nil {
		return nil
	}
	return t.Model(&types.UserToken{}).
		Where("id = ?", tokenID).
		Update("last_seen_at", at).Error
}

func (utr *userTokenRepo) SoftDeleteByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID) error {
	t := dbc.Conn(utr.db)
	if len(tokenIDs) == 0 {
		return nil
	}
	return t.Where("id IN ?", tokenIDs).
		Delete(&types.UserToken{}).Error
}

func (utr *userTokenRepo) SoftDeleteByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) error {
	t := dbc.Conn(utr.db)
	if len(userIDs) == 0 {
		return nil
	}
	return t.Where("user_id IN ?", userIDs).
		Delete(&types.UserToken{}).Error
}

// FullDeleteExpired hard-deletes sessions whose refresh window ended before
// the cutoff, soft-deleted or not.
func (utr *userTokenRepo) FullDeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	t := dbc.Conn(utr.db)
	res := t.Unscoped().
		Where("expires_at < ?", before).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}
