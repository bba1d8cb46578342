package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/healthwhisperer-backend/internal/data/db"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	ListPage(dbc dbctx.Context, afterID uuid.UUID, limit int) ([]*types.User, error)
	UpdateName(dbc dbctx.Context, userID uuid.UUID, name string) error
	UpdatePassword(dbc dbctx.Context, userID uuid.UUID, passwordHash string) error
	UpdatePreferences(dbc dbctx.Context, userID uuid.UUID, prefs datatypes.JSON) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	t := dbc.Conn(ur.db)
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := t.Create(&users).Error; err != nil {
		return nil, db.TranslateError(err)
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	t := dbc.Conn(ur.db)
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := t.Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*types.User, error) {
	t := dbc.Conn(ur.db)
	var results []*types.User
	if len(userEmails) == 0 {
		return results, nil
	}
	if err := t.Where("email IN ?", userEmails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	t := dbc.Conn(ur.db)
	var count int64
	if err := t.Model(&types.User{}).
		Where("email = ?", userEmail).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPage is keyset pagination over users ordered by id. Pass uuid.Nil to
// start from the beginning.
func (ur *userRepo) ListPage(dbc dbctx.Context, afterID uuid.UUID, limit int) ([]*types.User, error) {
	t := dbc.Conn(ur.db)
	if limit <= 0 {
		limit = 100
	}
	q := t.Model(&types.User{}).Order("id ASC").Limit(limit)
	if afterID != uuid.Nil {
		q = q.Where("id > ?", afterID)
	}
	var results []*types.User
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) UpdateName(dbc dbctx.Context, userID uuid.UUID, name string) error {
	return ur.update(dbc, userID, map[string]any{"name": name})
}

func (ur *userRepo) UpdatePassword(dbc dbctx.Context, userID uuid.UUID, passwordHash string) error {
	return ur.update(dbc, userID, map[string]any{"password": passwordHash})
}

func (ur *userRepo) UpdatePreferences(dbc dbctx.Context, userID uuid.UUID, prefs datatypes.JSON) error {
	return ur.update(dbc, userID, map[string]any{"preferences": prefs})
}

func (ur *userRepo) update(dbc dbctx.Context, userID uuid.UUID, fields map[string]any) error {
	t := dbc.Conn(ur.db)
	fields["updated_at"] = time.Now().UTC()
	return t.Model(&types.User{}).
		Where("id = ?", userID).
		Updates(fields).Error
}
