package health

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
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// LogFilter narrows List. Zero values mean "no filter"; Limit <= 0 means
// DefaultLogLimit.
type LogFilter struct {
	Type  string
	Since *time.Time
	Until *time.Time
	Limit int
}

type LogRepo interface {
	Create(dbc dbctx.Context, logs []*types.Log) ([]*types.Log, error)
	GetByID(dbc dbctx.Context, userID, logID uuid.UUID) (*types.Log, error)
	List(dbc dbctx.Context, userID uuid.UUID, f LogFilter) ([]*types.Log, error)
	ListAll(dbc dbctx.Context, userID uuid.UUID, f LogFilter) ([]*types.Log, error)
	DeleteByID(dbc dbctx.Context, userID, logID uuid.UUID) (bool, error)
}

type logRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLogRepo(db *gorm.DB, baseLog *logger.Logger) LogRepo {
	return &logRepo{
		db:  db,
		log: baseLog.With("repo", "LogRepo"),
	}
}

func (r *logRepo) Create(dbc dbctx.Context, logs []*types.Log) ([]*types.Log, error) {
	t := dbc.Conn(r.db)
	if len(logs) == 0 {
		return []*types.Log{}, nil
	}
	if err := t.Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *logRepo) GetByID(dbc dbctx.Context, userID, logID uuid.UUID) (*types.Log, error) {
	t := dbc.Conn(r.db)
	if userID == uuid.Nil || logID == uuid.Nil {
		return nil, nil
	}
	var row types.Log
	err := t.Where("id = ? AND user_id = ?", logID, userID).
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

// List returns the newest entries first.
func (r *logRepo) List(dbc dbctx.Context, userID uuid.UUID, f LogFilter) ([]*types.Log, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	return r.find(dbc, userID, f, limit)
}

// ListAll is List without a row cap; f.Limit is ignored. Callers bound it
// with Since.
func (r *logRepo) ListAll(dbc dbctx.Context, userID uuid.UUID, f LogFilter) ([]*types.Log, error) {
	return r.find(dbc, userID, f, -1)
}

func (r *logRepo) find(dbc dbctx.Context, userID uuid.UUID, f LogFilter, limit int) ([]*types.Log, error) {
	t := dbc.Conn(r.db)
	var out []*types.Log
	if userID == uuid.Nil {
		return out, nil
	}
	q := t.Where("user_id = ?", userID)
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Since != nil {
		q = q.Where("ts >= ?", f.Since.UTC())
	}
	if f.Until != nil {
		q = q.Where("ts < ?", f.Until.UTC())
	}
	q = q.Order("ts DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *logRepo) DeleteByID(dbc dbctx.Context, userID, logID uuid.UUID) (bool, error) {
	t := dbc.Conn(r.db)
	res := t.Where("id = ? AND user_id = ?", logID, userID).
		Delete(&types.Log{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
