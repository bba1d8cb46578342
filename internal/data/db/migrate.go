package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	apperr "github.com/yungbote/healthwhisperer-backend/internal/pkg/errors"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// TableStatus reports which expected tables exist.
type TableStatus struct {
	Dialect string          `json:"dialect"`
	Tables  map[string]bool `json:"tables"`
	Missing []string        `json:"missing"`
}

func (s TableStatus) OK() bool { return len(s.Missing) == 0 }

// VerifySchema checks every table the app expects without modifying anything.
func VerifySchema(ctx context.Context, db *gorm.DB) TableStatus {
	status := TableStatus{
		Dialect: db.Dialector.Name(),
		Tables:  make(map[string]bool, len(types.TableNames)),
		Missing: []string{},
	}
	m := db.WithContext(ctx).Migrator()
	for _, name := range types.TableNames {
		ok := m.HasTable(name)
		status.Tables[name] = ok
		if !ok {
			status.Missing = append(status.Missing, name)
		}
	}
	return status
}

// TranslateError maps driver-level errors onto the shared sentinels.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", apperr.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
		case "23502", "23503", "23514": // not_null, foreign_key, check
			return fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
		}
	}
	return err
}
