package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperr "github.com/yungbote/healthwhisperer-backend/internal/pkg/errors"
)

func TestTranslateError(t *testing.T) {
	plain := errors.New("boom")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"duplicate", gorm.ErrDuplicatedKey, apperr.ErrConflict},
		{"not found", gorm.ErrRecordNotFound, apperr.ErrNotFound},
		{"pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), apperr.ErrConflict},
		{"pg check", &pgconn.PgError{Code: "23514"}, apperr.ErrInvalidArgument},
		{"other", plain, plain},
	}
	for _, tc := range cases {
		if got := TranslateError(tc.in); !errors.Is(got, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
	if TranslateError(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
