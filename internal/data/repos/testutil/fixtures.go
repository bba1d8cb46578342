package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLog(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, logType string, payload map[string]any, ts time.Time) *types.Log {
	tb.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		tb.Fatalf("marshal payload: %v", err)
	}
	l := &types.Log{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      logType,
		Payload:   datatypes.JSON(raw),
		Timestamp: ts,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed log: %v", err)
	}
	return l
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, p *types.Profile) *types.Profile {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}
