package health

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/healthwhisperer-backend/internal/data/repos/testutil"
	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/pkg/dbctx"
)

func TestProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "profile@example.com")

	got, err := repo.GetByUserID(dbc, u.ID)
	if err != nil || got != nil {
		t.Fatalf("GetByUserID(empty): got=%+v err=%v", got, err)
	}

	w := 70.0
	if err := repo.Upsert(dbc, &types.Profile{
		UserID:            u.ID,
		WeightKG:          &w,
		ActivityLevel:     "low",
		MedicalConditions: datatypes.JSONSlice[string]{"Joint pain"},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	w2 := 72.5
	if err := repo.Upsert(dbc, &types.Profile{
		UserID:            u.ID,
		WeightKG:          &w2,
		ActivityLevel:     "moderate",
		MedicalConditions: datatypes.JSONSlice[string]{"Joint pain"},
		Goals:             datatypes.JSONSlice[string]{"walk more"},
	}); err != nil {
		t.Fatalf("Upsert(update): %v", err)
	}

	got, err = repo.GetByUserID(dbc, u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserID: got=%+v err=%v", got, err)
	}
	if got.WeightKG == nil || *got.WeightKG != 72.5 || got.ActivityLevel != "moderate" {
		t.Fatalf("profile not updated: %+v", got)
	}
	if len(got.MedicalConditions) != 1 || got.MedicalConditions[0] != "Joint pain" || len(got.Goals) != 1 {
		t.Fatalf("json lists not stored: %+v", got)
	}

	rows, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByUserIDs: err=%v len=%d", err, len(rows))
	}
}

func TestLogRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLogRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "logs@example.com")
	other := testutil.SeedUser(t, ctx, tx, "other-logs@example.com")

	base := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	first := testutil.SeedLog(t, ctx, tx, u.ID, types.LogTypeNutrition, map[string]any{"water_ml": 250}, base)
	testutil.SeedLog(t, ctx, tx, u.ID, types.LogTypePhysical, map[string]any{"minutes": 20}, base.Add(time.Hour))
	testutil.SeedLog(t, ctx, tx, u.ID, types.LogTypeNutrition, map[string]any{"meal_time": "lunch"}, base.Add(5*time.Hour))
	testutil.SeedLog(t, ctx, tx, u.ID, types.LogTypeMental, map[string]any{"mood_score": 7}, base.Add(-24*time.Hour))
	testutil.SeedLog(t, ctx, tx, other.ID, types.LogTypeNutrition, map[string]any{"water_ml": 100}, base)

	all, err := repo.List(dbc, u.ID, LogFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("List: expected 4 rows, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Fatalf("List not newest-first at %d", i)
		}
	}

	nutrition, err := repo.List(dbc, u.ID, LogFilter{Type: types.LogTypeNutrition, Since: &base})
	if err != nil {
		t.Fatalf("List(nutrition): %v", err)
	}
	if len(nutrition) != 2 {
		t.Fatalf("List(nutrition): expected 2, got %d", len(nutrition))
	}

	limited, err := repo.List(dbc, u.ID, LogFilter{Limit: 1})
	if err != nil || len(limited) != 1 {
		t.Fatalf("List(limit): err=%v len=%d", err, len(limited))
	}

	busy := testutil.SeedUser(t, ctx, tx, "busy-logs@example.com")
	burst := make([]*types.Log, 0, MaxLogLimit+1)
	for i := 0; i <= MaxLogLimit; i++ {
		burst = append(burst, &types.Log{
			UserID:    busy.ID,
			Type:      types.LogTypeNutrition,
			Payload:   datatypes.JSON(`{"water_ml":10}`),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
	}
	if _, err := repo.Create(dbc, burst); err != nil {
		t.Fatalf("Create(burst): %v", err)
	}
	capped, err := repo.List(dbc, busy.ID, LogFilter{Since: &base, Limit: MaxLogLimit + 100})
	if err != nil || len(capped) != MaxLogLimit {
		t.Fatalf("List(capped): err=%v len=%d", err, len(capped))
	}
	day, err := repo.ListAll(dbc, busy.ID, LogFilter{Type: types.LogTypeNutrition, Since: &base, Limit: 1})
	if err != nil || len(day) != MaxLogLimit+1 {
		t.Fatalf("ListAll: err=%v len=%d", err, len(day))
	}
	if !day[len(day)-1].Timestamp.Equal(base) {
		t.Fatalf("ListAll dropped the earliest entry: %v", day[len(day)-1].Timestamp)
	}

	got, err := repo.GetByID(dbc, u.ID, first.ID)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, other.ID, first.ID); err != nil || got != nil {
		t.Fatalf("GetByID(other user): got=%+v err=%v", got, err)
	}

	if ok, err := repo.DeleteByID(dbc, other.ID, first.ID); err != nil || ok {
		t.Fatalf("DeleteByID(other user): ok=%v err=%v", ok, err)
	}
	if ok, err := repo.DeleteByID(dbc, u.ID, first.ID); err != nil || !ok {
		t.Fatalf("DeleteByID: ok=%v err=%v", ok, err)
	}
	if got, err := repo.GetByID(dbc, u.ID, first.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got=%+v err=%v", got, err)
	}
}
