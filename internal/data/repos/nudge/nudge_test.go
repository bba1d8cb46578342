package nudge

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

func TestRuleStateRepoPartialUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewRuleStateRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "rulestate@example.com")

	if got, err := repo.Get(dbc, u.ID, "hydration_10m"); err != nil || got != nil {
		t.Fatalf("Get(missing): got=%+v err=%v", got, err)
	}

	fired := time.Date(2025, time.March, 10, 9, 5, 0, 0, time.UTC)
	day := datatypes.Date(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	if err := repo.Upsert(dbc, RuleStateUpdate{UserID: u.ID, RuleID: "breakfast_9am", LastFiredAt: &fired, FiredOnDate: &day}); err != nil {
		t.Fatalf("Upsert(fired): %v", err)
	}

	snooze := fired.Add(10 * time.Minute)
	if err := repo.Upsert(dbc, RuleStateUpdate{UserID: u.ID, RuleID: "breakfast_9am", SnoozedUntil: &snooze}); err != nil {
		t.Fatalf("Upsert(snooze): %v", err)
	}

	got, err := repo.Get(dbc, u.ID, "breakfast_9am")
	if err != nil || got == nil {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}
	if got.LastFiredAt == nil || !got.LastFiredAt.Equal(fired) {
		t.Fatalf("snooze upsert clobbered last_fired_at: %+v", got)
	}
	if got.SnoozedUntil == nil || !got.SnoozedUntil.Equal(snooze) {
		t.Fatalf("snoozed_until not stored: %+v", got)
	}
	if got.FiredOnDate == nil {
		t.Fatalf("fired_on_date lost")
	}
	if y, m, d := time.Time(*got.FiredOnDate).Date(); y != 2025 || m != time.March || d != 10 {
		t.Fatalf("fired_on_date=%v", time.Time(*got.FiredOnDate))
	}

	if err := repo.Upsert(dbc, RuleStateUpdate{UserID: u.ID, RuleID: "hydration_10m", LastFiredAt: &fired}); err != nil {
		t.Fatalf("Upsert(second rule): %v", err)
	}
	rows, err := repo.ListByUser(dbc, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(rows) != 2 || rows[0].RuleID != "breakfast_9am" || rows[1].RuleID != "hydration_10m" {
		t.Fatalf("ListByUser: unexpected rows %+v", rows)
	}
}

func TestNudgeRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewNudgeRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "nudges@example.com")
	other := testutil.SeedUser(t, ctx, tx, "nudges-other@example.com")

	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	created, err := repo.Create(dbc, []*types.Nudge{
		{UserID: u.ID, RuleID: "hydration_10m", Source: types.NudgeSourceRule, Category: "nutrition", Title: "Sip water", CreatedAt: base},
		{UserID: u.ID, Source: types.NudgeSourceAI, Category: "physical", Title: "Stretch", CreatedAt: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected %+v", created)
	}

	list, err := repo.List(dbc, u.ID, NudgeFilter{})
	if err != nil || len(list) != 2 || list[0].Title != "Stretch" {
		t.Fatalf("List: err=%v rows=%+v", err, list)
	}
	list, err = repo.List(dbc, u.ID, NudgeFilter{Category: "nutrition"})
	if err != nil || len(list) != 1 {
		t.Fatalf("List(category): err=%v len=%d", err, len(list))
	}
	since := base.Add(30 * time.Minute)
	list, err = repo.List(dbc, u.ID, NudgeFilter{Since: &since})
	if err != nil || len(list) != 1 {
		t.Fatalf("List(since): err=%v len=%d", err, len(list))
	}

	accepted := true
	if ok, err := repo.SetResponse(dbc, other.ID, created[0].ID, &accepted, base); err != nil || ok {
		t.Fatalf("SetResponse(other user): ok=%v err=%v", ok, err)
	}
	if ok, err := repo.SetResponse(dbc, u.ID, created[0].ID, &accepted, base); err != nil || !ok {
		t.Fatalf("SetResponse: ok=%v err=%v", ok, err)
	}
	got, err := repo.GetByID(dbc, u.ID, created[0].ID)
	if err != nil || got == nil || got.Accepted == nil || !*got.Accepted || got.RespondedAt == nil {
		t.Fatalf("GetByID after response: got=%+v err=%v", got, err)
	}
}
