package services

import (
	"net/http"
	"testing"
)

func TestUpdatePreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx, _ := env.seedUser(t, map[string]any{"primary_focus": "sleep"})
	svc := NewUserService(env.log, env.users)

	prefs, err := svc.GetPreferences(ctx)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if prefs.PrimaryFocus != "sleep" || prefs.QuietHours.Start != "22:00" || !prefs.AutoNudges {
		t.Fatalf("defaults not merged: %+v", prefs)
	}

	prefs, err = svc.UpdatePreferences(ctx, map[string]any{
		"quiet_hours":        map[string]any{"end": "06:30"},
		"cooldown_hydration": 45,
		"auto_nudges":        false,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if prefs.QuietHours.Start != "22:00" || prefs.QuietHours.End != "06:30" {
		t.Fatalf("quiet hours=%+v", prefs.QuietHours)
	}
	if prefs.CooldownHydration == nil || *prefs.CooldownHydration != 45 || prefs.AutoNudges {
		t.Fatalf("prefs=%+v", prefs)
	}
	if prefs.PrimaryFocus != "sleep" {
		t.Fatalf("untouched key lost: %+v", prefs)
	}

	for name, patch := range map[string]map[string]any{
		"bad time":     {"quiet_hours": map[string]any{"start": "25:00"}},
		"bad timezone": {"timezone": "Mars/Olympus"},
		"negative":     {"cooldown_meals": -5},
		"wrong type":   {"auto_nudges": "yes"},
	} {
		if _, err := svc.UpdatePreferences(ctx, patch); statusOf(err) != http.StatusBadRequest {
			t.Fatalf("%s: err=%v", name, err)
		}
	}
}

func TestUpdateName(t *testing.T) {
	env := newTestEnv(t)
	ctx, _ := env.seedUser(t, nil)
	svc := NewUserService(env.log, env.users)
	u, err := svc.UpdateName(ctx, "  Robin  ")
	if err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	if u.Name != "Robin" {
		t.Fatalf("name=%q", u.Name)
	}
}
