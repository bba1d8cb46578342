package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	types "github.com/yungbote/healthwhisperer-backend/internal/domain"
	"github.com/yungbote/healthwhisperer-backend/internal/rules"
)

func TestComputeTodayMetrics(t *testing.T) {
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	events := []rules.Event{
		rules.DecodeEvent(rules.EventNutrition, []byte(`{"water_ml":250}`), ts),
		rules.DecodeEvent(rules.EventNutrition, []byte(`{"water_ml":"300","meal_time":"lunch"}`), ts),
		rules.DecodeEvent(rules.EventPhysical, []byte(`{"walk_min":15}`), ts),
		rules.DecodeEvent(rules.EventMental, []byte(`{"mood_score":4,"breath":true}`), ts),
		rules.DecodeEvent(rules.EventMental, []byte(`{"mood_score":3}`), ts),
	}
	yes, no := true, false
	nudges := []*types.Nudge{{Accepted: &yes}, {Accepted: &no}, {}}

	m := ComputeTodayMetrics(civil.DateOf(ts), events, nudges)
	if m.HydrationML != 550 || m.WalkingMinutes != 15 || m.MentalPositives != 1 {
		t.Fatalf("metrics=%+v", m)
	}
	if m.LogCounts["nutrition"] != 2 || m.LogCounts["mental"] != 2 || m.LogCounts["physical"] != 1 {
		t.Fatalf("counts=%v", m.LogCounts)
	}
	if m.Nudges != (NudgeStats{Accepted: 1, Total: 3, AcceptRate: 33.3}) {
		t.Fatalf("nudges=%+v", m.Nudges)
	}

	empty := ComputeTodayMetrics(civil.DateOf(ts), nil, nil)
	if empty.Nudges.AcceptRate != 0 || empty.LogCounts["mental"] != 0 {
		t.Fatalf("empty=%+v", empty)
	}
}

func TestSummaryTodayFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx, u := env.seedUser(t, utcPrefs)
	now := time.Now().UTC()
	env.seedLog(t, u.ID, types.LogTypeNutrition, map[string]any{"water_ml": 400}, now)
	env.seedLog(t, u.ID, types.LogTypeNutrition, map[string]any{"water_ml": 900}, now.Add(-48*time.Hour))

	svc := NewSummaryService(env.log, env.users, env.prof, env.logs, env.nudges, NewCopywriter(env.log, nil))
	sum, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if sum.Metrics.HydrationML != 400 {
		t.Fatalf("hydration=%d", sum.Metrics.HydrationML)
	}
	if len(sum.Summary) != 3 || sum.Summary[0] != "Hydration: 400 ml" {
		t.Fatalf("fallback summary=%v", sum.Summary)
	}

	line, err := svc.Headline(ctx)
	if err != nil || !strings.Contains(line, "Dana!") {
		t.Fatalf("headline=%q err=%v", line, err)
	}
}

type memArchive struct {
	objects map[string][]byte
}

func (m *memArchive) Put(ctx context.Context, key string, body io.Reader) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memArchive) List(ctx context.Context, prefix string) ([]string, error) {
	out := []string{}
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memArchive) URL(key string) string { return "mem://" + key }
func (m *memArchive) Close() error          { return nil }

func TestExportTodayAndBundle(t *testing.T) {
	env := newTestEnv(t)
	ctx, u := env.seedUser(t, utcPrefs)
	now := time.Now().UTC()
	env.seedLog(t, u.ID, types.LogTypePhysical, map[string]any{"minutes": 12}, now)

	archive := &memArchive{objects: map[string][]byte{}}
	svc := NewExportService(env.log, env.users, env.prof, env.logs, env.nudges, env.states, archive)

	out, err := svc.Today(ctx, ExportLogs, ExportCSV)
	if err != nil {
		t.Fatalf("Today csv: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(out.Body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != "id" || records[1][1] != "physical" {
		t.Fatalf("records=%v", records)
	}
	if !strings.HasPrefix(out.ArchiveURL, "mem://exports/"+u.ID.String()+"/") || !strings.HasSuffix(out.ArchiveURL, "/logs.csv") {
		t.Fatalf("archive url=%q", out.ArchiveURL)
	}

	out, err = svc.Today(ctx, ExportNudges, ExportJSON)
	if err != nil {
		t.Fatalf("Today json: %v", err)
	}
	if strings.TrimSpace(string(out.Body)) != "[]" || out.ContentType != "application/json" {
		t.Fatalf("nudges json=%s", out.Body)
	}

	if _, err := svc.Today(ctx, "profile", ExportCSV); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("bad kind: err=%v", err)
	}
	if _, err := svc.Today(ctx, ExportLogs, "xml"); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("bad format: err=%v", err)
	}

	b, err := svc.Bundle(ctx)
	if err != nil {
		t.Fatalf("Bundle: %v", err)
	}
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	for _, key := range []string{`"user"`, `"profile"`, `"logs"`, `"nudges"`, `"rules_state":[]`} {
		if !bytes.Contains(raw, []byte(key)) {
			t.Fatalf("bundle missing %s: %s", key, raw)
		}
	}
	if bytes.Contains(raw, []byte(`"password"`)) {
		t.Fatalf("bundle leaks password hash")
	}
}
