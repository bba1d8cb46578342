package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveNudgeEvaluation("api", "ok", time.Millisecond, []string{"hydration_10m"}, nil)
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
}

func TestNudgeEvaluationCounters(t *testing.T) {
	m := newMetrics()
	m.ObserveNudgeEvaluation("scheduler", "ok", 20*time.Millisecond,
		[]string{"hydration_10m", "breakfast_9am"},
		[]string{"lunch_13pm: cooldown", "dinner_19pm: cooldown", "quiet_hours"})

	if got := m.nudgesFired.Value("hydration_10m"); got != 1 {
		t.Fatalf("fired hydration=%v", got)
	}
	if got := m.nudgesSuppressed.Value("cooldown"); got != 2 {
		t.Fatalf("suppressed cooldown=%v", got)
	}
	if got := m.nudgesSuppressed.Value("quiet_hours"); got != 1 {
		t.Fatalf("suppressed quiet_hours=%v", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`hw_nudges_fired_total{rule_id="breakfast_9am"} 1.000000`,
		`hw_nudge_evaluation_duration_seconds_bucket{trigger="scheduler",le="0.05"} 1`,
		`hw_nudge_evaluation_duration_seconds_count{trigger="scheduler"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"route"}, []string{`a"b\c`})
	if got != `{route="a\"b\\c"}` {
		t.Fatalf("got %s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatalf("withLe empty")
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" a=1, bad ,b = 2,=x")
	if len(got) != 2 || got["a"] != "1" || got["b"] != "2" {
		t.Fatalf("got %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("expected nil for empty")
	}
}
