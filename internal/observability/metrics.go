package observability

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/envutil"
	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

// Metrics is the process-wide collector set served on /metrics. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	nudgeEvaluations *CounterVec
	nudgeEvalLatency *HistogramVec
	nudgesFired      *CounterVec
	nudgesSuppressed *CounterVec
	nudgeResponses   *CounterVec

	sweepUsers   *CounterVec
	sweepLatency *HistogramVec

	llmRequests *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool { return envutil.Bool("METRICS_ENABLED", false) }

func Current() *Metrics { return instance }

// Init builds the collectors once. It returns nil when METRICS_ENABLED is
// off.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("hw_api_requests_total", "HTTP requests.", []string{"method", "route", "status"}),
		apiLatency:  NewHistogramVec("hw_api_request_duration_seconds", "HTTP request latency.", []string{"method", "route"}, nil),
		apiInflight: NewGauge("hw_api_inflight_requests", "In-flight HTTP requests."),

		nudgeEvaluations: NewCounterVec("hw_nudge_evaluations_total", "Nudge evaluation passes.", []string{"trigger", "status"}),
		nudgeEvalLatency: NewHistogramVec("hw_nudge_evaluation_duration_seconds", "Nudge evaluation latency including storage.", []string{"trigger"}, nil),
		nudgesFired:      NewCounterVec("hw_nudges_fired_total", "Rules fired.", []string{"rule_id"}),
		nudgesSuppressed: NewCounterVec("hw_nudges_suppressed_total", "Rule suppressions by reason.", []string{"reason"}),
		nudgeResponses:   NewCounterVec("hw_nudge_responses_total", "User responses to nudges.", []string{"source", "action"}),

		sweepUsers:   NewCounterVec("hw_scheduler_users_total", "Users processed by the scheduler sweep.", []string{"status"}),
		sweepLatency: NewHistogramVec("hw_scheduler_sweep_duration_seconds", "Scheduler sweep latency.", nil, []float64{0.1, 0.5, 1, 5, 15, 30, 60}),

		llmRequests: NewCounterVec("hw_llm_requests_total", "Language model calls.", []string{"kind", "status"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.nudgeEvaluations, m.nudgeEvalLatency, m.nudgesFired, m.nudgesSuppressed, m.nudgeResponses,
		m.sweepUsers, m.sweepLatency,
		m.llmRequests,
	}
	for _, c := range writers {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveNudgeEvaluation records one pass. suppressed holds trace entries of
// the form "rule_id: reason" or a bare pass-level reason.
func (m *Metrics) ObserveNudgeEvaluation(trigger, status string, dur time.Duration, fired []string, suppressed []string) {
	if m == nil {
		return
	}
	m.nudgeEvaluations.Inc(trigger, status)
	m.nudgeEvalLatency.Observe(dur.Seconds(), trigger)
	for _, id := range fired {
		m.nudgesFired.Inc(id)
	}
	for _, s := range suppressed {
		m.nudgesSuppressed.Inc(suppressionReason(s))
	}
}

func suppressionReason(entry string) string {
	for i := len(entry) - 1; i >= 0; i-- {
		if entry[i] == ' ' || entry[i] == ':' {
			return entry[i+1:]
		}
	}
	return entry
}

func (m *Metrics) IncNudgeResponse(source, action string) {
	if m != nil {
		m.nudgeResponses.Inc(source, action)
	}
}

func (m *Metrics) ObserveSweep(dur time.Duration, ok, failed int) {
	if m == nil {
		return
	}
	m.sweepLatency.Observe(dur.Seconds())
	m.sweepUsers.Add(float64(ok), "ok")
	m.sweepUsers.Add(float64(failed), "failed")
}

func (m *Metrics) IncLLMRequest(kind, status string) {
	if m != nil {
		m.llmRequests.Inc(kind, status)
	}
}
