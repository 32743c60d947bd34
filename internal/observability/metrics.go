package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dayeon-dev/aria/internal/chat"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveConnections prometheus.Gauge
	SessionEvents     *prometheus.CounterVec
	WSMessages        *prometheus.CounterVec
	PipelineRuns      *prometheus.CounterVec
	PipelineCost      prometheus.Counter
	PipelineTokens    prometheus.Counter
	StageDuration     *prometheus.HistogramVec

	stageWindow *stageWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of live websocket connections.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		PipelineRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_pipeline_runs_total",
			Help:      "Completed chat pipeline runs by final state.",
		}, []string{"state"}),
		PipelineCost: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_pipeline_cost_total",
			Help:      "Accumulated generation and synthesis cost units.",
		}),
		PipelineTokens: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_pipeline_tokens_total",
			Help:      "Accumulated model tokens across runs.",
		}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_stage_duration_ms",
			Help:      "Chat pipeline stage duration in milliseconds.",
			Buckets:   []float64{5, 20, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"stage"}),
		stageWindow: newStageWindow(256),
	}
}

// StageCompleted implements chat.StageObserver.
func (m *Metrics) StageCompleted(state chat.State, elapsed time.Duration) {
	ms := float64(elapsed.Microseconds()) / 1000
	m.StageDuration.WithLabelValues(string(state)).Observe(ms)
	m.stageWindow.Observe(string(state), ms)
}

// RunCompleted implements chat.StageObserver.
func (m *Metrics) RunCompleted(final chat.State, cost float64, tokens int) {
	m.PipelineRuns.WithLabelValues(string(final)).Inc()
	if cost > 0 {
		m.PipelineCost.Add(cost)
	}
	if tokens > 0 {
		m.PipelineTokens.Add(float64(tokens))
	}
}

// StageSnapshot summarizes recent stage latencies for the perf endpoint.
func (m *Metrics) StageSnapshot() StageWindowSnapshot {
	return m.stageWindow.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
