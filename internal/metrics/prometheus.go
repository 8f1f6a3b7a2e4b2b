package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder reports render metrics using Prometheus primitives.
type PrometheusRecorder struct {
	stageRuns     *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	steps         prometheus.Counter
	warnings      *prometheus.CounterVec
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trace_report_stage_runs_total",
			Help: "Total number of pipeline stage runs by status",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trace_report_stage_duration_seconds",
			Help:    "Pipeline stage latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trace_report_steps_rendered_total",
			Help: "Total number of trace steps rendered into reports",
		}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trace_report_field_warnings_total",
			Help: "Total field normalization warnings (missing or invalid) by field",
		}, []string{"field"}),
	}

	for _, collector := range []prometheus.Collector{r.stageRuns, r.stageDuration, r.steps, r.warnings} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveStage(stage string, status string, duration time.Duration) {
	r.stageRuns.WithLabelValues(stage, status).Inc()
	r.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveSteps(n int) {
	r.steps.Add(float64(n))
}

func (r *PrometheusRecorder) ObserveWarning(field string) {
	r.warnings.WithLabelValues(field).Inc()
}

// WriteTextfile dumps the registry in text exposition format for the node
// exporter textfile collector. A one-shot render exits before any scrape.
func WriteTextfile(path string, registry *prometheus.Registry) error {
	if registry == nil {
		return fmt.Errorf("prometheus registry is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics mkdir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("metrics write textfile %q: %w", path, err)
	}
	return nil
}
