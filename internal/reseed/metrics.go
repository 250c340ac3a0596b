package reseed

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder observes run progress.
type Recorder interface {
	ObserveStage(stage Stage, d time.Duration)
	ObserveRow(op Op, target string, ok bool)
	ObserveRun(ok bool, d time.Duration)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) ObserveStage(Stage, time.Duration) {}
func (NopRecorder) ObserveRow(Op, string, bool) {}
func (NopRecorder) ObserveRun(bool, time.Duration) {}

// PromRecorder exports observations as Prometheus metrics.
type PromRecorder struct {
	stages  *prometheus.HistogramVec
	rows    *prometheus.CounterVec
	runs    *prometheus.CounterVec
	lastRun prometheus.Gauge
}

// NewPromRecorder registers the reseed metrics with reg.
func NewPromRecorder(reg prometheus.Registerer) *PromRecorder {
	f := promauto.With(reg)
	return &PromRecorder{
		stages: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "menuseed",
			Subsystem: "reseed",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each reseed stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		rows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menuseed",
			Subsystem: "reseed",
			Name:      "rows_total",
			Help:      "Row and file operations performed by reseed runs.",
		}, []string{"op", "target", "outcome"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menuseed",
			Subsystem: "reseed",
			Name:      "runs_total",
			Help:      "Completed reseed runs.",
		}, []string{"outcome"}),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "menuseed",
			Subsystem: "reseed",
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the most recent reseed run.",
		}),
	}
}

func (p *PromRecorder) ObserveStage(stage Stage, d time.Duration) {
	p.stages.WithLabelValues(string(stage)).Observe(d.Seconds())
}

func (p *PromRecorder) ObserveRow(op Op, target string, ok bool) {
	p.rows.WithLabelValues(string(op), target, outcome(ok)).Inc()
}

func (p *PromRecorder) ObserveRun(ok bool, d time.Duration) {
	p.runs.WithLabelValues(outcome(ok)).Inc()
	p.lastRun.Set(d.Seconds())
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

