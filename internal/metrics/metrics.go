// Package metrics records resolution statistics in a private Prometheus
// registry and dumps them in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/prometheus/client_golang/prometheus"

	"portsmith/internal/ports"
	"portsmith/internal/types"
)

type Recorder struct {
	Path string

	registry *prometheus.Registry
	plans    *prometheus.CounterVec
	actions  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.GaugeVec
}

// NewRecorder returns a recorder that writes to path on Flush. An empty
// path keeps the metrics in memory only.
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		Path:     path,
		registry: prometheus.NewRegistry(),
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portsmith_plans_total",
				Help: "Number of plans computed by command.",
			},
			[]string{"command"},
		),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portsmith_plan_actions_total",
				Help: "Number of planned actions by command and classification.",
			},
			[]string{"command", "classification"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portsmith_failures_total",
				Help: "Number of failed commands by error kind.",
			},
			[]string{"command", "kind"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portsmith_resolution_duration_seconds",
				Help:    "Time taken to compute a plan.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		size: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "portsmith_plan_size",
				Help: "Number of actions in the last plan by command.",
			},
			[]string{"command"},
		),
	}
	r.registry.MustRegister(r.plans, r.actions, r.failures, r.duration, r.size)
	return r
}

func (r *Recorder) ObservePlan(command string, plan types.OrderedPlan, elapsed time.Duration) {
	r.plans.WithLabelValues(command).Inc()
	for classification, count := range plan.Summary() {
		r.actions.WithLabelValues(command, string(classification)).Add(float64(count))
	}
	r.size.WithLabelValues(command).Set(float64(len(plan.Actions)))
	r.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveFailure(command string, kind string) {
	r.failures.WithLabelValues(command, kind).Inc()
}

func (r *Recorder) Flush() error {
	if r.Path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.Path, r.registry); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write metrics textfile").
			WithCause(err)
	}
	return nil
}

// Registry exposes the underlying registry for tests and embedding.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

var _ ports.MetricsPort = (*Recorder)(nil)
