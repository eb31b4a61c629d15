package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// IterationsStarted counts every Attach call, i.e. every exploration
	// iteration the scheduler has begun.
	IterationsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_iterations_total",
			Help: "Total number of exploration iterations started",
		},
	)

	// IterationsByOutcome counts completed iterations, partitioned by how
	// they ended.
	IterationsByOutcome = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loom_iterations_by_outcome_total",
			Help: "Total number of iterations completed, by terminal outcome",
		},
		[]string{"outcome"},
	)

	// DeadlocksDetected counts iterations that ended because no enabled
	// operation remained while some operation was still waiting.
	DeadlocksDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_deadlocks_total",
			Help: "Total number of deadlocks detected across all iterations",
		},
	)

	// PrioritySwitchesTotal counts priority-change injections performed by
	// the PCT strategy, summed across iterations.
	PrioritySwitchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "loom_priority_switches_total",
			Help: "Total number of PCT priority changes injected",
		},
	)

	// SchedulingLatency measures the wall-clock cost of a single
	// scheduling-point round trip: electing the next operation, waking it,
	// and parking the caller.
	SchedulingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loom_scheduling_latency_seconds",
			Help:    "Time taken to resolve a single scheduling point, in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// OperationsRegistered tracks live operation counts by status, updated
	// by whatever is reporting iteration snapshots (e.g. the CLI driver).
	OperationsRegistered = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loom_operations",
			Help: "Number of registered operations by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(IterationsStarted)
	prometheus.MustRegister(IterationsByOutcome)
	prometheus.MustRegister(DeadlocksDetected)
	prometheus.MustRegister(PrioritySwitchesTotal)
	prometheus.MustRegister(SchedulingLatency)
	prometheus.MustRegister(OperationsRegistered)
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing an operation and recording its duration to
// a histogram once it completes.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed time to a labelled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
