/*
Package metrics exposes Loom's Prometheus instrumentation: how many
iterations ran, how they ended, and how expensive each scheduling point
was.

# Catalog

loom_iterations_total:
  - Counter. Incremented once per Scheduler.Attach call.

loom_iterations_by_outcome_total{outcome}:
  - Counter. outcome is one of success, deadlock, or a misuse error name.

loom_deadlocks_total:
  - Counter. Incremented every time the scheduler latches Failure because
    no operation remained enabled while some were still waiting.

loom_priority_switches_total:
  - Counter. Incremented once per priority change the PCT strategy injects.

loom_scheduling_latency_seconds:
  - Histogram. One observation per call into the scheduler's internal
    scheduleCore, using the Timer helper below.

loom_operations{status}:
  - Gauge. Live operation counts by status (none/enabled/waiting/completed),
    updated by callers that want a periodic snapshot rather than per-event
    instrumentation.

# Usage

	timer := metrics.NewTimer()
	// ... do work ...
	timer.ObserveDuration(metrics.SchedulingLatency)

All metrics are registered at package init and served by Handler(), which
callers mount at /metrics.
*/
package metrics
