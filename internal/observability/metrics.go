// Package observability registers the Prometheus collectors exported at /metrics.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stride"

var (
	// habitLogWrites counts log upserts. Labels: completed (true, false), source (requested, demoted)
	habitLogWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "habits",
		Name:      "log_writes_total",
		Help:      "Habit log upserts by completion state and source",
	}, []string{"completed", "source"})

	// snapshots counts weekly snapshot attempts. Labels: path (scheduled, manual), outcome (written, skipped, failed)
	snapshots = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "snapshots",
		Name:      "total",
		Help:      "Weekly snapshot attempts by path and outcome",
	}, []string{"path", "outcome"})

	achievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "achievements",
		Name:      "unlocked_total",
		Help:      "Achievements unlocked by category",
	}, []string{"category"})

	achievementsRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "achievements",
		Name:      "revoked_total",
		Help:      "Streak achievements revoked after a broken streak",
	})

	// fanoutFailures counts best-effort side effects that failed. Labels: kind (achievement, activity, notification)
	fanoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fanout",
		Name:      "failures_total",
		Help:      "Best-effort fan-out failures by kind",
	}, []string{"kind"})

	// jobRuns counts scheduler executions. Labels: job, status (success, error)
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "runs_total",
		Help:      "Scheduler job runs by job and status",
	}, []string{"job", "status"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scheduler",
		Name:      "duration_seconds",
		Help:      "Scheduler job duration in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"job"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

func RecordHabitLogWrite(completed, demoted bool) {
	source := "requested"
	if demoted {
		source = "demoted"
	}
	habitLogWrites.WithLabelValues(strconv.FormatBool(completed), source).Inc()
}

// RecordSnapshot records one snapshot attempt.
func RecordSnapshot(path, outcome string) {
	snapshots.WithLabelValues(path, outcome).Inc()
}

func RecordUnlocked(category string, n int) {
	if n > 0 {
		achievementsUnlocked.WithLabelValues(category).Add(float64(n))
	}
}

func RecordRevoked(n int) {
	if n > 0 {
		achievementsRevoked.Add(float64(n))
	}
}

func RecordFanoutFailure(kind string) {
	fanoutFailures.WithLabelValues(kind).Inc()
}

// RecordJob records a scheduler run and its duration.
func RecordJob(job string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	jobRuns.WithLabelValues(job, status).Inc()
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func RecordHTTPRequest(route, method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route, method).Observe(d.Seconds())
}
