package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ApplicationsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_applications_submitted_total",
			Help: "Total number of applications promoted to the pending queue",
		},
	)

	ApplicationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_applications_processed_total",
			Help: "Total number of review transitions by outcome",
		},
		[]string{"outcome"},
	)

	IntakeDraftsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_drafts_started_total",
			Help: "Total number of intake flows begun",
		},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_notification_failures_total",
			Help: "Total number of swallowed notification send failures",
		},
		[]string{"channel"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)
