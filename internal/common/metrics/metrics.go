// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	TemplateRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_recommendations_total",
			Help: "Templates returned to callers, by operation and confidence",
		},
		[]string{"operation", "confidence"},
	)

	TemplatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_skipped_total",
			Help: "Malformed catalog templates skipped during ranking",
		},
		[]string{"operation"},
	)

	TemplateMatchScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "template_match_score",
			Help:    "Relevance score of the top-ranked template",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
		[]string{"operation"},
	)

	CatalogSnapshotSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "template_catalog_snapshot_size",
			Help: "Number of templates in the last catalog snapshot",
		},
	)

	CatalogCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_catalog_cache_lookups_total",
			Help: "Catalog cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RecommendationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_events_total",
			Help: "Recorded recommendation events by type",
		},
		[]string{"event_type"},
	)

	ComplianceEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_evaluations_total",
			Help: "Compliance evaluations by overall grade",
		},
		[]string{"grade"},
	)

	ComplianceStandardScore = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compliance_standard_score",
			Help:    "Per-standard compliance score (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"standard"},
	)

	ComplianceRuleReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_rule_reloads_total",
			Help: "Rule book reload attempts by result",
		},
		[]string{"result"},
	)
)

// JobTimer tracks one job from activation to completion.
type JobTimer struct {
	taskType string
	start    time.Time
}

// StartJob marks a job active for taskType.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

// Succeeded records a completed job.
func (t *JobTimer) Succeeded() {
	t.finish()
	WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
}

// Failed records a failed job under errorCode.
func (t *JobTimer) Failed(errorCode string) {
	t.finish()
	WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
}

func (t *JobTimer) finish() {
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
}
