package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lvp_jobs_processed_total",
		Help: "Total number of jobs processed, by status",
	}, []string{"status"})

	JobProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lvp_job_processing_duration_seconds",
		Help:    "Duration of package pipeline stages",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	KeyframesSelectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lvp_keyframes_selected_total",
		Help: "Total number of keyframes selected across all jobs",
	})

	ScenesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lvp_scenes_detected_total",
		Help: "Total number of scenes detected across all jobs",
	})

	BudgetShortfallTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lvp_budget_shortfall_total",
		Help: "Jobs whose final keyframe count fell short of the nominal budget",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lvp_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lvp_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
