package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dance_analysis_jobs_processed_total",
		Help: "Total number of analysis jobs finished, by terminal status",
	}, []string{"status"})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dance_analysis_job_duration_seconds",
		Help:    "Duration of the analysis pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dance_analysis_frames_processed_total",
		Help: "Total number of frames decoded and written across all jobs",
	})

	FramesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dance_analysis_frames_detected_total",
		Help: "Total number of frames with a detected pose across all jobs",
	})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dance_analysis_active_jobs",
		Help: "Number of jobs currently being processed",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dance_analysis_queue_depth",
		Help: "Number of jobs waiting in the processing queue",
	})
)
