package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camwatch",
		Name:      "frames_ingested_total",
		Help:      "Total number of frames enqueued by the ingestion stage",
	}, []string{"camera"})

	FramesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camwatch",
		Name:      "frames_processed_total",
		Help:      "Total number of frames run through the classifier by the detection stage",
	}, []string{"camera"})

	MotionGateOutcome = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camwatch",
		Name:      "motion_gate_outcome_total",
		Help:      "Per-camera count of motion-gate outcomes",
	}, []string{"camera", "outcome"}) // outcome: declared, suppressed

	EventsPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camwatch",
		Name:      "events_persisted_total",
		Help:      "Total number of person/vehicle events persisted",
	}, []string{"event_type"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camwatch",
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered successfully",
	}, []string{"event_type"})

	NotificationsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camwatch",
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped (debounced, queue-full, or delivery failure)",
	}, []string{"reason"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "camwatch",
		Name:      "stage_duration_seconds",
		Help:      "Duration of one unit of work in a pipeline stage",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"stage"})

	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camwatch",
		Name:      "queue_depth",
		Help:      "Current number of buffered items per queue",
	}, []string{"queue"})

	WorkersAlive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "camwatch",
		Name:      "worker_alive",
		Help:      "1 if the named worker is currently running, 0 if the supervisor is restarting it",
	}, []string{"worker"})
)
