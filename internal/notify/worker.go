package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brightloop/camwatch/internal/eventstore"
	"github.com/brightloop/camwatch/internal/mediastore"
	"github.com/brightloop/camwatch/internal/models"
	"github.com/brightloop/camwatch/internal/observability"
	"github.com/brightloop/camwatch/internal/queue"
)

// Worker is the single NotificationWorker of spec §4.6. It owns per-camera
// debounce state and is the only place delivery is attempted; an at-rest
// Notification row is written for every delivery attempt, whether it
// succeeds or fails. Jobs drained in disabled mode or skipped by the
// debounce leave no row.
type Worker struct {
	notifQ  *queue.Queue[any]
	stopped func() bool

	notifier Notifier // nil when notifications are disabled
	debounce time.Duration
	lastSent map[string]time.Time
	store    *eventstore.Store
	media    *mediastore.Store
}

func NewWorker(notifQ *queue.Queue[any], notifier Notifier, debounceSeconds float64, store *eventstore.Store, media *mediastore.Store, stopped func() bool) *Worker {
	return &Worker{
		notifQ:   notifQ,
		stopped:  stopped,
		notifier: notifier,
		debounce: time.Duration(debounceSeconds * float64(time.Second)),
		lastSent: make(map[string]time.Time),
		store:    store,
		media:    media,
	}
}

// Run consumes notifQ until a PoisonPill arrives and returns. No output
// queue exists downstream; this is the terminal stage.
func (w *Worker) Run(ctx context.Context) {
	for {
		item, err := w.notifQ.Get(ctx)
		if err != nil {
			return
		}

		if _, isPill := item.(*models.PoisonPill); isPill {
			slog.Info("notification worker stopped")
			return
		}

		job, ok := item.(*models.NotificationJob)
		if !ok {
			continue
		}
		w.deliver(ctx, job)
	}
}

func (w *Worker) deliver(ctx context.Context, job *models.NotificationJob) {
	if w.notifier == nil {
		// Disabled mode (spec §4.6 step 1): drain without delivering.
		return
	}

	if w.shouldSkip(job.Camera) {
		observability.NotificationsDropped.WithLabelValues("debounced").Inc()
		return
	}

	message := renderMessage(job)

	var photo []byte
	if job.CropPath != "" && w.media.Exists(job.CropPath) {
		if data, err := w.media.Load(job.CropPath); err == nil {
			photo = data
		}
	}

	status := models.NotificationPending
	var deliverErr *string
	var sentAt *time.Time

	if err := w.notifier.Send(ctx, message, photo); err != nil {
		slog.Error("notify: delivery failed", "camera", job.Camera, "error", err)
		status = models.NotificationFailed
		errStr := err.Error()
		deliverErr = &errStr
		observability.NotificationsDropped.WithLabelValues("delivery_failed").Inc()
	} else {
		now := time.Now().UTC()
		sentAt = &now
		status = models.NotificationSent
		w.lastSent[job.Camera] = now
		observability.NotificationsSent.WithLabelValues(string(job.EventType)).Inc()
	}

	eventID := job.EventID
	record := &models.Notification{
		EventType: job.EventType,
		EventID:   &eventID,
		Status:    status,
		Payload: map[string]any{
			"message":     message,
			"camera":      job.Camera,
			"occurred_at": job.OccurredAt,
			"crop_path":   job.CropPath,
		},
		SentAt: sentAt,
		Error:  deliverErr,
	}
	if err := w.store.CreateNotification(ctx, record); err != nil {
		slog.Error("notify: failed to persist notification record", "error", err)
	}
}

// shouldSkip applies the strict-less-than debounce rule of spec §4.6 step
// 3: a gap exactly equal to the debounce window still delivers.
func (w *Worker) shouldSkip(camera string) bool {
	last, ok := w.lastSent[camera]
	if !ok {
		return false
	}
	return time.Since(last) < w.debounce
}

func renderMessage(job *models.NotificationJob) string {
	title := "Event detected"
	switch job.EventType {
	case models.EventTypePerson:
		title = "Person detected"
	case models.EventTypeVehicle:
		title = "Vehicle detected"
	}
	return fmt.Sprintf("%s\nCamera: %s\nWhen: %s", title, job.Camera, job.OccurredAt.Format(time.RFC3339))
}
