// Package eventwriter implements spec §4.5: the Person and Vehicle event
// writers. Both consume a bundle queue, persist a frame asset plus one
// event row and crop asset per detection inside a single transaction, and
// on commit enqueue a NotificationJob per detection. Grounded on the
// teacher's transactional write pattern (internal/storage/postgres.go,
// now folded into internal/eventstore) and the Python predecessor's
// pipeline/event_writer.py.
package eventwriter

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brightloop/camwatch/internal/eventstore"
	"github.com/brightloop/camwatch/internal/mediastore"
	"github.com/brightloop/camwatch/internal/models"
	"github.com/brightloop/camwatch/internal/observability"
	"github.com/brightloop/camwatch/internal/queue"
)

// Kind distinguishes the two writers, which are structurally identical
// aside from which table and frame-path tag they use.
type Kind string

const (
	KindPerson  Kind = "person"
	KindVehicle Kind = "vehicle"
)

type Writer struct {
	kind Kind

	bundleQ *queue.Queue[any]
	notifQ  *queue.Queue[any]
	stopped func() bool

	store *eventstore.Store
	media *mediastore.Store
}

func New(kind Kind, bundleQ, notifQ *queue.Queue[any], store *eventstore.Store, media *mediastore.Store, stopped func() bool) *Writer {
	return &Writer{kind: kind, bundleQ: bundleQ, notifQ: notifQ, store: store, media: media, stopped: stopped}
}

// Run consumes bundleQ until a PoisonPill arrives, forwards one pill to
// notifQ, and returns.
func (w *Writer) Run(ctx context.Context) {
	for {
		item, err := w.bundleQ.Get(ctx)
		if err != nil {
			return
		}

		if _, isPill := item.(*models.PoisonPill); isPill {
			_ = w.notifQ.TryPut(any(&models.PoisonPill{Reason: "shutdown"}))
			slog.Info("event writer stopped", "kind", w.kind)
			return
		}

		bundle, ok := item.(*models.DetectionBundle)
		if !ok {
			continue
		}
		w.writeBundle(ctx, bundle)
	}
}

// writeBundle persists the frame asset and every surviving detection for
// one bundle inside a single transaction (spec §4.5 step 2), then — only
// after a successful commit — enqueues one NotificationJob per detection
// (step 4). A failed transaction drops the whole bundle: none of its
// asset, event or job rows are committed, though frame and crop files
// already saved to the media store stay on disk.
func (w *Writer) writeBundle(ctx context.Context, bundle *models.DetectionBundle) {
	var jobs []*models.NotificationJob

	err := w.store.WithTx(ctx, func(tx pgx.Tx) error {
		framePath := w.media.FramePath(bundle.FrameID, "_"+string(w.kind))
		if err := w.media.Save(framePath, bundle.FrameBytes); err != nil {
			return fmt.Errorf("save frame: %w", err)
		}
		frameAsset, err := w.store.GetOrCreateMediaAsset(ctx, tx, models.MediaTypeFrame, framePath, map[string]any{"camera": bundle.Camera})
		if err != nil {
			return fmt.Errorf("frame asset: %w", err)
		}

		for _, item := range bundle.Items {
			cropKind := "person_crop"
			mediaType := models.MediaTypePersonCrop
			if w.kind == KindVehicle {
				cropKind = "vehicle_crop"
				mediaType = models.MediaTypeVehicleCrop
			}
			cropPath := w.media.CropPath(cropKind, bundle.FrameID)
			if err := w.media.Save(cropPath, item.CropBytes); err != nil {
				return fmt.Errorf("save crop: %w", err)
			}
			cropAsset, err := w.store.GetOrCreateMediaAsset(ctx, tx, mediaType, cropPath, map[string]any{"score": item.Score})
			if err != nil {
				return fmt.Errorf("crop asset: %w", err)
			}

			score := int(math.Round(item.Score * 100))
			eventID, evErr := w.persistEvent(ctx, tx, bundle, frameAsset.ID, cropAsset.ID, score)
			if evErr != nil {
				return evErr
			}

			if err := w.store.CreateJobRecord(ctx, tx, string(w.kind)+"_event", models.JobFinished, map[string]any{
				"camera": bundle.Camera, "frame_id": bundle.FrameID.String(),
			}); err != nil {
				return fmt.Errorf("job record: %w", err)
			}

			jobs = append(jobs, &models.NotificationJob{
				EventType:  eventTypeFor(w.kind),
				Camera:     bundle.Camera,
				OccurredAt: bundle.CapturedAt,
				CropPath:   cropPath,
				EventID:    eventID,
			})
		}
		return nil
	})
	if err != nil {
		slog.Error("event writer: transaction failed", "kind", w.kind, "camera", bundle.Camera, "error", err)
		return
	}

	observability.EventsPersisted.WithLabelValues(string(w.kind)).Add(float64(len(jobs)))

	for _, job := range jobs {
		if !w.notifQ.TryPut(any(job)) {
			observability.NotificationsDropped.WithLabelValues("queue_full").Inc()
			slog.Warn("event writer: notifQ full, dropping notification", "camera", job.Camera)
		}
	}
}

func (w *Writer) persistEvent(ctx context.Context, tx pgx.Tx, bundle *models.DetectionBundle, frameAssetID, cropAssetID uuid.UUID, score int) (uuid.UUID, error) {
	if w.kind == KindVehicle {
		e := &models.VehicleEvent{
			Camera:       bundle.Camera,
			OccurredAt:   bundle.CapturedAt,
			FrameAssetID: frameAssetID,
			CropAssetID:  cropAssetID,
			Score:        &score,
		}
		if err := w.store.CreateVehicleEvent(ctx, tx, e); err != nil {
			return uuid.UUID{}, fmt.Errorf("create vehicle event: %w", err)
		}
		return e.ID, nil
	}

	e := &models.PersonEvent{
		Camera:       bundle.Camera,
		OccurredAt:   bundle.CapturedAt,
		FrameAssetID: frameAssetID,
		CropAssetID:  cropAssetID,
		Score:        &score,
	}
	if err := w.store.CreatePersonEvent(ctx, tx, e); err != nil {
		return uuid.UUID{}, fmt.Errorf("create person event: %w", err)
	}
	return e.ID, nil
}

func eventTypeFor(k Kind) models.EventType {
	if k == KindVehicle {
		return models.EventTypeVehicle
	}
	return models.EventTypePerson
}
