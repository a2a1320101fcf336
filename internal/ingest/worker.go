package ingest

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/brightloop/camwatch/internal/models"
	"github.com/brightloop/camwatch/internal/observability"
	"github.com/brightloop/camwatch/internal/queue"
)

// Worker is the Ingestion stage: for each configured camera it produces a
// steady stream of FrameJobs into frameQ. Grounded on the single-process
// round-robin loop of the Python predecessor's IngestionWorker.run(): one
// goroutine visits every camera each outer iteration rather than spawning
// one goroutine per camera, sleeping that camera's poll interval between
// visits.
type Worker struct {
	cameras []CameraConfig
	frameQ  *queue.Queue[any]
	stopped func() bool

	cursors map[string]float64 // directory-mode last_mtime per camera
}

func NewWorker(cameras []CameraConfig, frameQ *queue.Queue[any], stopped func() bool) *Worker {
	return &Worker{
		cameras: cameras,
		frameQ:  frameQ,
		stopped: stopped,
		cursors: make(map[string]float64),
	}
}

// Run loops until the stop flag is set, then pushes a single PoisonPill to
// frameQ and returns. Per spec §4.1 fails-with, no error escapes this
// stage: all per-camera failures are logged and the loop continues.
func (w *Worker) Run(ctx context.Context) {
	for !w.stopped() {
		for _, cam := range w.cameras {
			if w.stopped() {
				break
			}
			w.tick(ctx, cam)
			select {
			case <-ctx.Done():
			case <-time.After(time.Duration(cam.PollInterval * float64(time.Second))):
			}
		}
		if len(w.cameras) == 0 {
			select {
			case <-ctx.Done():
				break
			case <-time.After(200 * time.Millisecond):
			}
		}
	}

	_ = w.frameQ.TryPut(&models.PoisonPill{Reason: "shutdown"})
	slog.Info("ingestion stopped")
}

func (w *Worker) tick(ctx context.Context, cam CameraConfig) {
	if cam.IsStream() {
		w.tickStream(ctx, cam)
		return
	}
	w.tickDirectory(ctx, cam)
}

func (w *Worker) tickStream(ctx context.Context, cam CameraConfig) {
	data, err := readStreamFrame(ctx, cam.Source)
	if err != nil {
		slog.Warn("ingest: stream read failed", "camera", cam.Name, "error", err)
		return
	}
	w.enqueue(ctx, cam.Name, data)
}

func (w *Worker) tickDirectory(ctx context.Context, cam CameraConfig) {
	cursor := w.cursors[cam.Name]
	files, err := pollFiles(cam.Source, cursor)
	if err != nil {
		slog.Warn("ingest: directory read failed", "camera", cam.Name, "error", err)
		return
	}
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			slog.Warn("ingest: file read failed", "camera", cam.Name, "path", f.path, "error", err)
			continue
		}
		w.enqueue(ctx, cam.Name, data)
		w.cursors[cam.Name] = f.mtime
	}
}

func (w *Worker) enqueue(ctx context.Context, camera string, imageBytes []byte) {
	job := &models.FrameJob{
		FrameID:    uuid.New(),
		Camera:     camera,
		CapturedAt: time.Now().UTC(),
		ImageBytes: imageBytes,
	}
	if err := w.frameQ.Put(ctx, any(job), w.stopped); err != nil {
		if err == queue.ErrShutdown {
			return
		}
		slog.Warn("ingest: enqueue failed", "camera", camera, "error", err)
		return
	}
	observability.FramesIngested.WithLabelValues(camera).Inc()
}
