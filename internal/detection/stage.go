// Package detection implements spec §4.4: consume frameQ, gate by motion,
// run the classifier, intersect classifier boxes with motion boxes, and
// emit non-empty detection bundles to personQ/vehicleQ. Grounded on the
// Python predecessor's pipeline/detection.py.
package detection

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/brightloop/camwatch/internal/config"
	"github.com/brightloop/camwatch/internal/models"
	"github.com/brightloop/camwatch/internal/motion"
	"github.com/brightloop/camwatch/internal/observability"
	"github.com/brightloop/camwatch/internal/queue"
	"github.com/brightloop/camwatch/internal/vision"
)

// overlapThreshold is the fraction of a classifier box's area that must be
// covered by a motion box for the detection to survive (spec §4.4 step 4).
const overlapThreshold = 0.2

// backpressureFraction and backpressureInterval bound the Detection stage's
// queue-depth warning to spec §4.4 step 6: at most once every 5s, when
// frameQ is at least 70% full.
const (
	backpressureFraction = 0.7
	backpressureInterval = 5 * time.Second
)

type Stage struct {
	frameQ   *queue.Queue[any]
	personQ  *queue.Queue[any]
	vehicleQ *queue.Queue[any]
	stopped  func() bool

	classifier *vision.Classifier
	motionCfg  config.MotionConfig
	detectors  map[string]*motion.Detector

	lastWarn time.Time
}

func NewStage(frameQ, personQ, vehicleQ *queue.Queue[any], classifier *vision.Classifier, motionCfg config.MotionConfig, stopped func() bool) *Stage {
	return &Stage{
		frameQ:     frameQ,
		personQ:    personQ,
		vehicleQ:   vehicleQ,
		stopped:    stopped,
		classifier: classifier,
		motionCfg:  motionCfg,
		detectors:  make(map[string]*motion.Detector),
	}
}

// Run consumes frameQ until a PoisonPill arrives, then fans one pill out to
// each output queue and returns.
func (s *Stage) Run(ctx context.Context) {
	for {
		item, err := s.frameQ.Get(ctx)
		if err != nil {
			return
		}

		if _, isPill := item.(*models.PoisonPill); isPill {
			_ = s.personQ.TryPut(any(&models.PoisonPill{Reason: "shutdown"}))
			_ = s.vehicleQ.TryPut(any(&models.PoisonPill{Reason: "shutdown"}))
			slog.Info("detection stopped")
			return
		}

		job, ok := item.(*models.FrameJob)
		if !ok {
			continue
		}
		s.processFrame(ctx, job)
		s.maybeWarnBackpressure(job.Camera)
	}
}

func (s *Stage) processFrame(ctx context.Context, job *models.FrameJob) {
	img, err := vision.DecodeImage(job.ImageBytes)
	if err != nil {
		slog.Warn("detection: decode failed", "camera", job.Camera, "frame_id", job.FrameID, "error", err)
		return
	}

	motionBoxes, skip := s.motionBoxesForFrame(job.Camera, img)
	if skip {
		// Motion detection ran on an established camera and returned
		// empty: skip the frame entirely, the classifier is never called.
		return
	}
	// motionBoxes may legitimately be empty here (first-frame rule): the
	// classifier still runs, but the overlap filter below will drop every
	// detection since there are no motion boxes to overlap.

	pred, err := s.classifier.Predict(img)
	if err != nil {
		slog.Error("detection: classifier failed", "camera", job.Camera, "frame_id", job.FrameID, "error", err)
		return
	}

	persons := filterByMotionOverlap(pred.Persons, motionBoxes)
	vehicles := filterByMotionOverlap(pred.Vehicles, motionBoxes)

	observability.FramesProcessed.WithLabelValues(job.Camera).Inc()

	if len(persons) > 0 {
		bundle := &models.DetectionBundle{FrameID: job.FrameID, Camera: job.Camera, CapturedAt: job.CapturedAt, FrameBytes: job.ImageBytes, Items: persons}
		if err := s.personQ.Put(ctx, any(bundle), s.stopped); err != nil && err != queue.ErrShutdown {
			slog.Warn("detection: enqueue person bundle failed", "camera", job.Camera, "error", err)
		}
	}
	if len(vehicles) > 0 {
		bundle := &models.DetectionBundle{FrameID: job.FrameID, Camera: job.Camera, CapturedAt: job.CapturedAt, FrameBytes: job.ImageBytes, Items: vehicles}
		if err := s.vehicleQ.Put(ctx, any(bundle), s.stopped); err != nil && err != queue.ErrShutdown {
			slog.Warn("detection: enqueue vehicle bundle failed", "camera", job.Camera, "error", err)
		}
	}
}

// motionBoxesForFrame applies spec §4.4 step 2's first-frame rule: a
// brand-new camera gets its MotionDetector created but is NOT run through
// it this frame (no usable background model yet); the frame still reaches
// the classifier with an empty box set (skip=false). On subsequent frames,
// an empty motion result means skip=true: the frame is dropped before the
// classifier runs.
func (s *Stage) motionBoxesForFrame(camera string, img image.Image) (boxes []models.BBox, skip bool) {
	det, exists := s.detectors[camera]
	if !exists {
		s.detectors[camera] = motion.NewDetector(s.motionCfg)
		return nil, false
	}
	boxes = det.Detect(img)
	return boxes, boxes == nil
}

func (s *Stage) maybeWarnBackpressure(triggeringCamera string) {
	if s.frameQ.Len() < int(backpressureFraction*float64(s.frameQ.Cap())) {
		return
	}
	now := time.Now()
	if now.Sub(s.lastWarn) < backpressureInterval {
		return
	}
	s.lastWarn = now
	slog.Warn("detection: frameQ back-pressure", "camera", triggeringCamera, "depth", s.frameQ.Len(), "capacity", s.frameQ.Cap())
}
