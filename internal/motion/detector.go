// Package motion implements the per-camera stateful motion detector
// described in spec §4.2: an adaptive background model, binarization,
// morphological opening, and connected-component area gating. Grounded on
// the Python predecessor's movement_detector.py (cv2.createBackgroundSubtractorKNN
// + threshold + morphologyEx pipeline). No image-processing library in the
// example corpus provides background subtraction or contour finding, so
// this package implements both with the standard library's image package —
// see DESIGN.md for that justification.
package motion

import (
	"image"
	"image/color"

	"github.com/brightloop/camwatch/internal/config"
	"github.com/brightloop/camwatch/internal/models"
)

// Detector holds the running background model for one camera. Lifecycle is
// owned by the Detection stage worker; a crash resets it (see spec §9).
type Detector struct {
	cfg config.MotionConfig

	width, height int
	background    []float64 // running per-pixel grayscale average
	frameIdx      int
}

func NewDetector(cfg config.MotionConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect runs the full per-frame algorithm from spec §4.2 and returns the
// kept bounding boxes, or nil if motion was not declared. The background
// model is always updated, even when the result is suppressed by warmup or
// the foreground-ratio guard (step 8's invariant).
func (d *Detector) Detect(img image.Image) []models.BBox {
	frameIdx := d.frameIdx
	d.frameIdx++

	b := img.Bounds()
	d.width, d.height = b.Dx(), b.Dy()

	gray := toGrayscale(img)
	fgRaw := d.applyBackgroundModel(gray)

	mask := binarize(fgRaw, d.cfg.BinarizeThreshold)
	mask = morphologicalOpen(mask, d.width, d.height, d.cfg.KernelSize)

	fgRatio := foregroundRatio(mask)

	if frameIdx < d.cfg.WarmupFrames || fgRatio > d.cfg.MaxForegroundRatio {
		return nil
	}

	components := findComponents(mask, d.width, d.height)

	var boxes []models.BBox
	totalArea := 0
	for _, c := range components {
		if c.area < d.cfg.MinArea {
			continue
		}
		boxes = append(boxes, c.bbox)
		totalArea += c.area
	}

	if totalArea >= d.cfg.AreaThreshold && len(boxes) > 0 {
		return boxes
	}
	return nil
}

func toGrayscale(img image.Image) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			out[y*w+x] = float64(c.Y)
		}
	}
	return out
}

// applyBackgroundModel returns the raw (continuous) foreground map as the
// absolute difference from the running background average, then folds the
// current frame into that average regardless of any gating outcome. The
// learning rate decays toward 1/history as frameIdx grows, an adaptive
// estimator analogue of the source's KNN subtractor.
func (d *Detector) applyBackgroundModel(gray []float64) []float64 {
	if d.background == nil {
		d.background = make([]float64, len(gray))
		copy(d.background, gray)
	}

	fg := make([]float64, len(gray))
	n := float64(d.frameIdx)
	if n > float64(d.cfg.History) {
		n = float64(d.cfg.History)
	}
	if n < 1 {
		n = 1
	}
	alpha := 1.0 / n

	for i, v := range gray {
		diff := v - d.background[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 255 {
			diff = 255
		}
		fg[i] = diff
		d.background[i] += alpha * (v - d.background[i])
	}
	return fg
}
