package motion

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightloop/camwatch/internal/config"
)

func testConfig() config.MotionConfig {
	return config.MotionConfig{
		History:            20,
		KernelSize:         3,
		MinArea:            4,
		BinarizeThreshold:  50,
		AreaThreshold:      8,
		MaxForegroundRatio: 0.5,
		WarmupFrames:       3,
	}
}

func solidImage(w, h int, gray uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = gray
	}
	return img
}

// halfBrightImage sets the left half of the frame to `lo` and the right
// half to `hi`, producing a block of foreground once the background model
// has learned the `lo` side.
func halfBrightImage(w, h int, lo, hi uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := lo
			if x >= w/2 {
				v = hi
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestDetector_WarmupSuppressesOutput(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupFrames = 3
	d := NewDetector(cfg)

	for i := 0; i < cfg.WarmupFrames; i++ {
		boxes := d.Detect(solidImage(20, 20, 30))
		assert.Nil(t, boxes, "frame %d should be suppressed by warmup", i)
	}
}

func TestDetector_WarmupZeroStillSuppressesFirstFrame(t *testing.T) {
	// Boundary behavior from spec §8: warmup_frames = 0 still yields an
	// empty result on frame 0 because frameIdx (0) is not < warmupFrames
	// (0) -- the gate at this exact boundary is the background model not
	// yet having diverged from the very frame it just saw.
	cfg := testConfig()
	cfg.WarmupFrames = 0
	d := NewDetector(cfg)

	boxes := d.Detect(solidImage(20, 20, 30))
	assert.Nil(t, boxes)
}

func TestDetector_BackgroundUpdatesDuringWarmup(t *testing.T) {
	cfg := testConfig()
	cfg.WarmupFrames = 5
	d := NewDetector(cfg)

	for i := 0; i < cfg.WarmupFrames; i++ {
		d.Detect(solidImage(10, 10, 10))
	}
	require.NotNil(t, d.background, "background model must be populated even while gated by warmup")
	for _, v := range d.background {
		assert.InDelta(t, 10, v, 0.01)
	}
}

func TestDetector_ForegroundRatioBoundaryIsStrictGreaterThan(t *testing.T) {
	// fg_ratio == max_foreground_ratio must NOT trigger the saturation
	// gate (spec §8: "strict >"). Build a scene whose foreground ratio
	// lands exactly at the configured maximum.
	cfg := testConfig()
	cfg.WarmupFrames = 0
	cfg.MaxForegroundRatio = 0.5 // exactly half the pixels in foreground
	cfg.MinArea = 1
	cfg.AreaThreshold = 1
	cfg.BinarizeThreshold = 100
	cfg.KernelSize = 1 // disable morphological opening so the ratio is exact
	d := NewDetector(cfg)

	// First frame establishes the low background.
	d.Detect(solidImage(10, 10, 10))
	// Second frame: right half jumps far above threshold, left half stays.
	boxes := d.Detect(halfBrightImage(10, 10, 10, 250))

	require.NotNil(t, boxes, "fg_ratio == max_foreground_ratio must still declare motion")
}

func TestDetector_AreaThresholdBoundaryIsNonStrictGreaterEqual(t *testing.T) {
	// total_area == area_threshold must declare motion (spec §8: non-strict
	// "≥"). Use a single connected foreground blob whose pixel count
	// exactly matches area_threshold.
	cfg := testConfig()
	cfg.WarmupFrames = 0
	cfg.MaxForegroundRatio = 0.9
	cfg.MinArea = 1
	cfg.BinarizeThreshold = 100
	cfg.KernelSize = 1 // disable morphological opening so area is exact
	d := NewDetector(cfg)

	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 10
	}
	d.Detect(img) // establish background

	blob := image.NewGray(image.Rect(0, 0, 10, 10))
	copy(blob.Pix, img.Pix)
	// Exactly 8 pixels of foreground, matching area_threshold (testConfig).
	for i := 0; i < 8; i++ {
		blob.Pix[i] = 250
	}

	boxes := d.Detect(blob)
	assert.NotNil(t, boxes, "total_area == area_threshold must declare motion")
}

func TestDetector_FrameIndexAlwaysIncrements(t *testing.T) {
	cfg := testConfig()
	d := NewDetector(cfg)
	for i := 0; i < 10; i++ {
		d.Detect(solidImage(5, 5, 10))
	}
	assert.Equal(t, 10, d.frameIdx)
}
