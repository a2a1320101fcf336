package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightloop/camwatch/internal/models"
)

func box(x, y, w, h int) models.BBox { return models.BBox{X: x, Y: y, W: w, H: h} }

func TestFilterByMotionOverlap_NoMotionBoxesDropsEverything(t *testing.T) {
	dets := []models.Detection{{BBox: box(0, 0, 10, 10)}}
	kept := filterByMotionOverlap(dets, nil)
	assert.Empty(t, kept)
}

func TestFilterByMotionOverlap_KeepsDetectionAboveThreshold(t *testing.T) {
	// Detection box is 10x10=100 area; motion box covers the left 3 columns
	// (30 area), above the 0.2 threshold fraction (20 area) of the detection area.
	dets := []models.Detection{{BBox: box(0, 0, 10, 10)}}
	motion := []models.BBox{box(0, 0, 3, 10)}
	kept := filterByMotionOverlap(dets, motion)
	assert.Len(t, kept, 1)
}

func TestFilterByMotionOverlap_ExactThresholdIsKept(t *testing.T) {
	// area(D ∩ M) == overlapThreshold * area(D) must still survive (non-
	// strict "≥" per spec §4.4 step 4).
	dets := []models.Detection{{BBox: box(0, 0, 10, 10)}}
	motion := []models.BBox{box(0, 0, 2, 10)} // 20 area == 0.2 * 100
	kept := filterByMotionOverlap(dets, motion)
	assert.Len(t, kept, 1)
}

func TestFilterByMotionOverlap_DropsBelowThreshold(t *testing.T) {
	dets := []models.Detection{{BBox: box(0, 0, 10, 10)}}
	motion := []models.BBox{box(0, 0, 1, 10)} // 10 area < 20 required
	kept := filterByMotionOverlap(dets, motion)
	assert.Empty(t, kept)
}

func TestFilterByMotionOverlap_UnionOfMultipleMotionBoxesIsNotSummed(t *testing.T) {
	// Per spec §4.4 step 4 the test is against a single motion box's
	// overlap, not the union of all motion boxes: two boxes each covering
	// 10% of the detection should NOT combine to reach 20%.
	dets := []models.Detection{{BBox: box(0, 0, 10, 10)}}
	motion := []models.BBox{box(0, 0, 1, 10), box(9, 0, 1, 10)} // 10% each
	kept := filterByMotionOverlap(dets, motion)
	assert.Empty(t, kept)
}

func TestFilterByMotionOverlap_ZeroAreaDetectionNeverSurvives(t *testing.T) {
	dets := []models.Detection{{BBox: box(0, 0, 0, 0)}}
	motion := []models.BBox{box(0, 0, 100, 100)}
	kept := filterByMotionOverlap(dets, motion)
	assert.Empty(t, kept)
}

func TestBBoxIntersection_NonOverlappingIsZeroArea(t *testing.T) {
	a := box(0, 0, 5, 5)
	b := box(10, 10, 5, 5)
	assert.Equal(t, 0, a.Intersection(b).Area())
}

func TestBBoxIntersection_PartialOverlap(t *testing.T) {
	a := box(0, 0, 10, 10)
	b := box(5, 5, 10, 10)
	inter := a.Intersection(b)
	assert.Equal(t, box(5, 5, 5, 5), inter)
	assert.Equal(t, 25, inter.Area())
}
