package detection

import "github.com/brightloop/camwatch/internal/models"

// filterByMotionOverlap keeps a classifier detection D iff some motion box
// M exists such that area(D ∩ M) ≥ overlapThreshold × area(D) (spec §4.4
// step 4). With no motion boxes, every detection is dropped.
func filterByMotionOverlap(dets []models.Detection, motionBoxes []models.BBox) []models.Detection {
	if len(motionBoxes) == 0 {
		return nil
	}

	var kept []models.Detection
	for _, d := range dets {
		if hasMotionOverlap(d.BBox, motionBoxes) {
			kept = append(kept, d)
		}
	}
	return kept
}

func hasMotionOverlap(box models.BBox, motionBoxes []models.BBox) bool {
	detArea := float64(box.Area())
	if detArea == 0 {
		return false
	}
	for _, m := range motionBoxes {
		inter := float64(box.Intersection(m).Area())
		if inter >= overlapThreshold*detArea {
			return true
		}
	}
	return false
}
