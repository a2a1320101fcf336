// Package models holds the in-flight message shapes that travel between
// pipeline stages and the persistent rows the event writers produce.
package models

import (
	"time"

	"github.com/google/uuid"
)

// PoisonPill is the cooperative shutdown sentinel. A stage that reads one
// off its input queue forwards exactly one per output queue and returns.
type PoisonPill struct {
	Reason string
}

// FrameJob is produced by Ingestion for every frame pulled from a camera.
// Immutable once constructed; ImageBytes is shared by reference from
// Ingestion through the event writers.
type FrameJob struct {
	FrameID     uuid.UUID
	Camera      string
	CapturedAt  time.Time
	ImageBytes  []byte
}

// Detection is one classifier result, already clipped to the source image
// and cropped.
type Detection struct {
	BBox      BBox
	Score     float64
	CropBytes []byte
}

// BBox is an integer rectangle in pixel coordinates of the original frame.
type BBox struct {
	X, Y, W, H int
}

func (b BBox) Area() int {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// Intersection returns the overlapping rectangle of two boxes, with zero
// width/height if they do not overlap.
func (b BBox) Intersection(o BBox) BBox {
	x1 := max(b.X, o.X)
	y1 := max(b.Y, o.Y)
	x2 := min(b.X+b.W, o.X+o.W)
	y2 := min(b.Y+b.H, o.Y+o.H)
	if x2 <= x1 || y2 <= y1 {
		return BBox{}
	}
	return BBox{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// DetectionBundle is the detection-stage output for one FrameJob, shared
// shape for both PersonDetections and VehicleDetections. Emitted only when
// Items is non-empty after motion-overlap filtering.
type DetectionBundle struct {
	FrameID    uuid.UUID
	Camera     string
	CapturedAt time.Time
	FrameBytes []byte
	Items      []Detection
}

// EventType distinguishes the two detection families persisted by the
// event writers and referenced by notifications.
type EventType string

const (
	EventTypePerson  EventType = "person"
	EventTypeVehicle EventType = "vehicle"
)

// NotificationJob is queued by an event writer once its transaction
// commits successfully.
type NotificationJob struct {
	EventType  EventType
	Camera     string
	OccurredAt time.Time
	CropPath   string
	EventID    uuid.UUID
}
