package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType enumerates the kinds of files the media store can hold. Only
// frame/person_crop/vehicle_crop are written by this repository; "other" is
// reserved for the out-of-scope HTTP surface and retention tooling.
type MediaType string

const (
	MediaTypeFrame       MediaType = "frame"
	MediaTypePersonCrop  MediaType = "person_crop"
	MediaTypeVehicleCrop MediaType = "vehicle_crop"
	MediaTypeOther       MediaType = "other"
)

// MediaAsset is a row referencing a file on the media store. Path is
// globally unique: the same on-disk file is referenced by at most one
// asset row.
type MediaAsset struct {
	ID         uuid.UUID      `db:"id"`
	MediaType  MediaType      `db:"media_type"`
	Path       string         `db:"path"`
	Attributes map[string]any `db:"attributes"`
	CreatedAt  time.Time      `db:"created_at"`
}

// PersonEvent is a persisted person detection, referencing exactly one
// frame asset and one crop asset.
type PersonEvent struct {
	ID           uuid.UUID `db:"id"`
	Camera       string    `db:"camera"`
	OccurredAt   time.Time `db:"occurred_at"`
	FrameAssetID uuid.UUID `db:"frame_asset_id"`
	CropAssetID  uuid.UUID `db:"crop_asset_id"`
	Score        *int      `db:"score"`
	CreatedAt    time.Time `db:"created_at"`
}

// VehicleEvent mirrors PersonEvent and additionally carries a label,
// defaulting to "vehicle" (the classifier does not currently distinguish
// vehicle subtypes at the event-writer level).
type VehicleEvent struct {
	ID           uuid.UUID `db:"id"`
	Camera       string    `db:"camera"`
	OccurredAt   time.Time `db:"occurred_at"`
	FrameAssetID uuid.UUID `db:"frame_asset_id"`
	CropAssetID  uuid.UUID `db:"crop_asset_id"`
	Score        *int      `db:"score"`
	Label        string    `db:"label"`
	CreatedAt    time.Time `db:"created_at"`
}

// NotificationStatus tracks delivery outcome for a queued notification row.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// Notification is the persisted record of a NotificationJob, written
// independently of whether delivery eventually succeeds.
type Notification struct {
	ID         uuid.UUID          `db:"id"`
	EventType  EventType          `db:"event_type"`
	EventID    *uuid.UUID         `db:"event_id"`
	Status     NotificationStatus `db:"status"`
	Payload    map[string]any     `db:"payload"`
	CreatedAt  time.Time          `db:"created_at"`
	SentAt     *time.Time         `db:"sent_at"`
	Error      *string            `db:"error"`
}

// JobStatus tracks the lifecycle of a job-ledger row, written by the event
// writers for observability and consumed by the out-of-scope HTTP surface.
type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobStarted  JobStatus = "started"
	JobFinished JobStatus = "finished"
	JobFailed   JobStatus = "failed"
	JobDropped  JobStatus = "dropped"
)

// JobRecord is an observability row describing one unit of work performed
// by an event writer.
type JobRecord struct {
	ID        uuid.UUID      `db:"id"`
	JobType   string         `db:"job_type"`
	Status    JobStatus      `db:"status"`
	Payload   map[string]any `db:"payload"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	Error     *string        `db:"error"`
}
