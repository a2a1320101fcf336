package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/brightloop/camwatch/internal/models"
)

func TestShouldSkip_NoPriorSendNeverSkips(t *testing.T) {
	w := &Worker{lastSent: make(map[string]time.Time), debounce: time.Minute}
	assert.False(t, w.shouldSkip("cam1"))
}

func TestShouldSkip_WithinDebounceWindowSkips(t *testing.T) {
	w := &Worker{lastSent: map[string]time.Time{"cam1": time.Now()}, debounce: time.Minute}
	assert.True(t, w.shouldSkip("cam1"))
}

func TestShouldSkip_ExactlyAtDebounceBoundaryDoesNotSkip(t *testing.T) {
	// Boundary behavior from spec §8: now - last_sent_at == debounce_seconds
	// must proceed with delivery (strict "<" on the skip condition).
	w := &Worker{lastSent: map[string]time.Time{"cam1": time.Now().Add(-time.Minute)}, debounce: time.Minute}
	assert.False(t, w.shouldSkip("cam1"))
}

func TestShouldSkip_IsPerCamera(t *testing.T) {
	w := &Worker{lastSent: map[string]time.Time{"cam1": time.Now()}, debounce: time.Minute}
	assert.True(t, w.shouldSkip("cam1"))
	assert.False(t, w.shouldSkip("cam2"))
}

func TestRenderMessage_IncludesEventTypeCameraAndTime(t *testing.T) {
	job := &models.NotificationJob{
		EventType:  models.EventTypeVehicle,
		Camera:     "driveway",
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EventID:    uuid.New(),
	}
	msg := renderMessage(job)
	assert.Contains(t, msg, "Vehicle")
	assert.Contains(t, msg, "driveway")
	assert.Contains(t, msg, "2026-01-02")
}
