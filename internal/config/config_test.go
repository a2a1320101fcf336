package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCamwatchEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"CAMERA_SOURCES", "FRAME_POLL_INTERVAL", "QUEUE_SIZE",
		"MOTION_HISTORY", "MOTION_KERNEL_SIZE", "MOTION_MIN_AREA",
		"MOTION_BINARIZE_THRESHOLD", "MOTION_AREA_THRESHOLD",
		"MOTION_MAX_FOREGROUND_RATIO", "MOTION_WARMUP_FRAMES",
		"MEDIA_ROOT", "NOTIFICATIONS_ENABLED", "NOTIFICATION_DEBOUNCE_SECONDS",
		"NOTIFICATION_BOT_TOKEN", "NOTIFICATION_CHAT_ID",
		"YOLO_MODEL_PATH", "YOLO_CONF_THRESHOLD", "YOLO_IOU_THRESHOLD",
		"YOLO_VEHICLE_CONF", "DATABASE_URL", "LOG_LEVEL",
	}
	for _, v := range vars {
		require.NoError(t, os.Unsetenv(v))
	}
}

func TestLoad_FailsWithoutMediaRootOrDatabaseURL(t *testing.T) {
	clearCamwatchEnv(t)
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_DefaultsApplyWhenUnset(t *testing.T) {
	clearCamwatchEnv(t)
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/camwatch")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1.0, cfg.Ingestion.PollInterval)
	assert.Equal(t, 512, cfg.Ingestion.QueueSize)
	assert.Equal(t, 500, cfg.Motion.History)
	assert.Equal(t, 5, cfg.Motion.KernelSize)
	assert.Equal(t, 60.0, cfg.Notification.DebounceSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearCamwatchEnv(t)
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/camwatch")
	t.Setenv("MOTION_WARMUP_FRAMES", "15")
	t.Setenv("NOTIFICATION_DEBOUNCE_SECONDS", "90")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Motion.WarmupFrames)
	assert.Equal(t, 90.0, cfg.Notification.DebounceSeconds)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_RejectsEvenKernelSize(t *testing.T) {
	clearCamwatchEnv(t)
	t.Setenv("MEDIA_ROOT", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://localhost/camwatch")
	t.Setenv("MOTION_KERNEL_SIZE", "4")

	_, err := Load("")
	assert.Error(t, err)
}
