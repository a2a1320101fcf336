package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the processor's full configuration surface. Values come from an
// optional YAML file first, then environment variables, which always win.
type Config struct {
	Ingestion    IngestionConfig    `yaml:"ingestion"`
	Motion       MotionConfig       `yaml:"motion"`
	Media        MediaConfig        `yaml:"media"`
	Notification NotificationConfig `yaml:"notification"`
	Vision       VisionConfig       `yaml:"vision"`
	Database     DatabaseConfig     `yaml:"database"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type IngestionConfig struct {
	CameraSourcesRaw string  `yaml:"camera_sources"`
	PollInterval     float64 `yaml:"frame_poll_interval"`
	QueueSize        int     `yaml:"queue_size"`
}

// MotionConfig holds the per-camera background-subtraction parameters
// consumed by internal/motion. All fields apply to every camera; the spec
// does not support per-camera overrides.
type MotionConfig struct {
	History            int     `yaml:"history"`
	KernelSize         int     `yaml:"kernel_size"`
	MinArea            int     `yaml:"min_area"`
	BinarizeThreshold  int     `yaml:"binarize_threshold"`
	AreaThreshold      int     `yaml:"area_threshold"`
	MaxForegroundRatio float64 `yaml:"max_foreground_ratio"`
	WarmupFrames       int     `yaml:"warmup_frames"`
}

type MediaConfig struct {
	Root string `yaml:"media_root"`
}

type NotificationConfig struct {
	Enabled          bool    `yaml:"enabled"`
	DebounceSeconds  float64 `yaml:"debounce_seconds"`
	BotToken         string  `yaml:"bot_token"`
	ChatID           string  `yaml:"chat_id"`
}

type VisionConfig struct {
	ModelPath      string  `yaml:"model_path"`
	ConfThreshold  float64 `yaml:"conf_threshold"`
	IoUThreshold   float64 `yaml:"iou_threshold"`
	VehicleConf    float64 `yaml:"vehicle_conf"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads an optional YAML file (path may be empty) and then applies
// environment variable overrides using the literal names from the
// processor's external-interface contract.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Ingestion.PollInterval == 0 {
		cfg.Ingestion.PollInterval = 1.0
	}
	if cfg.Ingestion.QueueSize == 0 {
		cfg.Ingestion.QueueSize = 512
	}
	if cfg.Motion.History == 0 {
		cfg.Motion.History = 500
	}
	if cfg.Motion.KernelSize == 0 {
		cfg.Motion.KernelSize = 5
	}
	if cfg.Motion.MinArea == 0 {
		cfg.Motion.MinArea = 500
	}
	if cfg.Motion.BinarizeThreshold == 0 {
		cfg.Motion.BinarizeThreshold = 200
	}
	if cfg.Motion.AreaThreshold == 0 {
		cfg.Motion.AreaThreshold = 2000
	}
	if cfg.Motion.MaxForegroundRatio == 0 {
		cfg.Motion.MaxForegroundRatio = 0.6
	}
	// WarmupFrames and Database.URL have no positive-default fallback:
	// zero is a legal value for warmup, and an empty DSN is a startup error.
	if cfg.Notification.DebounceSeconds == 0 {
		cfg.Notification.DebounceSeconds = 60
	}
	if cfg.Vision.ConfThreshold == 0 {
		cfg.Vision.ConfThreshold = 0.4
	}
	if cfg.Vision.IoUThreshold == 0 {
		cfg.Vision.IoUThreshold = 0.45
	}
	if cfg.Vision.VehicleConf == 0 {
		cfg.Vision.VehicleConf = 0.3
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CAMERA_SOURCES"); v != "" {
		cfg.Ingestion.CameraSourcesRaw = v
	}
	if v := os.Getenv("FRAME_POLL_INTERVAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ingestion.PollInterval = f
		}
	}
	if v := os.Getenv("QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingestion.QueueSize = n
		}
	}
	if v := os.Getenv("MOTION_HISTORY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Motion.History = n
		}
	}
	if v := os.Getenv("MOTION_KERNEL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Motion.KernelSize = n
		}
	}
	if v := os.Getenv("MOTION_MIN_AREA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Motion.MinArea = n
		}
	}
	if v := os.Getenv("MOTION_BINARIZE_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Motion.BinarizeThreshold = n
		}
	}
	if v := os.Getenv("MOTION_AREA_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Motion.AreaThreshold = n
		}
	}
	if v := os.Getenv("MOTION_MAX_FOREGROUND_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Motion.MaxForegroundRatio = f
		}
	}
	if v := os.Getenv("MOTION_WARMUP_FRAMES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Motion.WarmupFrames = n
		}
	}
	if v := os.Getenv("MEDIA_ROOT"); v != "" {
		cfg.Media.Root = v
	}
	if v := os.Getenv("NOTIFICATIONS_ENABLED"); v != "" {
		cfg.Notification.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("NOTIFICATION_DEBOUNCE_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Notification.DebounceSeconds = f
		}
	}
	if v := os.Getenv("NOTIFICATION_BOT_TOKEN"); v != "" {
		cfg.Notification.BotToken = v
	}
	if v := os.Getenv("NOTIFICATION_CHAT_ID"); v != "" {
		cfg.Notification.ChatID = v
	}
	if v := os.Getenv("YOLO_MODEL_PATH"); v != "" {
		cfg.Vision.ModelPath = v
	}
	if v := os.Getenv("YOLO_CONF_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Vision.ConfThreshold = f
		}
	}
	if v := os.Getenv("YOLO_IOU_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Vision.IoUThreshold = f
		}
	}
	if v := os.Getenv("YOLO_VEHICLE_CONF"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Vision.VehicleConf = f
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func validate(cfg *Config) error {
	if cfg.Media.Root == "" {
		return fmt.Errorf("config: MEDIA_ROOT is required")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if cfg.Motion.KernelSize%2 == 0 {
		return fmt.Errorf("config: MOTION_KERNEL_SIZE must be odd, got %d", cfg.Motion.KernelSize)
	}
	return nil
}
