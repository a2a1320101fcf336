// Command camwatch is the single-process entrypoint for the camera
// analytics pipeline (spec §2, SPEC_FULL.md §1-9's architectural
// resolution): one goroutine per stage worker, four buffered channels as
// the bounded queues, and a Supervisor that owns lifecycle, restart, and
// graceful shutdown. Grounded on the teacher's cmd/worker/main.go startup
// sequence (ONNX Runtime init, Postgres connect, metrics server, signal
// wait) collapsed from three binaries into one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/brightloop/camwatch/internal/config"
	"github.com/brightloop/camwatch/internal/detection"
	"github.com/brightloop/camwatch/internal/eventstore"
	"github.com/brightloop/camwatch/internal/eventwriter"
	"github.com/brightloop/camwatch/internal/ingest"
	"github.com/brightloop/camwatch/internal/mediastore"
	"github.com/brightloop/camwatch/internal/notify"
	"github.com/brightloop/camwatch/internal/observability"
	"github.com/brightloop/camwatch/internal/queue"
	"github.com/brightloop/camwatch/internal/supervisor"
	"github.com/brightloop/camwatch/internal/vision"
)

// YOLOv8-family export shape: 80 COCO classes, 8400 candidate boxes at a
// 640x640 input. Fixed by the model SPEC_FULL.md's domain stack names
// (YOLO_MODEL_PATH); not a free configuration knob.
const (
	visionInputSize = 640
	visionClasses   = 80
	visionBoxes     = 8400
)

func main() {
	configPath := flag.String("config", "", "optional path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Logging.Level)
	slog.Info("starting camwatch", "cpu_cores", runtime.NumCPU())

	ort.SetSharedLibraryPath(onnxLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		slog.Error("init onnx runtime", "error", err)
		os.Exit(1)
	}
	defer ort.DestroyEnvironment()

	ctx := context.Background()

	media, err := mediastore.New(cfg.Media.Root)
	if err != nil {
		slog.Error("init media store", "error", err)
		os.Exit(1)
	}

	store, err := eventstore.NewStore(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("connect to event store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		slog.Error("ensure event store schema", "error", err)
		os.Exit(1)
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		slog.Error("create onnx session options", "error", err)
		os.Exit(1)
	}
	classifier, err := vision.NewClassifier(cfg.Vision, visionInputSize, visionInputSize, visionClasses, visionBoxes, sessOpts)
	sessOpts.Destroy()
	if err != nil {
		slog.Error("load object classifier", "error", err)
		os.Exit(1)
	}
	defer classifier.Close()

	cameras := ingest.ParseCameraSources(cfg.Ingestion.CameraSourcesRaw, cfg.Ingestion.PollInterval)
	slog.Info("configured cameras", "count", len(cameras))

	queues := supervisor.Queues{
		FrameQ:   queue.New[any](cfg.Ingestion.QueueSize),
		PersonQ:  queue.New[any](cfg.Ingestion.QueueSize),
		VehicleQ: queue.New[any](cfg.Ingestion.QueueSize),
		NotifQ:   queue.New[any](cfg.Ingestion.QueueSize),
	}

	var notifier notify.Notifier // nil keeps the notification worker in disabled mode (spec §4.6)
	if cfg.Notification.Enabled && cfg.Notification.BotToken != "" {
		notifier = notify.NewTelegramNotifier(cfg.Notification.BotToken, cfg.Notification.ChatID)
	}

	sup := buildSupervisor(queues, cameras, cfg, classifier, store, media, notifier)

	go serveOperability(cfg)
	go reportQueueDepth(ctx, queues)

	sup.Run(ctx)
	slog.Info("camwatch stopped")
}

// buildSupervisor wires the five stage-worker factories required by spec
// §4.7. Each factory builds a brand-new worker instance so a crash restart
// never reuses a dead worker's local state (per-camera motion detectors in
// particular are reset, exactly as spec §9 calls for).
func buildSupervisor(
	queues supervisor.Queues,
	cameras []ingest.CameraConfig,
	cfg *config.Config,
	classifier *vision.Classifier,
	store *eventstore.Store,
	media *mediastore.Store,
	notifier notify.Notifier,
) *supervisor.Supervisor {
	var sup *supervisor.Supervisor

	stopped := func() bool { return sup.Stopped() }

	factories := map[string]supervisor.Factory{
		"ingestion": func() supervisor.Worker {
			return ingest.NewWorker(cameras, queues.FrameQ, stopped)
		},
		"detection": func() supervisor.Worker {
			return detection.NewStage(queues.FrameQ, queues.PersonQ, queues.VehicleQ, classifier, cfg.Motion, stopped)
		},
		"person_writer": func() supervisor.Worker {
			return eventwriter.New(eventwriter.KindPerson, queues.PersonQ, queues.NotifQ, store, media, stopped)
		},
		"vehicle_writer": func() supervisor.Worker {
			return eventwriter.New(eventwriter.KindVehicle, queues.VehicleQ, queues.NotifQ, store, media, stopped)
		},
		"notifier": func() supervisor.Worker {
			return notify.NewWorker(queues.NotifQ, notifier, cfg.Notification.DebounceSeconds, store, media, stopped)
		},
	}

	sup = supervisor.New(queues, factories)
	return sup
}

// serveOperability exposes /metrics and /healthz, the ambient operability
// surface SPEC_FULL.md §10 distinguishes from the out-of-scope query API.
func serveOperability(cfg *config.Config) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	slog.Info("operability endpoint listening", "addr", ":8080")
	if err := http.ListenAndServe(":8080", mux); err != nil {
		slog.Error("operability server stopped", "error", err)
	}
}

func reportQueueDepth(ctx context.Context, queues supervisor.Queues) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			observability.QueueDepth.WithLabelValues("frame").Set(float64(queues.FrameQ.Len()))
			observability.QueueDepth.WithLabelValues("person").Set(float64(queues.PersonQ.Len()))
			observability.QueueDepth.WithLabelValues("vehicle").Set(float64(queues.VehicleQ.Len()))
			observability.QueueDepth.WithLabelValues("notif").Set(float64(queues.NotifQ.Len()))
		}
	}
}

func onnxLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}
