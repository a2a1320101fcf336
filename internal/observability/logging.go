package observability

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// loggerName is the static logger name embedded in every log line (spec §6:
// "one JSON object per line with fields {level, name, message, time,
// ...extra_payload}"). Grounded on the Python predecessor's
// logging_utils.JsonFormatter, which uses the stdlib logger's hierarchical
// name; this Go port uses a single process-wide name since there is no
// per-module logger hierarchy to mirror.
const loggerName = "camwatch"

// SetupLogger installs a slog default logger that emits exactly the field
// set and shape spec §6 requires, at the LOG_LEVEL-derived level given.
func SetupLogger(level string) {
	handler := &jsonHandler{level: parseLevel(level)}
	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// jsonHandler wraps slog.JSONHandler, renaming its default keys to the
// {level, name, message, time} shape and formatting time as ISO-8601 UTC
// with a literal "Z" suffix instead of slog's default "+00:00" offset.
type jsonHandler struct {
	level slog.Level
	inner *slog.JSONHandler
}

func (h *jsonHandler) ensureInner() *slog.JSONHandler {
	if h.inner == nil {
		h.inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       h.level,
			ReplaceAttr: replaceAttr,
		})
	}
	return h.inner
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.MessageKey:
		a.Key = "message"
	case slog.TimeKey:
		a.Key = "time"
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.UTC().Format("2006-01-02T15:04:05.000Z"))
		}
	case slog.LevelKey:
		// leave as "level"
	}
	return a
}

func (h *jsonHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *jsonHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.String("name", loggerName))
	return h.ensureInner().Handle(ctx, r)
}

func (h *jsonHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &jsonHandler{level: h.level, inner: h.ensureInner().WithAttrs(attrs).(*slog.JSONHandler)}
}

func (h *jsonHandler) WithGroup(name string) slog.Handler {
	return &jsonHandler{level: h.level, inner: h.ensureInner().WithGroup(name).(*slog.JSONHandler)}
}
