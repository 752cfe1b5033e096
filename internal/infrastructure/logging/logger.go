package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
)

// ServiceName is the value of the "service" attribute.
const ServiceName = "gramjyoti"

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// Logger is a slog.Logger carrying the service, version and site attributes.
// Safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New returns a Logger writing to cfg.Output ("stderr", otherwise stdout).
func New(cfg config.LoggingConfig, version, siteID string) *Logger {
	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Output, "stderr") {
		w = os.Stderr
	}
	return NewWithWriter(w, cfg, version, siteID)
}

// NewWithWriter is New with an explicit destination. Tests pass a buffer.
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, version, siteID string) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	fields := []slog.Attr{slog.String("service", ServiceName), slog.String("version", version)}
	if siteID != "" {
		fields = append(fields, slog.String("site_id", siteID))
	}
	return &Logger{Logger: slog.New(h.WithAttrs(fields))}
}

// parseLevel maps a config level name to slog. Unknown names mean info.
func parseLevel(name string) slog.Level {
	if lvl, ok := levels[strings.ToLower(name)]; ok {
		return lvl
	}
	return slog.LevelInfo
}

// With returns a child Logger with extra attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component tags a child Logger with component=name, e.g. "control" or "journal".
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// Default is the bootstrap logger used until config.yaml has been read.
func Default() *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, "dev", "")
}
