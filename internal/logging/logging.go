// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Level     slog.Level
	Format    string
	Output    io.Writer
	AddSource bool
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stderr,
		AddSource: false,
	}
}

// Init installs a handler built from cfg as the slog default.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// ParseLevel accepts debug, info, warn/warning and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

func Info(msg string, args ...any)  { slog.Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Error(msg, args...) }

// ForComponent returns a logger tagged with component. The default handler
// is looked up on every record, so loggers created in package variables
// follow a later Init.
func ForComponent(component string) *slog.Logger {
	return slog.New(deferredHandler{}).With("component", component)
}

type deferredHandler struct {
	wrap func(slog.Handler) slog.Handler
}

func (h deferredHandler) handler() slog.Handler {
	base := slog.Default().Handler()
	if h.wrap == nil {
		return base
	}
	return h.wrap(base)
}

func (h deferredHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler().Enabled(ctx, level)
}

func (h deferredHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler().Handle(ctx, r)
}

func (h deferredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prev := h.wrap
	return deferredHandler{wrap: func(base slog.Handler) slog.Handler {
		if prev != nil {
			base = prev(base)
		}
		return base.WithAttrs(attrs)
	}}
}

func (h deferredHandler) WithGroup(name string) slog.Handler {
	prev := h.wrap
	return deferredHandler{wrap: func(base slog.Handler) slog.Handler {
		if prev != nil {
			base = prev(base)
		}
		return base.WithGroup(name)
	}}
}
