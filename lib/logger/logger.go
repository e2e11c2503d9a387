// Package logger provides slog helpers shared by every kc2 subsystem: a logger
// carried on the context, and per-subsystem loggers whose level can be tuned
// independently through the environment.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Subsystem names a component that owns its own logger.
type Subsystem string

const (
	SubsystemAPI       Subsystem = "API"
	SubsystemImages    Subsystem = "IMAGES"
	SubsystemInstances Subsystem = "INSTANCES"
)

var subsystems = []Subsystem{SubsystemAPI, SubsystemImages, SubsystemInstances}

type ctxKey struct{}

// Config holds the default level and per-subsystem overrides.
type Config struct {
	DefaultLevel    slog.Level
	SubsystemLevels map[Subsystem]slog.Level
	Output          io.Writer
}

// NewConfig reads LOG_LEVEL and LOG_LEVEL_<SUBSYSTEM> from the environment.
func NewConfig() Config {
	cfg := Config{
		DefaultLevel:    parseLevel(os.Getenv("LOG_LEVEL"), slog.LevelInfo),
		SubsystemLevels: make(map[Subsystem]slog.Level),
		Output:          os.Stdout,
	}
	for _, s := range subsystems {
		if v := os.Getenv("LOG_LEVEL_" + string(s)); v != "" {
			cfg.SubsystemLevels[s] = parseLevel(v, cfg.DefaultLevel)
		}
	}
	return cfg
}

// LevelFor returns the effective level of a subsystem.
func (c Config) LevelFor(s Subsystem) slog.Level {
	if lvl, ok := c.SubsystemLevels[s]; ok {
		return lvl
	}
	return c.DefaultLevel
}

func parseLevel(s string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return fallback
	}
}

// NewSubsystemLogger builds a JSON logger for a subsystem. When otelHandler is
// non-nil, records are also sent to it so they reach the OTel log pipeline.
func NewSubsystemLogger(s Subsystem, cfg Config, otelHandler slog.Handler) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level := cfg.LevelFor(s)
	var h slog.Handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	if otelHandler != nil {
		h = &fanoutHandler{handlers: []slog.Handler{h, otelHandler}, level: level}
	}
	return slog.New(h).With("subsystem", string(s))
}

// Set holds one logger per subsystem, built from a shared Config.
type Set struct {
	loggers map[Subsystem]*slog.Logger
}

// NewSet builds a logger for every subsystem.
func NewSet(cfg Config, otelHandler slog.Handler) *Set {
	set := &Set{loggers: make(map[Subsystem]*slog.Logger, len(subsystems))}
	for _, s := range subsystems {
		set.loggers[s] = NewSubsystemLogger(s, cfg, otelHandler)
	}
	return set
}

// For returns the logger of subsystem s. A nil Set yields slog.Default().
func (set *Set) For(s Subsystem) *slog.Logger {
	if set == nil {
		return slog.Default()
	}
	if log, ok := set.loggers[s]; ok {
		return log
	}
	return slog.Default()
}

// AddToContext returns a copy of ctx carrying log.
func AddToContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return slog.Default()
}

// fanoutHandler sends each record to every handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
	level    slog.Level
}

func (f *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= f.level
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next, level: f.level}
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanoutHandler{handlers: next, level: f.level}
}
