// Package logging provides config-driven categorized logging for keygrid.
// Every category is a named child of one zap logger that writes to stderr,
// so stdout carries nothing but generated layout text.
package logging

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI startup and teardown
	CategoryConfig   Category = "config"   // Layout config load/validate
	CategoryEmit     Category = "emit"     // LAYOUT matrix generation
	CategoryWatch    Category = "watch"    // Config file watcher
	CategoryDebounce Category = "debounce" // Debounce trace replay
)

// Options mirrors config.LoggingConfig without importing it.
type Options struct {
	Level           string                     // debug, info, warn, error
	Format          string                     // console, json
	Verbose         bool                       // forces debug level
	CategoryEnabled func(category string) bool // nil enables every category
	OutputPath      string                     // defaults to stderr
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	enabled func(category string) bool
)

// New builds a zap logger for opts.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Format) {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	out := opts.OutputPath
	if out == "" {
		out = "stderr"
	}
	cfg.OutputPaths = []string{out}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// Initialize builds the process-wide logger. Should be called once at
// startup; until then every category logs to a no-op logger.
func Initialize(opts Options) error {
	logger, err := New(opts)
	if err != nil {
		return err
	}
	Install(logger, opts.CategoryEnabled)
	return nil
}

// Install replaces the process-wide logger and the category filter. A nil
// filter enables every category. Tests use it with zaptest or observer
// loggers.
func Install(logger *zap.Logger, categoryEnabled func(category string) bool) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mu.Lock()
	base = logger
	enabled = categoryEnabled
	mu.Unlock()
}

// Get returns the logger for a category. Disabled categories get a no-op.
func Get(category Category) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if enabled != nil && !enabled(string(category)) {
		return zap.NewNop()
	}
	return base.Named(string(category))
}

// Sync flushes buffered entries. Errors from syncing a terminal are
// expected and ignored.
func Sync() {
	mu.RLock()
	logger := base
	mu.RUnlock()
	_ = logger.Sync()
}
