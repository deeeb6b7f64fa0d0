// Package logging provides categorized console logging for dagr, backed by
// zap the same way the teacher CLI wires zap into its root command's
// PersistentPreRunE. Unlike a server process, dagr is a one-shot-per-command
// CLI, so there is no background file-tailing system here — just a
// category-tagged wrapper over a single process-wide *zap.Logger.
package logging

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies which DAGr subsystem emitted a log line.
type Category string

const (
	CategoryBoot     Category = "boot"
	CategoryCalendar Category = "calendar"
	CategoryGraph    Category = "graph"
	CategoryCPM      Category = "cpm"
	CategoryLeveler  Category = "leveler"
	CategorySelector Category = "selector"
	CategoryState    Category = "state"
	CategoryCLI      Category = "cli"
)

var (
	mu     sync.RWMutex
	base   *zap.Logger
	debug  bool
)

// Initialize builds the process-wide logger. verbose enables debug level,
// matching the teacher's `verbose` root flag toggling zapcore.DebugLevel.
func Initialize(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	base = l
	debug = verbose
	mu.Unlock()
	return nil
}

// Sync flushes any buffered log entries. Safe to call even if Initialize
// was never invoked (e.g. library callers, unit tests).
func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}

// Get returns a logger scoped to category. If Initialize hasn't run (as in
// most unit tests) it falls back to a no-op logger rather than panicking.
func Get(category Category) *zap.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l == nil {
		l = zap.NewNop()
	}
	return l.With(zap.String("category", string(category)))
}

// IsDebug reports whether verbose logging is enabled.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debug
}

// NewOperationID mints a short correlation id for one CLI invocation,
// grounded on the teacher's campaign-id pattern
// (uuid.New().String()[:8]). No code in dagr calls it, and the loggers
// returned by Get carry no operation id field.
func NewOperationID() string {
	return uuid.New().String()[:8]
}
