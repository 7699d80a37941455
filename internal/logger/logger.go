// Package logger provides a process-wide slog handle for pgdelta's CLI and
// introspection adapter. The core pipeline packages (lexer, parser, ir,
// differ, sqlgen, report) never import this package: they are pure
// functions over their arguments, per the spec's "no shared mutable state"
// concurrency rule.
package logger

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu     sync.RWMutex
	global *slog.Logger
	debug  bool
)

// SetGlobal installs the logger returned by Get and records the debug flag
// used to pick a level for the fallback logger.
func SetGlobal(l *slog.Logger, debugEnabled bool) {
	mu.Lock()
	defer mu.Unlock()
	global = l
	debug = debugEnabled
}

// Get returns the process logger, falling back to a stderr text handler
// when SetGlobal was never called.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()

	if global != nil {
		return global
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// IsDebug reports whether the last SetGlobal call enabled debug logging.
func IsDebug() bool {
	mu.RLock()
	defer mu.RUnlock()
	return debug
}