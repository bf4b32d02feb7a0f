// Package logx provides the structured logger used throughout the build
// and query paths. It wraps log/slog rather than introducing a bespoke
// logging abstraction, so callers can still reach for the standard
// slog.Logger API (handlers, levels, attribute groups) directly.
package logx

import (
	"log/slog"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	base    = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// SetDefault replaces the process-wide base logger. Intended for the CLI
// entry points to install a JSON handler or a different level.
func SetDefault(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

// Default returns the current process-wide base logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a logger scoped to a named subsystem, e.g.
// "chains", "search", "snapshot". All navpath packages log through a
// component-scoped logger rather than the bare default.
func WithComponent(name string) *slog.Logger {
	return Default().With(slog.String("component", name))
}
