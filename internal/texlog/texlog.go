// Package texlog holds the package-level *slog.Logger the engine's
// components log diagnostic traces through — file opens, budget
// sweeps, lookup misses — mirroring the std::cerr traces in the
// original texfile.cpp without hardcoding a destination.
package texlog

import (
	"io"
	"log/slog"
	"sync"
)

var (
	mu      sync.RWMutex
	current = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// SetDefault replaces the package-level logger used by components
// that were not given an explicit one. Passing nil restores the
// discarding default.
func SetDefault(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	current = l
}

// Default returns the current package-level logger.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
