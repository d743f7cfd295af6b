package core

import (
	"log/slog"
	"sync/atomic"
)

// Package logging state. custom holds the logger installed with SetLogger;
// derived caches slog.Default() with the component attribute until the next
// SetLogger call. Both are atomic so Logger never races with SetLogger.
var (
	custom  atomic.Pointer[slog.Logger]
	derived atomic.Pointer[slog.Logger]
)

// Logger returns the logger installed with SetLogger or, when none is,
// slog.Default() tagged component=simenv. Safe for concurrent use.
func Logger() *slog.Logger {
	if l := custom.Load(); l != nil {
		return l
	}
	if l := derived.Load(); l != nil {
		return l
	}
	l := slog.Default().With("component", "simenv")
	if !derived.CompareAndSwap(nil, l) {
		if cached := derived.Load(); cached != nil {
			return cached
		}
	}
	return l
}

// SetLogger installs l as the package logger. A nil l restores the default,
// re-derived from slog.Default() on the next Logger call so that a later
// slog.SetDefault is picked up.
func SetLogger(l *slog.Logger) {
	custom.Store(l)
	derived.Store(nil)
}
