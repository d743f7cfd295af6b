package simenv

import (
	"log/slog"

	"github.com/giantswarm/simenv/internal/core"
)

// SetLogger replaces the package-level logger used by simenv.
// The provided logger should already have any desired attributes; simenv
// does not add more.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached. Call
// SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with other simenv operations. For
// a strict happens-before guarantee, call it before starting goroutines that
// use the library (e.g., in TestMain before m.Run).
//
// Example:
//
//	simenv.SetLogger(myLogger.With("component", "simenv"))
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
