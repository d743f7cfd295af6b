package lifecycle

import (
	"time"

	"github.com/giantswarm/simenv/internal/variant"
)

// Status is the reported outcome of a variant.
type Status int

// Statuses. StatusIgnored is reported for methods that were never expanded.
const (
	StatusPassed Status = iota
	StatusFailed
	StatusSkipped
	StatusIgnored
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusIgnored:
		return "ignored"
	}
	return "unknown"
}

// Result is the outcome of one variant.
type Result struct {
	Identity variant.Identity
	Name     string
	Status   Status
	// Err is nil for passed variants; for skipped variants it wraps
	// ErrAssumptionViolated and the reason.
	Err error
	// States lists every state entered, ending in Done, Failed or Skipped.
	States []State
	// Diagnostics are non-fatal observations, such as an interrupted thread.
	Diagnostics   []string
	EnvironmentID string
	Duration      time.Duration
}

// Final returns the terminal state, or Selecting when none was recorded.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return Selecting
	}
	return r.States[len(r.States)-1]
}

func (r *Result) enter(s State) { r.States = append(r.States, s) }
