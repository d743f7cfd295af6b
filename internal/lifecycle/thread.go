package lifecycle

import (
	"context"
	"sync/atomic"

	"github.com/giantswarm/simenv/internal/sandbox"
)

var threadSeq atomic.Uint64

// Thread is the identity of the goroutine invoking a test body, with an
// interrupt flag the body or its collaborators may raise.
type Thread struct {
	id          sandbox.ThreadID
	interrupted atomic.Bool
}

// NewThread returns a Thread with a process-unique id.
func NewThread() *Thread {
	return &Thread{id: sandbox.ThreadID(threadSeq.Add(1))}
}

// ID returns the thread id.
func (t *Thread) ID() sandbox.ThreadID { return t.id }

// Interrupt raises the interrupt flag.
func (t *Thread) Interrupt() { t.interrupted.Store(true) }

// IsInterrupted reports the flag without clearing it.
func (t *Thread) IsInterrupted() bool { return t.interrupted.Load() }

// Interrupted reports the flag and clears it.
func (t *Thread) Interrupted() bool { return t.interrupted.Swap(false) }

type threadKey struct{}

// WithThread returns a context carrying t.
func WithThread(ctx context.Context, t *Thread) context.Context {
	return context.WithValue(ctx, threadKey{}, t)
}

// ThreadFrom returns the thread carried by ctx, or nil.
func ThreadFrom(ctx context.Context) *Thread {
	t, _ := ctx.Value(threadKey{}).(*Thread)
	return t
}

// withActiveThread binds id as env's active thread for the duration of fn and
// restores the previous binding afterwards, including when fn panics.
func withActiveThread(env sandbox.Environment, id sandbox.ThreadID, fn func()) {
	prev := env.ActiveThread()
	env.SetActiveThread(id)
	defer env.SetActiveThread(prev)
	fn()
}
