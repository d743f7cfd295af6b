package lifecycle

import (
	"fmt"
	"runtime/debug"

	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrAssumptionViolated marks a variant that cannot run here. Test bodies
// return it (wrapped) to skip themselves.
const ErrAssumptionViolated = sentinel.Error("assumption violated")

// SetupFailure reports an error in SettingUp.
type SetupFailure struct {
	Test string
	Err  error
}

func (e *SetupFailure) Error() string { return fmt.Sprintf("set up %s: %v", e.Test, e.Err) }
func (e *SetupFailure) Unwrap() error { return e.Err }

// InvocationFailure reports an error returned or raised by the test body.
type InvocationFailure struct {
	Test string
	Err  error
}

func (e *InvocationFailure) Error() string { return fmt.Sprintf("invoke %s: %v", e.Test, e.Err) }
func (e *InvocationFailure) Unwrap() error { return e.Err }

// TeardownFailure reports an error in TearingDown.
type TeardownFailure struct {
	Test string
	Err  error
}

func (e *TeardownFailure) Error() string { return fmt.Sprintf("tear down %s: %v", e.Test, e.Err) }
func (e *TeardownFailure) Unwrap() error { return e.Err }

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// safely runs fn and converts a panic into *PanicError.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
