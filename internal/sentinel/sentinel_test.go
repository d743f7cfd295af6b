package sentinel

import (
	"errors"
	"fmt"
	"testing"
)

const (
	errCategory = Error("environment not supported")
	errOther    = Error("runner is shutting down")
)

// categorized is a typed error that reports a category sentinel, the way
// the unsupported-platform and manifest errors do.
type categorized struct{ msg string }

func (e *categorized) Error() string        { return e.msg }
func (e *categorized) Is(target error) bool { return target == errCategory }

func TestError_Matching(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err    error
		target error
		want   bool
	}{
		"itself":               {err: errCategory, target: errCategory, want: true},
		"wrapped":              {err: fmt.Errorf("select: %w", errCategory), target: errCategory, want: true},
		"joined":               {err: errors.Join(errors.New("x"), errCategory), target: errCategory, want: true},
		"typed category":       {err: fmt.Errorf("run: %w", &categorized{msg: "level 20"}), target: errCategory, want: true},
		"other sentinel":       {err: errCategory, target: errOther, want: false},
		"same text plain":      {err: errCategory, target: errors.New(string(errCategory)), want: false},
		"plain same text Is":   {err: errors.New(string(errCategory)), target: errCategory, want: false},
		"typed other category": {err: &categorized{msg: "level 20"}, target: errOther, want: false},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := errors.Is(tc.err, tc.target); got != tc.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tc.err, tc.target, got, tc.want)
			}
		})
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	var err error = errCategory
	if got := err.Error(); got != "environment not supported" {
		t.Errorf("Error() = %q", got)
	}
}
