package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

const lockPollInterval = 50 * time.Millisecond

// lockTemplate takes the cross-process lock guarding the template at path.
// The returned unlock releases it; the lock file stays on disk so that a
// process that just acquired it keeps a valid lock.
func lockTemplate(ctx context.Context, path string, log *slog.Logger) (unlock func(), err error) {
	fl := flock.New(path + ".lock")

	start := time.Now()
	ok, err := fl.TryLockContext(ctx, lockPollInterval)
	switch {
	case err != nil:
		return nil, fmt.Errorf("lock template %s: %w", path, err)
	case !ok:
		return nil, fmt.Errorf("lock template %s: not acquired", path)
	}
	if waited := time.Since(start); waited > lockPollInterval {
		log.Debug("waited for template lock", "path", path, "waited", waited)
	}

	return func() {
		if err := fl.Close(); err != nil {
			log.Debug("release template lock", "path", fl.Path(), "error", err)
		}
	}, nil
}
