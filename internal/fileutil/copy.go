package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/simenv/internal/sentinel"
)

// ErrEmptyPath is returned by CopyAtomic when src or dst is empty.
const ErrEmptyPath = sentinel.Error("copy path must not be empty")

// CopyAtomic copies src to dst through a temp file in dst's directory that is
// fsynced and renamed into place, so concurrent readers never observe a
// partially written file. Parent directories of dst are created as needed.
func CopyAtomic(src, dst string, mode os.FileMode) (retErr error) {
	if src == "" || dst == "" {
		return ErrEmptyPath
	}
	if err := EnsureDir(filepath.Dir(dst)); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	in, err := os.Open(src) //nolint:gosec // G304: paths are built by simenv, not user input
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close source: %w", closeErr)
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-copy-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename temp file to destination: %w", err)
	}
	return nil
}
