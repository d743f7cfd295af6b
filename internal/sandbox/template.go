package sandbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/giantswarm/simenv/internal/fileutil"
	"github.com/giantswarm/simenv/internal/platform"
)

// templatePath returns the platform template database for v under dir.
func templatePath(dir string, v platform.Version) string {
	return filepath.Join(dir, fmt.Sprintf("platform-%d.db", v.Level))
}

// ensureTemplate builds the template database for v unless it already exists.
// Building is serialized across processes with a lock file beside the
// template, and the finished file is moved into place atomically so readers
// never see a partial template.
func ensureTemplate(ctx context.Context, dir string, v platform.Version, log *slog.Logger) (string, error) {
	path := templatePath(dir, v)

	if ok, err := fileutil.Exists(path); err != nil {
		return "", err
	} else if ok {
		return path, nil
	}

	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	unlock, err := lockTemplate(ctx, path, log)
	if err != nil {
		return "", err
	}
	defer unlock()

	// Another process may have built it while we waited.
	if ok, err := fileutil.Exists(path); err != nil {
		return "", err
	} else if ok {
		return path, nil
	}

	tmp := path + ".building"
	if err := buildTemplate(ctx, tmp, v); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("install template: %w", err)
	}
	log.Debug("built platform template", "level", v.Level, "path", path)
	return path, nil
}

// buildTemplate writes a fresh template database at path. The template uses
// the rollback journal so the single file is complete once closed.
func buildTemplate(ctx context.Context, path string, v platform.Version) (retErr error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(DELETE)")
	if err != nil {
		return fmt.Errorf("open template %s: %w", path, err)
	}
	defer func() {
		if err := db.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("close template: %w", err)
		}
	}()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS state`); err != nil {
		return fmt.Errorf("reset template: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	rows := [][2]string{
		{"level", strconv.Itoa(v.Level)},
		{"codename", v.Codename},
	}
	for _, r := range rows {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO state (scope, name, value, system) VALUES (?, ?, ?, 1)`,
			ScopeSystem, r[0], r[1]); err != nil {
			return fmt.Errorf("seed template: %w", err)
		}
	}
	return nil
}
