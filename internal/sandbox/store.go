package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// Scopes used by the built-in hooks. System rows are written when a platform
// template is built and survive every reset.
const (
	ScopeSystem      = "system"
	ScopeApplication = "application"
	ScopeTest        = "test"
)

const schema = `
CREATE TABLE IF NOT EXISTS state (
	scope  TEXT NOT NULL,
	name   TEXT NOT NULL,
	value  TEXT NOT NULL,
	system INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (scope, name)
)`

// Store is the environment's state database.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// openStore opens the SQLite database at path. WAL keeps readers from
// blocking the single writer; the database is throwaway test state so
// synchronous=NORMAL is enough.
func openStore(path string, log *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db, log: log}, nil
}

// Put writes a non-system row, replacing any existing value.
func (s *Store) Put(ctx context.Context, scope, name, value string) error {
	const q = `INSERT INTO state (scope, name, value, system) VALUES (?, ?, ?, 0)
		ON CONFLICT (scope, name) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, q, scope, name, value); err != nil {
		return fmt.Errorf("put %s/%s: %w", scope, name, err)
	}
	return nil
}

// Get reads a row. ok is false when the row does not exist.
func (s *Store) Get(ctx context.Context, scope, name string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM state WHERE scope = ? AND name = ?`, scope, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", scope, name, err)
	}
	return value, true, nil
}

// Count returns the number of rows in scope.
func (s *Store) Count(ctx context.Context, scope string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM state WHERE scope = ?`, scope).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", scope, err)
	}
	return n, nil
}

// DeleteScope removes every non-system row in scope.
func (s *Store) DeleteScope(ctx context.Context, scope string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE scope = ? AND system = 0`, scope); err != nil {
		return fmt.Errorf("delete scope %s: %w", scope, err)
	}
	return nil
}

// Purge removes every non-system row in a single transaction.
func (s *Store) Purge(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	res, err := tx.ExecContext(ctx, `DELETE FROM state WHERE system = 0`)
	if err != nil {
		return fmt.Errorf("purge state: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purge transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		s.log.Debug("purge: cleanup complete", "rows", n)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// purgeProvider is the StateProvider that clears the store after a variant.
type purgeProvider struct {
	store *Store
}

func (p purgeProvider) Reset() {
	if err := p.store.Purge(context.Background()); err != nil {
		p.store.log.Warn("purge: reset state store", "error", err)
	}
}
