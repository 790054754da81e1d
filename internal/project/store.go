package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"writegeist/internal/config"
)

// DefaultMarkdown is the skeleton written when the project page is first
// accessed.
const DefaultMarkdown = "# My Project\n\n## Ideas-Notes\n\n## Setting\n\n## Full Outline\n\n## Characters"

// pageID is the fixed row id of the single project page.
const pageID = 1

const schema = `
CREATE TABLE IF NOT EXISTS project_pages (
    id INTEGER PRIMARY KEY,
    markdown TEXT NOT NULL
)`

// Store manages project page persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the project database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the project database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ctx = ensureContext(ctx)
	if err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, schema)
		return err
	}); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the project page markdown, inserting the default skeleton when
// no page exists yet.
func (s *Store) Load(ctx context.Context) (string, error) {
	ctx = ensureContext(ctx)
	var markdown string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT markdown FROM project_pages WHERE id = ?`, pageID,
		).Scan(&markdown)
	})
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.Save(ctx, DefaultMarkdown); err != nil {
			return "", err
		}
		return DefaultMarkdown, nil
	}
	if err != nil {
		return "", fmt.Errorf("load project page: %w", err)
	}
	return markdown, nil
}

// Save writes the project page markdown, creating the row when absent.
func (s *Store) Save(ctx context.Context, markdown string) error {
	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO project_pages (id, markdown) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET markdown = excluded.markdown`,
			pageID, markdown)
		return err
	})
	if err != nil {
		return fmt.Errorf("save project page: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
