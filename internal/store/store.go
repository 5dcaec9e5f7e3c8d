package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/multierr"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a session or match is not in the journal.
var ErrNotFound = errors.New("store: not found")

// connParams are applied by the driver to every pooled connection.
// busy_timeout covers the cli reading a journal a running server writes.
var connParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// migration upgrades the journal from version-1 to version. Versions are
// tracked in PRAGMA user_version; a fresh file starts at 0.
type migration struct {
	version int
	stmts   []string
}

var migrations = []migration{
	{version: 1, stmts: []string{
		`CREATE INDEX IF NOT EXISTS idx_matches_matched_at ON matches(matched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_opened_at ON sessions(opened_at)`,
	}},
}

// Store is the SQLite session journal: one row per connection and one per
// completed match.
type Store struct {
	db *sql.DB
}

// Open opens the journal at path, creating it when absent, and brings
// its schema up to date. Opening an up to date journal changes nothing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+connParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One writer at a time; the journal goroutine is the only one anyway.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := prepare(ctx, db); err != nil {
		return nil, multierr.Append(fmt.Errorf("store: open %s: %w", path, err), db.Close())
	}
	return &Store{db: db}, nil
}

func prepare(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := migrate(ctx, db, m); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	return nil
}

// migrate runs one step and bumps user_version in the same transaction.
func migrate(ctx context.Context, db *sql.DB, m migration) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()
	for _, stmt := range m.stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return err
	}
	return tx.Commit()
}

// Close closes the database. A zero Store closes cleanly.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// pragma reads back one PRAGMA value as text.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("store: pragma %s: %w", name, err)
	}
	return value, nil
}
