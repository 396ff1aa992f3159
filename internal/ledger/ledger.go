package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - initial schema
// 1 - index on entries(name, value) for serial number lookups
const currentSchemaVersion = 1

// Clock supplies run timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies run ids.
type IDGenerator interface {
	NewID() string
}

// UUIDv7 generates time-sortable run ids.
type UUIDv7 struct{}

// NewID returns a hyphenated UUIDv7.
func (UUIDv7) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithIDs replaces the UUIDv7 run id generator.
func WithIDs(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// Ledger is an open provisioning history.
type Ledger struct {
	db    *sql.DB
	clock Clock
	ids   IDGenerator
}

// Open creates or opens the ledger database at path and applies the schema
// and any pending migrations.
func Open(path string, opts ...Option) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect ledger %s: %w", path, err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	l := &Ledger{db: db, clock: systemClock{}, ids: UUIDv7{}}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// OpenExisting opens a ledger that must already exist. Readers use it so a
// mistyped path is an error instead of a new, empty ledger. A missing file
// yields an error matching fs.ErrNotExist.
func OpenExisting(path string, opts ...Option) (*Ledger, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open ledger: %s is a directory", path)
	}
	return Open(path, opts...)
}

// Close closes the database.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return runMigrations(db)
}

// runMigrations applies incremental migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_entries_name_value
		ON entries(name, value)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// schemaVersion reports the stored user_version.
func (l *Ledger) schemaVersion() (int, error) {
	var v int
	err := l.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}
