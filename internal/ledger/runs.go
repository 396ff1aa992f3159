package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/factorydata/internal/registry"
	"github.com/roach88/factorydata/internal/tlv"
)

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded container.
type Run struct {
	ID         string      `json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	BinaryPath string      `json:"binary_path"`
	Digest     string      `json:"digest"`
	EntryCount int         `json:"entry_count"`
	Entries    []tlv.Entry `json:"-"`
}

// Record stores a run. ID and CreatedAt are assigned by the ledger; an empty
// Digest is computed from the entries.
func (l *Ledger) Record(ctx context.Context, run Run) (Run, error) {
	run.ID = l.ids.NewID()
	run.CreatedAt = l.clock.Now().UTC()
	run.EntryCount = len(run.Entries)
	if run.Digest == "" {
		run.Digest = Digest(run.Entries)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, binary_path, digest, entry_count)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.CreatedAt.Format(timeLayout), run.BinaryPath, run.Digest, run.EntryCount)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	for _, e := range run.Entries {
		value := e.Value
		if value == nil {
			value = []byte{}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO entries (run_id, param_id, name, kind, value)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, e.ID, e.Name, e.Kind.String(), value)
		if err != nil {
			return Run{}, fmt.Errorf("record entry %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

// Runs lists recorded runs, newest first. A limit of zero or less lists all.
// Entries are not loaded.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, created_at, binary_path, digest, entry_count
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return scanRuns(rows)
}

// Get returns one run with its entries.
func (l *Ledger) Get(ctx context.Context, id string) (Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, created_at, binary_path, digest, entry_count
		FROM runs
		WHERE id = ?
	`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("run %s: %w", id, sql.ErrNoRows)
	}

	run := runs[0]
	run.Entries, err = l.Entries(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// Entries returns the entries of a run in ascending parameter id order.
func (l *Ledger) Entries(ctx context.Context, runID string) ([]tlv.Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT param_id, name, kind, value
		FROM entries
		WHERE run_id = ?
		ORDER BY param_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []tlv.Entry{}
	for rows.Next() {
		var (
			e    tlv.Entry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.Name, &kind, &e.Value); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Kind, err = registry.ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// FindSerial lists the runs that wrote the given SERIAL_NUMBER, newest
// first.
func (l *Ledger) FindSerial(ctx context.Context, serial string) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT r.id, r.created_at, r.binary_path, r.digest, r.entry_count
		FROM runs r
		JOIN entries e ON e.run_id = r.id
		WHERE e.name = 'SERIAL_NUMBER' AND e.value = ?
		ORDER BY r.created_at DESC, r.rowid DESC
	`, []byte(serial))
	if err != nil {
		return nil, fmt.Errorf("query serial: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &created, &r.BinaryPath, &r.Digest, &r.EntryCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		t, err := time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("run %s: bad timestamp %q: %w", r.ID, created, err)
		}
		r.CreatedAt = t.UTC()
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
