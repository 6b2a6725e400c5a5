// Package benchdb stores benchmark runs in a local SQLite database so a
// plot can overlay a baseline run next to fresh results.
//
// The driver is selected at build time: pure Go by default, CGO SQLite
// with -tags cgo_sqlite.
package benchdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chartproof/chartproof/core/bench"
	apperrors "github.com/chartproof/chartproof/core/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	label       TEXT NOT NULL,
	imported_at TEXT NOT NULL,
	source_path TEXT NOT NULL,
	host_json   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS measurements (
	run_id           INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	operation        TEXT NOT NULL,
	map_type         TEXT NOT NULL,
	key_order        TEXT NOT NULL,
	size             INTEGER NOT NULL,
	time_per_item_ns REAL NOT NULL,
	cpu_time_ns      REAL NOT NULL,
	items_per_second REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_measurements_run ON measurements(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
`

// DB is an open run-history database.
type DB struct {
	db *sql.DB
}

// RunInfo describes one stored run.
type RunInfo struct {
	ID           int64
	Label        string
	ImportedAt   time.Time
	SourcePath   string
	Host         bench.Context
	Measurements int
}

// DriverInfo reports which SQLite driver this binary was built with.
func DriverInfo() string {
	return fmt.Sprintf("%s (%s)", driverName, driverType)
}

// Open opens (creating if needed) the database at path and applies the
// schema. Pragmas are applied via Exec so they work with either driver.
func Open(path string) (*DB, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// ImportRun stores a parsed results file as a labeled run and returns the
// new run id.
func (d *DB) ImportRun(ctx context.Context, label, sourcePath string, res *bench.Results) (int64, error) {
	hostJSON, err := json.Marshal(res.Context)
	if err != nil {
		return 0, fmt.Errorf("encoding host context: %w", err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (label, imported_at, source_path, host_json) VALUES (?, ?, ?, ?)`,
		label, time.Now().UTC().Format(time.RFC3339), sourcePath, string(hostJSON))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (run_id, operation, map_type, key_order, size, time_per_item_ns, cpu_time_ns, items_per_second)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range res.Measurements {
		if _, err := stmt.ExecContext(ctx, runID, m.Operation, m.MapType, m.KeyOrder,
			m.Size, m.TimePerItemNS, m.CPUTimeNS, m.ItemsPerSecond); err != nil {
			return 0, fmt.Errorf("inserting measurement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns all stored runs, newest first.
func (d *DB) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT r.id, r.label, r.imported_at, r.source_path, r.host_json,
		       (SELECT COUNT(*) FROM measurements m WHERE m.run_id = r.id)
		FROM runs r ORDER BY r.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var importedAt, hostJSON string
		if err := rows.Scan(&info.ID, &info.Label, &importedAt, &info.SourcePath, &hostJSON, &info.Measurements); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, importedAt); err == nil {
			info.ImportedAt = t
		}
		if err := json.Unmarshal([]byte(hostJSON), &info.Host); err != nil {
			return nil, fmt.Errorf("decoding host context: %w", err)
		}
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// LoadRun returns the measurements of the newest run with the given label.
func (d *DB) LoadRun(ctx context.Context, label string) ([]bench.Measurement, error) {
	var runID int64
	err := d.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE label = ? ORDER BY id DESC LIMIT 1`, label).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFound("run", label)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run %q: %w", label, err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT operation, map_type, key_order, size, time_per_item_ns, cpu_time_ns, items_per_second
		FROM measurements WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	var ms []bench.Measurement
	for rows.Next() {
		var m bench.Measurement
		if err := rows.Scan(&m.Operation, &m.MapType, &m.KeyOrder, &m.Size,
			&m.TimePerItemNS, &m.CPUTimeNS, &m.ItemsPerSecond); err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}
