package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hupe1980/spmv/codec"
)

// samplesCodec encodes the samples column.
var samplesCodec = codec.Default

// ErrNotFound is returned by Get for an unknown run id.
var ErrNotFound = errors.New("history: run not found")

// Record is one benchmark run. Durations are integer microseconds.
type Record struct {
	RunID       string
	StartedAt   time.Time
	Input       string
	Fingerprint string
	Rows        int
	Cols        int
	NonZeros    int
	Kind        string
	Threads     int
	Policy      string
	Warmup      int
	Runs        int
	Samples     []int64
	Mean        int64
	StdDev      int64
	Min         int64
	Max         int64
}

// Query filters List. Zero values match everything.
type Query struct {
	Fingerprint string
	Threads     int
	Policy      string
	Since       time.Time
	// Limit caps the result, newest first. 0 means no limit.
	Limit int
}

// History is a sqlite backed run log.
type History struct {
	db   *sql.DB
	path string
	mu   sync.Mutex // Serializes writers
}

// Open opens or creates the database at path. ":memory:" is accepted.
func Open(path string) (*History, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	h := &History{db: db, path: path}
	if err := h.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: failed to initialize schema: %w", err)
	}
	return h, nil
}

func (h *History) initSchema() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id      TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			input       TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			rows        INTEGER NOT NULL,
			cols        INTEGER NOT NULL,
			nonzeros    INTEGER NOT NULL,
			kind        TEXT NOT NULL,
			threads     INTEGER NOT NULL,
			policy      TEXT NOT NULL,
			warmup      INTEGER NOT NULL,
			runs        INTEGER NOT NULL,
			samples     TEXT NOT NULL,
			mean_us     INTEGER NOT NULL,
			stddev_us   INTEGER NOT NULL,
			min_us      INTEGER NOT NULL,
			max_us      INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint, started_at);
	`)
	return err
}

// Path returns the database location.
func (h *History) Path() string { return h.path }

// Close closes the database.
func (h *History) Close() error {
	return h.db.Close()
}

// Append stores rec. A duplicate run id is an error.
func (h *History) Append(ctx context.Context, rec Record) error {
	if rec.RunID == "" {
		return errors.New("history: empty run id")
	}
	samples, err := samplesCodec.Marshal(rec.Samples)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, started_at, input, fingerprint,
			rows, cols, nonzeros, kind,
			threads, policy, warmup, runs,
			samples, mean_us, stddev_us, min_us, max_us
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.StartedAt.UnixMicro(), rec.Input, rec.Fingerprint,
		rec.Rows, rec.Cols, rec.NonZeros, rec.Kind,
		rec.Threads, rec.Policy, rec.Warmup, rec.Runs,
		string(samples), rec.Mean, rec.StdDev, rec.Min, rec.Max,
	)
	if err != nil {
		return fmt.Errorf("history: append %s: %w", rec.RunID, err)
	}
	return nil
}

const selectColumns = `
	SELECT run_id, started_at, input, fingerprint,
		rows, cols, nonzeros, kind,
		threads, policy, warmup, runs,
		samples, mean_us, stddev_us, min_us, max_us
	FROM runs`

// Get returns one run.
func (h *History) Get(ctx context.Context, runID string) (*Record, error) {
	row := h.db.QueryRowContext(ctx, selectColumns+` WHERE run_id = ?`, runID)
	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns matching runs, newest first.
func (h *History) List(ctx context.Context, q Query) ([]*Record, error) {
	var (
		where []string
		args  []any
	)
	if q.Fingerprint != "" {
		where = append(where, "fingerprint = ?")
		args = append(args, q.Fingerprint)
	}
	if q.Threads > 0 {
		where = append(where, "threads = ?")
		args = append(args, q.Threads)
	}
	if q.Policy != "" {
		where = append(where, "policy = ?")
		args = append(args, q.Policy)
	}
	if !q.Since.IsZero() {
		where = append(where, "started_at >= ?")
		args = append(args, q.Since.UnixMicro())
	}

	var sb strings.Builder
	sb.WriteString(selectColumns)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY started_at DESC, run_id")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := h.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes runs started before cutoff and reports how many were removed.
func (h *History) Delete(ctx context.Context, cutoff time.Time) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff.UnixMicro())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*Record, error) {
	var (
		rec     Record
		started int64
		samples string
	)
	err := s.Scan(
		&rec.RunID, &started, &rec.Input, &rec.Fingerprint,
		&rec.Rows, &rec.Cols, &rec.NonZeros, &rec.Kind,
		&rec.Threads, &rec.Policy, &rec.Warmup, &rec.Runs,
		&samples, &rec.Mean, &rec.StdDev, &rec.Min, &rec.Max,
	)
	if err != nil {
		return nil, err
	}
	rec.StartedAt = time.UnixMicro(started).UTC()
	if err := samplesCodec.Unmarshal([]byte(samples), &rec.Samples); err != nil {
		return nil, fmt.Errorf("history: run %s: bad samples: %w", rec.RunID, err)
	}
	return &rec, nil
}
