// Package history persists benchmark runs in SQLite and compares them.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/weiihann/schemoor/harness"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded benchmark invocation.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Config    harness.Config
	Results   []*harness.Result
}

// NewRun stamps results with a fresh run ID.
func NewRun(startedAt time.Time, cfg harness.Config, results []*harness.Result) Run {
	return Run{
		ID:        uuid.New(),
		StartedAt: startedAt.UTC(),
		Config:    cfg,
		Results:   results,
	}
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, fmt.Errorf("connect history %s: %w", path, err)
	}

	// one writer; keeps pragmas on the single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()

			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()

		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Record stores a run and its results in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, iterations, rounds, warmup_rounds)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.StartedAt.UnixNano(),
		run.Config.Iterations,
		run.Config.Rounds,
		run.Config.WarmupRounds,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO results (
			run_id, seq, case_id, grp, variant, mode, raw_compiles, valid,
			iterations, rounds, min_ns, max_ns, median_ns, lo_ns, hi_ns,
			samples_ns, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare results: %w", err)
	}
	defer stmt.Close()

	for i, r := range run.Results {
		samples, err := marshalSamples(r.SamplesNs)
		if err != nil {
			return fmt.Errorf("encode samples of %s: %w", r.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			run.ID.String(), i, r.ID, r.Group, r.Variant, r.Mode,
			r.RawCompiles, r.Valid, r.Iterations, r.Rounds,
			r.MinNs, r.MaxNs, r.MedianNs, r.LoNs, r.HiNs, samples, r.ElapsedMs,
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", run.ID, err)
	}

	return nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, iterations, rounds, warmup_rounds
		 FROM runs
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []Run

	for rows.Next() {
		var (
			id      string
			started int64
			run     Run
		)

		err := rows.Scan(&id, &started,
			&run.Config.Iterations, &run.Config.Rounds, &run.Config.WarmupRounds)
		if err != nil {
			rows.Close()

			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.ID, err = uuid.Parse(id)
		if err != nil {
			rows.Close()

			return nil, fmt.Errorf("parse run id %q: %w", id, err)
		}

		run.StartedAt = time.Unix(0, started).UTC()
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		rows.Close()

		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	rows.Close()

	for i := range runs {
		results, err := s.results(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}

		runs[i].Results = results
	}

	return runs, nil
}

func (s *Store) results(ctx context.Context, runID uuid.UUID) ([]*harness.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT case_id, grp, variant, mode, raw_compiles, valid,
			iterations, rounds, min_ns, max_ns, median_ns, lo_ns, hi_ns,
			samples_ns, elapsed_ms
		 FROM results
		 WHERE run_id = ?
		 ORDER BY seq`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query results of %s: %w", runID, err)
	}
	defer rows.Close()

	var results []*harness.Result

	for rows.Next() {
		var (
			r       harness.Result
			samples string
		)

		err := rows.Scan(
			&r.ID, &r.Group, &r.Variant, &r.Mode, &r.RawCompiles, &r.Valid,
			&r.Iterations, &r.Rounds,
			&r.MinNs, &r.MaxNs, &r.MedianNs, &r.LoNs, &r.HiNs,
			&samples, &r.ElapsedMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan result of %s: %w", runID, err)
		}

		if err := json.Unmarshal([]byte(samples), &r.SamplesNs); err != nil {
			return nil, fmt.Errorf("decode samples of %s in %s: %w", r.ID, runID, err)
		}

		results = append(results, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results of %s: %w", runID, err)
	}

	return results, nil
}

// marshalSamples converts samples to JSON TEXT for storage; nil becomes [].
func marshalSamples(samples []float64) (string, error) {
	if samples == nil {
		samples = []float64{}
	}

	b, err := json.Marshal(samples)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
