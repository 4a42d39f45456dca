package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"employee-reports/internal/model"
	"employee-reports/pkg/utils"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store records report runs in a sqlite database.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		output_path TEXT,
		metrics TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		code TEXT,
		error_message TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS department_totals (
		run_id TEXT,
		position INTEGER,
		department TEXT,
		employees INTEGER,
		total_hours INTEGER,
		total_payout INTEGER,
		PRIMARY KEY (run_id, department)
	);`,
}

// Open connects to the database at path and creates missing tables.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a new pending run
func (s *Store) SaveRun(ctx context.Context, runID string, spec model.ReportJobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, string(specJSON), model.StatusPending, now, now)
	return err
}

// UpdateRunStatus updates run status
func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), runID)
	return err
}

// SaveRunError records an error for a run
func (s *Store) SaveRunError(ctx context.Context, runID string, runErr error) error {
	if runErr == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_errors (run_id, code, error_message, created_at) VALUES (?, ?, ?, ?)`,
		runID, utils.CodeOf(runErr), runErr.Error(), time.Now().UTC())
	return err
}

// SaveRunOutput stores the artifact path and final metrics of a run.
func (s *Store) SaveRunOutput(ctx context.Context, runID, outputPath string, metrics model.RunMetrics) error {
	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET output_path = ?, metrics = ?, updated_at = ? WHERE id = ?`,
		outputPath, string(metricsJSON), time.Now().UTC(), runID)
	return err
}

// SaveDepartmentTotals replaces the department summary of a run.
func (s *Store) SaveDepartmentTotals(ctx context.Context, runID string, totals []model.DepartmentTotal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM department_totals WHERE run_id = ?`, runID); err != nil {
		return err
	}
	for i, t := range totals {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO department_totals (run_id, position, department, employees, total_hours, total_payout)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, i, t.Department, t.Employees, t.TotalHours, t.TotalPayout)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetRun fetches a run with its spec and metrics
func (s *Store) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, spec, status, output_path, metrics, created_at, updated_at FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, err
}

// ListRuns returns all runs, newest first
func (s *Store) ListRuns(ctx context.Context) ([]model.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, spec, status, output_path, metrics, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// RunErrors returns the errors recorded for a run, oldest first.
func (s *Store) RunErrors(ctx context.Context, runID string) ([]model.RunError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, code, error_message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RunError
	for rows.Next() {
		var e model.RunError
		if err := rows.Scan(&e.RunID, &e.Code, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DepartmentTotals returns the department summary of a run in report order.
func (s *Store) DepartmentTotals(ctx context.Context, runID string) ([]model.DepartmentTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT department, employees, total_hours, total_payout FROM department_totals
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.DepartmentTotal
	for rows.Next() {
		var t model.DepartmentTotal
		if err := rows.Scan(&t.Department, &t.Employees, &t.TotalHours, &t.TotalPayout); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.RunRecord, error) {
	var (
		run        model.RunRecord
		specJSON   string
		outputPath sql.NullString
		metrics    sql.NullString
	)
	if err := row.Scan(&run.ID, &specJSON, &run.Status, &outputPath, &metrics, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(specJSON), &run.Spec); err != nil {
		return nil, err
	}
	run.OutputPath = outputPath.String
	if metrics.Valid && metrics.String != "" {
		var m model.RunMetrics
		if err := json.Unmarshal([]byte(metrics.String), &m); err != nil {
			return nil, err
		}
		run.Metrics = &m
	}
	return &run, nil
}
