package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for the reconciliation audit
// trail. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository.
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance backed by SQLite at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveAttempt appends one reconciliation attempt to the audit trail.
func (s *Storage) SaveAttempt(attempt *Attempt) error {
	detailsJSON, _ := json.Marshal(attempt.CandidateDetails)

	query := `
	INSERT INTO reconciliation_attempts
	(run_id, transaction_id, transaction_date, transaction_amount,
	 candidate_count, applied, dry_run, error_message, attempted_at, details_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		attempt.RunID,
		attempt.TransactionID,
		attempt.TransactionDate,
		attempt.TransactionAmount,
		attempt.CandidateCount,
		attempt.Applied,
		attempt.DryRun,
		attempt.ErrorMessage,
		attempt.AttemptedAt,
		string(detailsJSON),
	)
	if err != nil {
		return err
	}

	if id, err := result.LastInsertId(); err == nil {
		attempt.ID = id
	}
	return nil
}

// ListAttempts returns the most recent attempts, newest first.
func (s *Storage) ListAttempts(limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(attemptColumns+`
	FROM reconciliation_attempts
	ORDER BY attempted_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanAttempts(rows)
}

// GetAttemptsByTransaction returns every attempt recorded for one
// ledger transaction, newest first.
func (s *Storage) GetAttemptsByTransaction(transactionID string) ([]Attempt, error) {
	rows, err := s.db.Query(attemptColumns+`
	FROM reconciliation_attempts
	WHERE transaction_id = ?
	ORDER BY attempted_at DESC, id DESC`, transactionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanAttempts(rows)
}

const attemptColumns = `
	SELECT id, run_id, transaction_id, transaction_date, transaction_amount,
	       candidate_count, applied, dry_run, COALESCE(error_message, ''),
	       attempted_at, COALESCE(details_json, '')`

func scanAttempts(rows *sql.Rows) ([]Attempt, error) {
	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var detailsJSON string
		if err := rows.Scan(
			&a.ID,
			&a.RunID,
			&a.TransactionID,
			&a.TransactionDate,
			&a.TransactionAmount,
			&a.CandidateCount,
			&a.Applied,
			&a.DryRun,
			&a.ErrorMessage,
			&a.AttemptedAt,
			&detailsJSON,
		); err != nil {
			return nil, err
		}
		if detailsJSON != "" {
			_ = json.Unmarshal([]byte(detailsJSON), &a.CandidateDetails)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// GetStats returns aggregate statistics over the audit trail.
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{}

	query := `
	SELECT
		COUNT(*) as total,
		COUNT(CASE WHEN applied = 1 THEN 1 END) as applied,
		COUNT(CASE WHEN candidate_count = 0 THEN 1 END) as no_match,
		COUNT(CASE WHEN candidate_count > 1 THEN 1 END) as ambiguous,
		COUNT(CASE WHEN error_message IS NOT NULL AND error_message != '' THEN 1 END) as errored,
		COALESCE(SUM(CASE WHEN applied = 1 THEN transaction_amount ELSE 0 END), 0) as applied_amount
	FROM reconciliation_attempts
	`

	err := s.db.QueryRow(query).Scan(
		&stats.TotalAttempts,
		&stats.AppliedCount,
		&stats.NoMatchCount,
		&stats.AmbiguousCount,
		&stats.ErrorCount,
		&stats.TotalAppliedAmount,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// StartRun records the start of a reconciliation pass.
func (s *Storage) StartRun(filterText string, exactMatch, dryRun bool) (int64, error) {
	result, err := s.db.Exec(`
	INSERT INTO recon_runs (filter_text, exact_match, dry_run, status)
	VALUES (?, ?, ?, 'running')`,
		filterText, exactMatch, dryRun)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// CompleteRun records the totals of a finished pass.
func (s *Storage) CompleteRun(runID int64, totals RunTotals) error {
	_, err := s.db.Exec(`
	UPDATE recon_runs
	SET completed_at = CURRENT_TIMESTAMP,
	    transactions_seen = ?,
	    matched_count = ?,
	    applied_count = ?,
	    error_count = ?,
	    status = 'completed'
	WHERE id = ?`,
		totals.TransactionsSeen,
		totals.MatchedCount,
		totals.AppliedCount,
		totals.ErrorCount,
		runID)
	return err
}

// ListRuns returns recent passes, newest first.
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(runColumns+`
	FROM recon_runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a pass by id.
func (s *Storage) GetRun(runID int64) (*Run, error) {
	row := s.db.QueryRow(runColumns+` FROM recon_runs WHERE id = ?`, runID)
	run, err := scanRun(row.Scan)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

const runColumns = `
	SELECT id, started_at, COALESCE(completed_at, ''), COALESCE(filter_text, ''),
	       exact_match, dry_run, transactions_seen, matched_count,
	       applied_count, error_count, status`

func scanRun(scan func(dest ...any) error) (Run, error) {
	var run Run
	err := scan(
		&run.ID,
		&run.StartedAt,
		&run.CompletedAt,
		&run.FilterText,
		&run.ExactMatch,
		&run.DryRun,
		&run.TransactionsSeen,
		&run.MatchedCount,
		&run.AppliedCount,
		&run.ErrorCount,
		&run.Status,
	)
	return run, err
}
