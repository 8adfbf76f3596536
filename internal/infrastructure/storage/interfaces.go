package storage

// Repository defines the complete audit storage interface. It allows
// swapping implementations (SQLite today) and makes testing with mocks
// straightforward.
type Repository interface {
	AttemptRepository
	RunRepository
	Close() error
}

// AttemptRepository records the outcome of individual reconciliation
// attempts: one row per ledger transaction examined in a pass.
type AttemptRepository interface {
	// SaveAttempt appends an attempt record. The audit trail is
	// append-only; re-examining a transaction writes a new row.
	SaveAttempt(attempt *Attempt) error

	// ListAttempts returns the most recent attempts, newest first.
	ListAttempts(limit int) ([]Attempt, error)

	// GetAttemptsByTransaction returns every attempt recorded for a
	// ledger transaction, newest first.
	GetAttemptsByTransaction(transactionID string) ([]Attempt, error)

	// GetStats returns aggregate statistics over the audit trail.
	GetStats() (*Stats, error)
}

// RunRepository tracks reconciliation passes.
type RunRepository interface {
	// StartRun records the start of a pass and returns its id.
	StartRun(filterText string, exactMatch, dryRun bool) (int64, error)

	// CompleteRun records the totals of a finished pass.
	CompleteRun(runID int64, totals RunTotals) error

	// ListRuns returns recent passes, newest first.
	ListRuns(limit int) ([]Run, error)

	// GetRun retrieves a pass by id.
	GetRun(runID int64) (*Run, error)
}
