package storage

import "time"

// Attempt is one reconciliation attempt against a ledger transaction:
// how many candidates the matcher produced, whether a match was applied,
// and the candidate detail strings shown to the operator.
type Attempt struct {
	ID                int64     `json:"id"`
	RunID             int64     `json:"run_id"`
	TransactionID     string    `json:"transaction_id"`
	TransactionDate   time.Time `json:"transaction_date"`
	TransactionAmount float64   `json:"transaction_amount"`
	CandidateCount    int       `json:"candidate_count"`
	Applied           bool      `json:"applied"`
	DryRun            bool      `json:"dry_run"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	AttemptedAt       time.Time `json:"attempted_at"`

	// Candidate detail strings, stored as JSON in one column.
	CandidateDetails []string `json:"candidate_details"`
}

// Run is the bookkeeping record of one reconciliation pass.
type Run struct {
	ID               int64  `json:"id"`
	StartedAt        string `json:"started_at"`
	CompletedAt      string `json:"completed_at,omitempty"`
	FilterText       string `json:"filter_text"`
	ExactMatch       bool   `json:"exact_match"`
	DryRun           bool   `json:"dry_run"`
	TransactionsSeen int    `json:"transactions_seen"`
	MatchedCount     int    `json:"matched_count"`
	AppliedCount     int    `json:"applied_count"`
	ErrorCount       int    `json:"error_count"`
	Status           string `json:"status"`
}

// RunTotals carries a finished pass's counters into CompleteRun.
type RunTotals struct {
	TransactionsSeen int
	MatchedCount     int
	AppliedCount     int
	ErrorCount       int
}

// Stats contains aggregate statistics over the audit trail.
type Stats struct {
	TotalAttempts      int     `json:"total_attempts"`
	AppliedCount       int     `json:"applied_count"`
	NoMatchCount       int     `json:"no_match_count"`
	AmbiguousCount     int     `json:"ambiguous_count"`
	ErrorCount         int     `json:"error_count"`
	TotalAppliedAmount float64 `json:"total_applied_amount"`
}
