package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// AttemptResponse represents one reconciliation attempt in API
// responses.
type AttemptResponse struct {
	ID                int64    `json:"id"`
	RunID             int64    `json:"run_id"`
	TransactionID     string   `json:"transaction_id"`
	TransactionDate   string   `json:"transaction_date"`
	TransactionAmount float64  `json:"transaction_amount"`
	CandidateCount    int      `json:"candidate_count"`
	Applied           bool     `json:"applied"`
	DryRun            bool     `json:"dry_run"`
	ErrorMessage      string   `json:"error_message,omitempty"`
	AttemptedAt       string   `json:"attempted_at"`
	CandidateDetails  []string `json:"candidate_details,omitempty"`
}

// AttemptListResponse is returned when listing attempts.
type AttemptListResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
	Count    int               `json:"count"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
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

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	TotalAttempts      int     `json:"total_attempts"`
	AppliedCount       int     `json:"applied_count"`
	NoMatchCount       int     `json:"no_match_count"`
	AmbiguousCount     int     `json:"ambiguous_count"`
	ErrorCount         int     `json:"error_count"`
	TotalAppliedAmount float64 `json:"total_applied_amount"`
}

// StartPassResponse is returned when a pass job is accepted.
type StartPassResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// PassProgressResponse represents pass progress.
type PassProgressResponse struct {
	CurrentPhase string `json:"current_phase"`
	LastUpdate   string `json:"last_update"`
}

// PassResultResponse summarizes a finished pass.
type PassResultResponse struct {
	TransactionsSeen int `json:"transactions_seen"`
	SkippedTagged    int `json:"skipped_tagged"`
	MatchedCount     int `json:"matched_count"`
	AppliedCount     int `json:"applied_count"`
	NoMatchCount     int `json:"no_match_count"`
	AmbiguousCount   int `json:"ambiguous_count"`
	ErrorCount       int `json:"error_count"`
}

// PassJobResponse represents a pass job in API responses.
type PassJobResponse struct {
	JobID       string               `json:"job_id"`
	Status      string               `json:"status"`
	DryRun      bool                 `json:"dry_run"`
	FilterText  string               `json:"filter_text"`
	StartedAt   string               `json:"started_at"`
	CompletedAt *string              `json:"completed_at,omitempty"`
	Progress    PassProgressResponse `json:"progress"`
	Result      *PassResultResponse  `json:"result,omitempty"`
	Error       *string              `json:"error,omitempty"`
}

// PassListResponse is returned when listing pass jobs.
type PassListResponse struct {
	Jobs  []PassJobResponse `json:"jobs"`
	Count int               `json:"count"`
}

// MessageResponse is a simple informational response.
type MessageResponse struct {
	Message string `json:"message"`
}
