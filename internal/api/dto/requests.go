package dto

// StartPassRequest is the body of POST /api/passes.
type StartPassRequest struct {
	DryRun     bool   `json:"dry_run"`
	FilterText string `json:"filter_text"`
	ExactMatch bool   `json:"exact_match"`
	Verbose    bool   `json:"verbose"`
}
