package reconcile

import (
	"time"

	"github.com/fireflyiii-tools/allegro-sync/internal/domain/ledger"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/payment"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

// Audit trail recording for the reconciliation pass. Recording failures
// are logged and swallowed; the audit trail never blocks reconciliation.

func (o *Orchestrator) startRun(opts Options) int64 {
	if o.repo == nil {
		return 0
	}
	runID, err := o.repo.StartRun(opts.FilterText, opts.ExactMatch, opts.DryRun)
	if err != nil {
		o.logger.Warn("Failed to start run tracking", "error", err)
		return 0
	}
	return runID
}

func (o *Orchestrator) completeRun(result *Result) {
	if o.repo == nil || result.RunID == 0 {
		return
	}
	err := o.repo.CompleteRun(result.RunID, storage.RunTotals{
		TransactionsSeen: result.TransactionsSeen,
		MatchedCount:     result.MatchedCount,
		AppliedCount:     result.AppliedCount,
		ErrorCount:       result.ErrorCount,
	})
	if err != nil {
		o.logger.Warn("Failed to complete run tracking", "run_id", result.RunID, "error", err)
	}
}

func (o *Orchestrator) recordAttempt(
	tx ledger.Transaction,
	candidates []payment.Simplified,
	applied bool,
	dryRun bool,
	errorMsg string,
	runID int64,
) {
	if o.repo == nil {
		return
	}

	details := make([]string, len(candidates))
	for i, c := range candidates {
		details[i] = c.Details
	}

	attempt := &storage.Attempt{
		RunID:             runID,
		TransactionID:     tx.ID,
		TransactionDate:   tx.Date,
		TransactionAmount: tx.Amount,
		CandidateCount:    len(candidates),
		Applied:           applied,
		DryRun:            dryRun,
		ErrorMessage:      errorMsg,
		AttemptedAt:       time.Now().UTC(),
		CandidateDetails:  details,
	}

	if err := o.repo.SaveAttempt(attempt); err != nil {
		o.logger.Warn("Failed to save attempt record", "transaction_id", tx.ID, "error", err)
	}
}
