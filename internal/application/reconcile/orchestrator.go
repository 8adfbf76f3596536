package reconcile

import (
	"context"
	"fmt"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/firefly"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/ledger"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/payment"
)

// Run executes one reconciliation pass. Fetch failures on either side
// are fatal and fail the pass; per-transaction apply failures are
// recorded and the pass continues with the next transaction.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{
		Errors: make([]error, 0),
	}

	o.logger.Debug("Starting reconciliation pass",
		"filter", opts.FilterText,
		"exact", opts.ExactMatch,
		"dry_run", opts.DryRun,
		"tag", o.settings.Tag,
	)

	// 1. Marketplace side: orders -> payments -> canonical records.
	pool, err := o.buildPaymentPool(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Ledger side: fetch, pre-filter, simplify.
	transactions, err := o.fetchCandidateTransactions(ctx, opts)
	if err != nil {
		return nil, err
	}

	result.RunID = o.startRun(opts)

	// 3. Match and apply, one transaction at a time.
	for _, tx := range transactions {
		if tx.HasTag(o.settings.Tag) {
			o.logger.Debug("Skipping already reconciled transaction", "transaction_id", tx.ID)
			result.SkippedTagged++
			continue
		}
		result.TransactionsSeen++

		o.processTransaction(ctx, tx, pool, opts, result)
	}

	o.completeRun(result)

	o.logger.Info("Reconciliation pass finished",
		"seen", result.TransactionsSeen,
		"matched", result.MatchedCount,
		"applied", result.AppliedCount,
		"no_match", result.NoMatchCount,
		"ambiguous", result.AmbiguousCount,
		"errors", result.ErrorCount,
	)

	return result, nil
}

// buildPaymentPool fetches marketplace orders and canonicalizes them
// into the payment records the matcher compares against.
func (o *Orchestrator) buildPaymentPool(ctx context.Context) ([]payment.Simplified, error) {
	orders, err := o.marketplace.FetchOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch marketplace orders: %w", err)
	}

	payments := payment.Aggregate(orders, o.settings.AmountTolerance)
	for _, p := range payments {
		if !p.IsBalanced() {
			// Informational only. An unbalanced payment still enters the
			// pool; the ledger is matched against the paid amount.
			o.logger.Warn("Payment amount disagrees with summed order costs",
				"payment", p.ShortID(),
				"paid", p.Amount(),
				"orders_total", p.SumTotalCost(),
			)
		}
	}

	pool := payment.Simplify(payments)
	o.logger.Debug("Built payment pool", "orders", len(orders), "payments", len(pool))
	return pool, nil
}

// fetchCandidateTransactions pulls the ledger transactions and runs the
// pre-filter pipeline: single-split, uncategorized, description match.
func (o *Orchestrator) fetchCandidateTransactions(ctx context.Context, opts Options) ([]ledger.Transaction, error) {
	groups, err := o.ledger.FetchTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger transactions: %w", err)
	}

	filtered := firefly.FilterSinglePart(groups)
	filtered = firefly.FilterWithoutCategory(filtered)
	if opts.FilterText != "" {
		filtered = firefly.FilterByDescription(filtered, opts.FilterText, opts.ExactMatch)
	}

	transactions, err := firefly.SimplifyTransactions(filtered)
	if err != nil {
		return nil, fmt.Errorf("failed to simplify ledger transactions: %w", err)
	}

	o.logger.Debug("Filtered ledger transactions",
		"total", len(groups),
		"candidates", len(transactions),
	)
	return transactions, nil
}

// processTransaction matches one ledger transaction against the pool
// and applies the result. Errors are recorded, never propagated: one
// bad transaction must not abort the pass.
func (o *Orchestrator) processTransaction(
	ctx context.Context,
	tx ledger.Transaction,
	pool []payment.Simplified,
	opts Options,
	result *Result,
) {
	candidates := o.matcher.Candidates(tx, pool)

	switch len(candidates) {
	case 0:
		o.logger.Debug("No matching payment",
			"transaction_id", tx.ID,
			"amount", tx.Amount,
			"date", tx.Date.Format("2006-01-02"),
		)
		result.NoMatchCount++
		o.recordAttempt(tx, candidates, false, opts.DryRun, "", result.RunID)
		return

	case 1:
		// Exactly one candidate: eligible for automatic apply.

	default:
		o.logger.Warn("Ambiguous match, leaving transaction untouched",
			"transaction_id", tx.ID,
			"candidates", len(candidates),
		)
		result.AmbiguousCount++
		o.recordAttempt(tx, candidates, false, opts.DryRun, "", result.RunID)
		return
	}

	result.MatchedCount++
	match := candidates[0]

	if opts.DryRun {
		o.logger.Info("[DRY RUN] Would reconcile transaction",
			"transaction_id", tx.ID,
			"amount", match.Amount,
			"details", match.Details,
		)
		o.recordAttempt(tx, candidates, false, true, "", result.RunID)
		return
	}

	if err := o.applier.Apply(ctx, tx.ID, match.Details); err != nil {
		o.logger.Error("Failed to apply match", "transaction_id", tx.ID, "error", err)
		result.ErrorCount++
		result.Errors = append(result.Errors, err)
		o.recordAttempt(tx, candidates, false, false, err.Error(), result.RunID)
		return
	}

	o.logger.Info("Reconciled transaction",
		"transaction_id", tx.ID,
		"amount", match.Amount,
	)
	result.AppliedCount++
	o.recordAttempt(tx, candidates, true, false, "", result.RunID)
}
