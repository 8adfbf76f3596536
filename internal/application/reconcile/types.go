// Package reconcile runs the reconciliation pass: fetch marketplace
// orders, aggregate them into payments, match them against filtered
// ledger transactions, and apply the single unambiguous match back to
// the ledger.
package reconcile

import (
	"context"
	"log/slog"

	"github.com/fireflyiii-tools/allegro-sync/internal/adapters/firefly"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/matcher"
	"github.com/fireflyiii-tools/allegro-sync/internal/domain/order"
	"github.com/fireflyiii-tools/allegro-sync/internal/infrastructure/storage"
)

// MarketplaceSource fetches purchase orders from the marketplace.
type MarketplaceSource interface {
	FetchOrders(ctx context.Context) ([]order.Order, error)
}

// LedgerService reads ledger transactions and writes reconciliation
// results back to them.
type LedgerService interface {
	FetchTransactions(ctx context.Context) ([]firefly.TransactionGroup, error)
	UpdateTransactionNotes(ctx context.Context, id, notes string) error
	AddTagToTransaction(ctx context.Context, id, tag string) error
}

// Settings holds the pass policy that stays fixed across runs.
type Settings struct {
	// Tag marks a ledger transaction as reconciled. A transaction
	// carrying the tag is never examined again.
	Tag string

	// AmountTolerance and SettlementWindowDays parameterize the match
	// predicate.
	AmountTolerance      float64
	SettlementWindowDays int
}

// Options holds per-run knobs.
type Options struct {
	DryRun     bool
	FilterText string
	ExactMatch bool
	Verbose    bool
}

// Result summarizes one reconciliation pass.
type Result struct {
	RunID            int64
	TransactionsSeen int
	SkippedTagged    int
	MatchedCount     int
	AppliedCount     int
	NoMatchCount     int
	AmbiguousCount   int
	ErrorCount       int
	Errors           []error
}

// Orchestrator runs the reconciliation pass.
type Orchestrator struct {
	marketplace MarketplaceSource
	ledger      LedgerService
	matcher     *matcher.Matcher
	applier     *Applier
	repo        storage.Repository
	settings    Settings
	logger      *slog.Logger
}

// NewOrchestrator creates a reconciliation orchestrator. The repo may be
// nil, in which case no audit trail is written.
func NewOrchestrator(
	marketplace MarketplaceSource,
	ledger LedgerService,
	repo storage.Repository,
	settings Settings,
	logger *slog.Logger,
) *Orchestrator {
	if settings.Tag == "" {
		settings.Tag = "allegro_done"
	}
	if settings.AmountTolerance <= 0 {
		settings.AmountTolerance = matcher.DefaultConfig().AmountTolerance
	}
	if settings.SettlementWindowDays <= 0 {
		settings.SettlementWindowDays = matcher.DefaultConfig().SettlementWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		marketplace: marketplace,
		ledger:      ledger,
		matcher: matcher.NewMatcher(matcher.Config{
			AmountTolerance:      settings.AmountTolerance,
			SettlementWindowDays: settings.SettlementWindowDays,
		}),
		applier:  NewApplier(ledger, settings.Tag),
		repo:     repo,
		settings: settings,
		logger:   logger,
	}
}
