package reconcile

import (
	"context"
	"fmt"
)

// ApplyError reports a failed ledger write-back. The apply sequence is
// not atomic: notes are written first, then the tag. NotesUpdated tells
// the operator whether the failure left the transaction half-applied
// (notes written, tag missing), in which case the next pass will see
// the untagged transaction again and retry.
type ApplyError struct {
	TransactionID string
	Stage         string // "notes" or "tag"
	NotesUpdated  bool
	Err           error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply to transaction %s failed at %s stage: %v", e.TransactionID, e.Stage, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}

// LedgerWriter is the write side of the ledger service.
type LedgerWriter interface {
	UpdateTransactionNotes(ctx context.Context, id, notes string) error
	AddTagToTransaction(ctx context.Context, id, tag string) error
}

// Applier writes a reconciled match back to the ledger: purchase
// details into the notes field, then the reconciliation tag.
type Applier struct {
	ledger LedgerWriter
	tag    string
}

// NewApplier creates an applier that marks transactions with tag.
func NewApplier(ledger LedgerWriter, tag string) *Applier {
	return &Applier{ledger: ledger, tag: tag}
}

// Apply writes the match: notes first, tag second. The tag write is
// idempotent, so re-applying after a partial failure converges instead
// of duplicating tags.
func (a *Applier) Apply(ctx context.Context, transactionID, details string) error {
	if err := a.ledger.UpdateTransactionNotes(ctx, transactionID, details); err != nil {
		return &ApplyError{
			TransactionID: transactionID,
			Stage:         "notes",
			NotesUpdated:  false,
			Err:           err,
		}
	}

	if err := a.ledger.AddTagToTransaction(ctx, transactionID, a.tag); err != nil {
		return &ApplyError{
			TransactionID: transactionID,
			Stage:         "tag",
			NotesUpdated:  true,
			Err:           err,
		}
	}

	return nil
}
