package ledgerRepo

import (
	"context"

	"pcohire/models"
)

// LedgerRepository covers the money collections: payment_instructions,
// transactions and subscriptions.
type LedgerRepository interface {
	// SumSettledRent totals completed or received payments for a booking,
	// excluding earlier vehicle change adjustments.
	SumSettledRent(ctx context.Context, bookingID string) (float64, error)
	// GetActiveSubscription returns database.ErrNotFound when the booking has none.
	GetActiveSubscription(ctx context.Context, bookingID string) (*models.Subscription, error)
	// GetInstructionByChangeKey returns database.ErrNotFound when no adjustment was
	// recorded for the change attempt.
	GetInstructionByChangeKey(ctx context.Context, changeKey string) (*models.PaymentInstruction, error)
	// RecordAdjustment appends the instruction and its journal legs. Run it inside
	// a transaction so the three rows land together. An instruction already stored
	// under the same id or change key yields database.ErrDuplicate.
	RecordAdjustment(ctx context.Context, instr models.PaymentInstruction, entries []models.LedgerEntry) error
}
