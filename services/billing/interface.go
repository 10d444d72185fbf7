package billing

import (
	"context"

	"pcohire/models"
)

// AdjustmentService settles a computed proration against the booking's subscription.
type AdjustmentService interface {
	Settle(ctx context.Context, req AdjustmentRequest) (*AdjustmentOutcome, error)
}

// AdjustmentRequest carries one vehicle change's money movement.
type AdjustmentRequest struct {
	Booking   *models.Booking
	Proration Proration
	Snapshot  models.AdjustmentSnapshot
	// ChangeKey identifies the change attempt; retries of the same attempt reuse it.
	ChangeKey string
}

// AdjustmentOutcome reports what was settled. Processed is false when nothing was recorded.
type AdjustmentOutcome struct {
	Processed         bool
	SubscriptionFound bool
	Instruction       *models.PaymentInstruction
	StripePaymentID   string
	StripeRefundID    string
}

// NeedsManualSettlement reports whether a non-zero adjustment was left for staff:
// either no subscription could settle it or the gateway left it pending.
func (o *AdjustmentOutcome) NeedsManualSettlement(amount float64) bool {
	if amount == 0 {
		return false
	}
	if !o.SubscriptionFound || o.Instruction == nil {
		return true
	}
	switch o.Instruction.Status {
	case models.PaymentPending, models.PaymentPendingRefund:
		return true
	}
	return false
}
