package billing

import (
	"context"
	"errors"
	"time"

	"pcohire/database"
	ledgerRepo "pcohire/database/repository/ledger"
	"pcohire/models"
	"pcohire/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultAdjustmentService charges or refunds through the gateway and writes the
// payment instruction together with its journal in one transaction.
type DefaultAdjustmentService struct {
	Ledger   ledgerRepo.LedgerRepository
	Gateway  PaymentGateway
	Tx       database.Transactor
	Currency string
	Logger   *zap.Logger
	Now      func() time.Time
}

func (s *DefaultAdjustmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// instructionNamespace seeds the ids of adjustment instructions derived from change keys.
var instructionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pcohire:payment_instructions"))

// instructionID is stable for a change key so a retried change maps onto the row
// written by the first attempt.
func instructionID(changeKey string) string {
	if changeKey == "" {
		return uuid.New().String()
	}
	return uuid.NewSHA1(instructionNamespace, []byte(changeKey)).String()
}

func settledOutcome(instr *models.PaymentInstruction) *AdjustmentOutcome {
	return &AdjustmentOutcome{
		Processed:         true,
		SubscriptionFound: true,
		Instruction:       instr,
		StripePaymentID:   instr.StripePaymentID,
		StripeRefundID:    instr.StripeRefundID,
	}
}

// recorded returns the instruction an earlier attempt stored for the change key.
func (s *DefaultAdjustmentService) recorded(ctx context.Context, changeKey string) (*models.PaymentInstruction, error) {
	if changeKey == "" {
		return nil, nil
	}
	instr, err := s.Ledger.GetInstructionByChangeKey(ctx, changeKey)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.WrapAppError(utils.KindDependencyWrite, "failed to look up payment adjustment", err)
	}
	return instr, nil
}

// Settle moves the adjustment money once per change key. A retry of the same
// change returns the instruction recorded by the first attempt.
func (s *DefaultAdjustmentService) Settle(ctx context.Context, req AdjustmentRequest) (*AdjustmentOutcome, error) {
	amount := req.Proration.Amount
	if amount == 0 {
		return &AdjustmentOutcome{}, nil
	}
	booking := req.Booking
	logger := s.Logger.With(zap.String("booking_id", booking.ID), zap.Float64("amount", amount))

	existing, err := s.recorded(ctx, req.ChangeKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("adjustment already recorded for this change",
			zap.String("payment_instruction_id", existing.ID),
			zap.String("change_key", req.ChangeKey))
		return settledOutcome(existing), nil
	}

	sub, err := s.Ledger.GetActiveSubscription(ctx, booking.ID)
	if errors.Is(err, database.ErrNotFound) {
		logger.Info("no active subscription, adjustment not settled")
		return &AdjustmentOutcome{}, nil
	}
	if err != nil {
		return nil, utils.WrapAppError(utils.KindDependencyWrite, "failed to look up subscription", err)
	}

	metadata := map[string]string{
		"booking_id":      booking.ID,
		"subscription_id": sub.ID,
		"new_vehicle_id":  req.Snapshot.NewVehicleID,
		"adjustment_type": req.Proration.Type,
	}

	instr := models.PaymentInstruction{
		ID:             instructionID(req.ChangeKey),
		BookingID:      booking.ID,
		DriverID:       booking.DriverID,
		PartnerID:      booking.PartnerID,
		SubscriptionID: sub.ID,
		Amount:         amount,
		Currency:       s.Currency,
		Type:           models.PaymentTypeVehicleChangeAdjustment,
		Reason:         req.Proration.Reason,
		ChangeKey:      req.ChangeKey,
		Snapshot:       req.Snapshot,
		CreatedAt:      s.now(),
	}

	if amount > 0 {
		res, err := s.Gateway.Charge(ctx, ChargeRequest{
			Amount:          amount,
			Currency:        s.Currency,
			CustomerID:      sub.StripeCustomerID,
			PaymentMethodID: sub.StripePaymentMethodID,
			Description:     req.Proration.Reason,
			IdempotencyKey:  "vehicle-change-charge:" + req.ChangeKey,
			Metadata:        metadata,
		})
		if err != nil {
			return nil, utils.WrapAppError(utils.KindDependencyWrite, "payment processing failed", err)
		}
		instr.Status = res.Status
		instr.StripePaymentID = res.ID
	} else {
		res, err := s.Gateway.Refund(ctx, RefundRequest{
			Amount:          amount,
			Currency:        s.Currency,
			PaymentIntentID: sub.LastPaymentIntentID,
			IdempotencyKey:  "vehicle-change-refund:" + req.ChangeKey,
			Metadata:        metadata,
		})
		if err != nil {
			return nil, utils.WrapAppError(utils.KindDependencyWrite, "refund processing failed", err)
		}
		instr.Status = res.Status
		instr.StripeRefundID = res.ID
	}

	entries := NewAdjustmentJournal(instr)
	if !JournalBalanced(entries) {
		logger.Error("adjustment journal does not balance",
			zap.String("stripe_payment_id", instr.StripePaymentID),
			zap.String("stripe_refund_id", instr.StripeRefundID))
		return nil, utils.NewAppError(utils.KindDependencyWrite, "failed to record payment adjustment")
	}

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		return s.Ledger.RecordAdjustment(ctx, instr, entries)
	})
	if errors.Is(err, database.ErrDuplicate) {
		// A concurrent attempt for the same change recorded it first.
		if existing, lookupErr := s.recorded(ctx, req.ChangeKey); lookupErr == nil && existing != nil {
			logger.Info("adjustment recorded by a concurrent attempt", zap.String("payment_instruction_id", existing.ID))
			return settledOutcome(existing), nil
		}
	}
	if err != nil {
		// Money may have moved already; the ids are needed to reconcile by hand.
		logger.Error("failed to record payment adjustment",
			zap.String("stripe_payment_id", instr.StripePaymentID),
			zap.String("stripe_refund_id", instr.StripeRefundID),
			zap.Error(err))
		return nil, utils.WrapAppError(utils.KindDependencyWrite, "failed to record payment adjustment", err)
	}

	logger.Info("payment adjustment recorded",
		zap.String("payment_instruction_id", instr.ID),
		zap.String("status", instr.Status))

	return settledOutcome(&instr), nil
}
