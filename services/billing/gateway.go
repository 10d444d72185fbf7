package billing

import (
	"context"
	"fmt"
	"math"

	"pcohire/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// ChargeRequest asks the gateway to collect an additional amount from the driver.
type ChargeRequest struct {
	Amount          float64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	Description     string
	IdempotencyKey  string
	Metadata        map[string]string
}

// RefundRequest asks the gateway to return part of an earlier payment.
type RefundRequest struct {
	Amount          float64
	Currency        string
	PaymentIntentID string
	IdempotencyKey  string
	Metadata        map[string]string
}

// GatewayResult is the external reference and the instruction status it maps to.
type GatewayResult struct {
	ID     string
	Status string
}

// PaymentGateway moves money for vehicle change adjustments.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*GatewayResult, error)
	Refund(ctx context.Context, req RefundRequest) (*GatewayResult, error)
}

// StripeGateway settles adjustments with off-session PaymentIntents and refunds.
// stripe.Key must be set before use.
type StripeGateway struct {
	logger *zap.Logger
}

func NewStripeGateway(logger *zap.Logger) *StripeGateway {
	return &StripeGateway{logger: logger}
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(math.Abs(amount) * 100))
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (*GatewayResult, error) {
	if req.CustomerID == "" || req.PaymentMethodID == "" {
		// Nothing to charge off-session; finance collects it manually.
		g.logger.Info("no saved payment method, charge left pending", zap.String("idempotency_key", req.IdempotencyKey))
		return &GatewayResult{Status: models.PaymentPending}, nil
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toMinorUnits(req.Amount)),
		Currency:      stripe.String(req.Currency),
		Customer:      stripe.String(req.CustomerID),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Description:   stripe.String(req.Description),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}

	status := models.PaymentPending
	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		status = models.PaymentCompleted
	}
	g.logger.Info("adjustment charged", zap.String("payment_intent", pi.ID), zap.String("status", string(pi.Status)))
	return &GatewayResult{ID: pi.ID, Status: status}, nil
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (*GatewayResult, error) {
	if req.PaymentIntentID == "" {
		g.logger.Info("no payment to refund against, refund left pending", zap.String("idempotency_key", req.IdempotencyKey))
		return &GatewayResult{Status: models.PaymentPendingRefund}, nil
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentIntentID),
		Amount:        stripe.Int64(toMinorUnits(req.Amount)),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}

	status := models.PaymentPendingRefund
	switch r.Status {
	case stripe.RefundStatusSucceeded:
		status = models.PaymentRefunded
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		return nil, fmt.Errorf("stripe refund %s ended %s", r.ID, r.Status)
	}
	g.logger.Info("adjustment refunded", zap.String("refund", r.ID), zap.String("status", string(r.Status)))
	return &GatewayResult{ID: r.ID, Status: status}, nil
}

// LedgerOnlyGateway records adjustments without moving money. Used when no
// Stripe key is configured.
type LedgerOnlyGateway struct{}

func (LedgerOnlyGateway) Charge(ctx context.Context, req ChargeRequest) (*GatewayResult, error) {
	return &GatewayResult{Status: models.PaymentPending}, nil
}

func (LedgerOnlyGateway) Refund(ctx context.Context, req RefundRequest) (*GatewayResult, error) {
	return &GatewayResult{Status: models.PaymentPendingRefund}, nil
}
