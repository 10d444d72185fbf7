package models

import "time"

// Payment instruction statuses.
const (
	PaymentPending       = "pending"
	PaymentCompleted     = "completed"
	PaymentReceived      = "received"
	PaymentRefunded      = "refunded"
	PaymentPendingRefund = "pending_refund"
	PaymentFailed        = "failed"
)

// Payment instruction types.
const (
	PaymentTypeWeeklyRent              = "weekly_rent"
	PaymentTypeDeposit                 = "deposit"
	PaymentTypeVehicleChangeAdjustment = "vehicle_change_adjustment"
)

// PaymentInstruction is an append-only monetary record tied to a booking.
// ChangeKey ties a vehicle change adjustment to the change attempt that produced it.
type PaymentInstruction struct {
	ID              string             `bson:"id" json:"id"`
	BookingID       string             `bson:"booking_id" json:"booking_id"`
	DriverID        string             `bson:"driver_id" json:"driver_id"`
	PartnerID       string             `bson:"partner_id" json:"partner_id"`
	SubscriptionID  string             `bson:"subscription_id,omitempty" json:"subscription_id,omitempty"`
	Amount          float64            `bson:"amount" json:"amount"`
	Currency        string             `bson:"currency" json:"currency"`
	Status          string             `bson:"status" json:"status"`
	Type            string             `bson:"type" json:"type"`
	Reason          string             `bson:"reason" json:"reason"`
	StripePaymentID string             `bson:"stripe_payment_id,omitempty" json:"stripe_payment_id,omitempty"`
	StripeRefundID  string             `bson:"stripe_refund_id,omitempty" json:"stripe_refund_id,omitempty"`
	ChangeKey       string             `bson:"change_key,omitempty" json:"change_key,omitempty"`
	Snapshot        AdjustmentSnapshot `bson:"snapshot" json:"snapshot"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// AdjustmentSnapshot is the audit context copied onto every money row of a vehicle change.
type AdjustmentSnapshot struct {
	DriverID         string  `bson:"driver_id" json:"driver_id"`
	PartnerID        string  `bson:"partner_id" json:"partner_id"`
	OldVehicleID     string  `bson:"old_vehicle_id,omitempty" json:"old_vehicle_id,omitempty"`
	OldVehicle       string  `bson:"old_vehicle,omitempty" json:"old_vehicle,omitempty"`
	NewVehicleID     string  `bson:"new_vehicle_id" json:"new_vehicle_id"`
	NewVehicle       string  `bson:"new_vehicle" json:"new_vehicle"`
	OldWeeklyRate    float64 `bson:"old_weekly_rate" json:"old_weekly_rate"`
	NewWeeklyRate    float64 `bson:"new_weekly_rate" json:"new_weekly_rate"`
	AdjustmentType   string  `bson:"adjustment_type" json:"adjustment_type"`
	AdjustmentReason string  `bson:"adjustment_reason" json:"adjustment_reason"`
	ChangeReason     string  `bson:"change_reason,omitempty" json:"change_reason,omitempty"`
}

// Subscription statuses.
const (
	SubscriptionActive    = "active"
	SubscriptionPaused    = "paused"
	SubscriptionCancelled = "cancelled"
)

// Subscription is the recurring rent arrangement that settles adjustments for a booking.
type Subscription struct {
	ID                    string    `bson:"id" json:"id"`
	BookingID             string    `bson:"booking_id" json:"booking_id"`
	DriverID              string    `bson:"driver_id" json:"driver_id"`
	Status                string    `bson:"status" json:"status"`
	WeeklyAmount          float64   `bson:"weekly_amount" json:"weekly_amount"`
	StripeCustomerID      string    `bson:"stripe_customer_id,omitempty" json:"stripe_customer_id,omitempty"`
	StripePaymentMethodID string    `bson:"stripe_payment_method_id,omitempty" json:"stripe_payment_method_id,omitempty"`
	StripeSubscriptionID  string    `bson:"stripe_subscription_id,omitempty" json:"stripe_subscription_id,omitempty"`
	LastPaymentIntentID   string    `bson:"last_payment_intent_id,omitempty" json:"last_payment_intent_id,omitempty"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
}
