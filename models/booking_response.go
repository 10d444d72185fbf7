package models

// VehicleChangeResult is returned by a successful reassignment.
type VehicleChangeResult struct {
	Success          bool    `json:"success"`
	NewVehicle       Vehicle `json:"new_vehicle"`
	AdjustmentAmount float64 `json:"adjustment_amount"`
	AdjustmentReason string  `json:"adjustment_reason"`
	PaymentProcessed bool    `json:"payment_processed"`
	StripePaymentID  string  `json:"stripe_payment_id,omitempty"`
	StripeRefundID   string  `json:"stripe_refund_id,omitempty"`
}

// VehicleChangeQuote previews the adjustment a reassignment would produce.
type VehicleChangeQuote struct {
	BookingID        string  `json:"booking_id"`
	NewVehicleID     string  `json:"new_vehicle_id"`
	OldWeeklyRate    float64 `json:"old_weekly_rate"`
	NewWeeklyRate    float64 `json:"new_weekly_rate"`
	AdjustmentType   string  `json:"adjustment_type"`
	AdjustmentAmount float64 `json:"adjustment_amount"`
	AdjustmentReason string  `json:"adjustment_reason"`
	ActualPaid       float64 `json:"actual_paid"`
	DaysUsed         int     `json:"days_used"`
	PaidDays         int     `json:"paid_days"`
	RemainingDays    int     `json:"remaining_days"`
}

// ReturnResult is returned by every return transition.
type ReturnResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Status       string `json:"status"`
	ReturnStatus string `json:"return_status"`
}
