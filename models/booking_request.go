package models

// Adjustment types for a mid-rental rate change.
const (
	AdjustmentProrated  = "prorated"
	AdjustmentImmediate = "immediate"
	AdjustmentNextCycle = "next_cycle"
)

// VehicleChangeRequest is the body of POST /api/bookings/change-vehicle.
type VehicleChangeRequest struct {
	BookingID      string `json:"bookingId"`
	PartnerID      string `json:"partnerId"`
	NewVehicleID   string `json:"newVehicleId"`
	Reason         string `json:"reason"`
	AdjustmentType string `json:"adjustmentType,omitempty"`
}

// Return actions.
const (
	ReturnActionRequest = "request"
	ReturnActionApprove = "approve"
	ReturnActionReject  = "reject"
)

// ReturnRequest is the body of POST /api/bookings/request-return.
type ReturnRequest struct {
	BookingID       string `json:"bookingId"`
	Reason          string `json:"reason,omitempty"`
	RequestedBy     string `json:"requestedBy"`
	RequestedByType string `json:"requestedByType"`
	Action          string `json:"action"`
}

// PushTokenRequest is the body of POST /api/notifications/push-token.
type PushTokenRequest struct {
	Token string `json:"token"`
}
