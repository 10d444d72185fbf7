package models

import "time"

// Booking statuses.
const (
	BookingPendingPartnerApproval = "pending_partner_approval"
	BookingPendingAdminApproval   = "pending_admin_approval"
	BookingPendingSignature       = "pending_signature"
	BookingPartnerAccepted        = "partner_accepted"
	BookingConfirmed              = "confirmed"
	BookingPendingInsuranceUpload = "pending_insurance_upload"
	BookingActive                 = "active"
	BookingInProgress             = "in_progress"
	BookingCompleted              = "completed"
	BookingCancelled              = "cancelled"
	BookingRejected               = "rejected"
)

// Booking is a rental agreement between a driver, a partner and one vehicle at a time.
type Booking struct {
	ID               string `bson:"id" json:"id"`
	DriverID         string `bson:"driver_id" json:"driver_id"`
	PartnerID        string `bson:"partner_id" json:"partner_id"`
	Status           string `bson:"status" json:"status"`
	CurrentVehicleID string `bson:"current_vehicle_id" json:"current_vehicle_id"`

	// Display copies of the current vehicle, refreshed on every reassignment.
	CarMake         string `bson:"car_make" json:"car_make"`
	CarModel        string `bson:"car_model" json:"car_model"`
	CarRegistration string `bson:"car_registration" json:"car_registration"`
	CarColor        string `bson:"car_color" json:"car_color"`

	StartDate  time.Time `bson:"start_date" json:"start_date"`
	EndDate    time.Time `bson:"end_date" json:"end_date"`
	WeeklyRate float64   `bson:"weekly_rate" json:"weekly_rate"`

	ReturnState `bson:",inline"`

	CompletedAt    *time.Time            `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	VehicleHistory []VehicleHistoryEntry `bson:"vehicle_history" json:"vehicle_history"`
	Version        int64                 `bson:"version" json:"version"`
	CreatedAt      time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time             `bson:"updated_at" json:"updated_at"`
}

// ReturnState carries the return-request flags of a booking.
type ReturnState struct {
	ReturnRequested       bool       `bson:"return_requested" json:"return_requested"`
	ReturnRequestedBy     string     `bson:"return_requested_by,omitempty" json:"return_requested_by,omitempty"`
	ReturnRequestedByType string     `bson:"return_requested_by_type,omitempty" json:"return_requested_by_type,omitempty"`
	ReturnRequestedAt     *time.Time `bson:"return_requested_at,omitempty" json:"return_requested_at,omitempty"`
	ReturnReason          string     `bson:"return_reason,omitempty" json:"return_reason,omitempty"`

	ReturnApproved       bool       `bson:"return_approved" json:"return_approved"`
	ReturnApprovedBy     string     `bson:"return_approved_by,omitempty" json:"return_approved_by,omitempty"`
	ReturnApprovedByType string     `bson:"return_approved_by_type,omitempty" json:"return_approved_by_type,omitempty"`
	ReturnApprovedAt     *time.Time `bson:"return_approved_at,omitempty" json:"return_approved_at,omitempty"`

	ReturnRejectedBy      string     `bson:"return_rejected_by,omitempty" json:"return_rejected_by,omitempty"`
	ReturnRejectedByType  string     `bson:"return_rejected_by_type,omitempty" json:"return_rejected_by_type,omitempty"`
	ReturnRejectedAt      *time.Time `bson:"return_rejected_at,omitempty" json:"return_rejected_at,omitempty"`
	ReturnRejectionReason string     `bson:"return_rejection_reason,omitempty" json:"return_rejection_reason,omitempty"`
}

// Return status values reported to clients.
const (
	ReturnStatusNone      = "none"
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
)

// Status derives the client-facing return status from the flags.
func (r ReturnState) Status() string {
	switch {
	case r.ReturnApproved:
		return ReturnStatusApproved
	case r.ReturnRequested:
		return ReturnStatusRequested
	case r.ReturnRejectedAt != nil:
		return ReturnStatusRejected
	default:
		return ReturnStatusNone
	}
}

// VehicleHistoryEntry records one reassignment. Entries are only ever appended.
type VehicleHistoryEntry struct {
	VehicleID         string    `bson:"vehicle_id" json:"vehicle_id"`
	PreviousVehicleID string    `bson:"previous_vehicle_id,omitempty" json:"previous_vehicle_id,omitempty"`
	Make              string    `bson:"make" json:"make"`
	Model             string    `bson:"model" json:"model"`
	Registration      string    `bson:"registration" json:"registration"`
	AssignedBy        string    `bson:"assigned_by" json:"assigned_by"`
	AssignedAt        time.Time `bson:"assigned_at" json:"assigned_at"`
	Reason            string    `bson:"reason,omitempty" json:"reason,omitempty"`
	OldWeeklyRate     float64   `bson:"old_weekly_rate" json:"old_weekly_rate"`
	NewWeeklyRate     float64   `bson:"new_weekly_rate" json:"new_weekly_rate"`
	AdjustmentType    string    `bson:"adjustment_type" json:"adjustment_type"`
	AdjustmentAmount  float64   `bson:"adjustment_amount" json:"adjustment_amount"`
}

// VehicleAssignment is the booking-side write of a reassignment.
type VehicleAssignment struct {
	Vehicle      Vehicle
	WeeklyRate   float64
	HistoryEntry VehicleHistoryEntry
	At           time.Time
}

// ReturnTransition is the booking-side write of a return state change.
type ReturnTransition struct {
	State       ReturnState
	Status      string // empty keeps the current status
	CompletedAt *time.Time
	At          time.Time
}
