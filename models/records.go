package models

import "time"

// Booking history actions.
const (
	HistoryVehicleAssigned = "vehicle_assigned"
	HistoryReturnRequested = "return_requested"
	HistoryReturnApproved  = "return_approved"
	HistoryReturnRejected  = "return_rejected"
)

// BookingHistoryEntry is an immutable audit record of one action on a booking.
type BookingHistoryEntry struct {
	ID              string         `bson:"id" json:"id"`
	BookingID       string         `bson:"booking_id" json:"booking_id"`
	Action          string         `bson:"action" json:"action"`
	PerformedBy     string         `bson:"performed_by" json:"performed_by"`
	PerformedByType string         `bson:"performed_by_type" json:"performed_by_type"`
	Description     string         `bson:"description" json:"description"`
	Details         map[string]any `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
}
