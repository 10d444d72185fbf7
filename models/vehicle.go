package models

import "time"

// Vehicle statuses.
const (
	VehicleAvailable   = "available"
	VehicleBooked      = "booked"
	VehicleMaintenance = "maintenance"
)

// Vehicle is a rentable fleet asset. A booked vehicle has exactly one owning booking.
type Vehicle struct {
	ID               string    `bson:"id" json:"id"`
	PartnerID        string    `bson:"partner_id" json:"partner_id"`
	Make             string    `bson:"make" json:"make"`
	Model            string    `bson:"model" json:"model"`
	Registration     string    `bson:"registration" json:"registration"`
	Color            string    `bson:"color" json:"color"`
	Status           string    `bson:"status" json:"status"`
	CurrentBookingID string    `bson:"current_booking_id" json:"current_booking_id"`
	WeeklyRate       float64   `bson:"weekly_rate" json:"weekly_rate"`
	UpdatedAt        time.Time `bson:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether the vehicle is already reserved for the given booking.
func (v Vehicle) OwnedBy(bookingID string) bool {
	return v.Status == VehicleBooked && v.CurrentBookingID == bookingID
}
