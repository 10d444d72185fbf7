package bookingRepo

import (
	"context"

	"pcohire/models"
)

// BookingRepository reads and writes bookings. Every write is guarded by the
// version the caller read and increments it; a stale version yields database.ErrConflict.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	AssignVehicle(ctx context.Context, bookingID string, expectedVersion int64, a models.VehicleAssignment) error
	ApplyReturnTransition(ctx context.Context, bookingID string, expectedVersion int64, t models.ReturnTransition) error
}
