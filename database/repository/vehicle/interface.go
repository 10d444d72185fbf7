package vehicleRepo

import (
	"context"

	"pcohire/models"
)

// VehicleRepository reads fleet vehicles and moves them between available and booked.
type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	// Reserve books the vehicle for bookingID. It succeeds only when the vehicle is
	// available or already owned by that booking, else it returns database.ErrConflict.
	Reserve(ctx context.Context, vehicleID, bookingID string) error
	// Release makes the vehicle available again. A vehicle owned by another booking is left alone.
	Release(ctx context.Context, vehicleID, bookingID string) (bool, error)
}
