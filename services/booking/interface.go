package booking

import (
	"context"
	"time"

	"pcohire/models"
)

// VehicleChangeService reassigns a booking to another fleet vehicle.
type VehicleChangeService interface {
	ChangeVehicle(ctx context.Context, req models.VehicleChangeRequest) (*models.VehicleChangeResult, error)
	QuoteVehicleChange(ctx context.Context, req models.VehicleChangeRequest) (*models.VehicleChangeQuote, error)
}

// ReturnService drives the return-request workflow of a booking.
type ReturnService interface {
	HandleReturn(ctx context.Context, req models.ReturnRequest) (*models.ReturnResult, error)
}

// BookingQueryService serves read-only booking views.
type BookingQueryService interface {
	GetBooking(ctx context.Context, caller models.Caller, bookingID string) (*models.Booking, error)
	GetHistory(ctx context.Context, caller models.Caller, bookingID string) ([]models.BookingHistoryEntry, error)
}

// Locker serializes mutations of one booking. utils.RedisLocker implements it.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}
