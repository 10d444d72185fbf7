package booking

import (
	"context"
	"strings"

	bookingRepo "pcohire/database/repository/booking"
	recordsRepo "pcohire/database/repository/records"
	"pcohire/models"
	"pcohire/utils"

	"go.uber.org/zap"
)

// DefaultBookingQueryService implements BookingQueryService.
type DefaultBookingQueryService struct {
	Bookings bookingRepo.BookingRepository
	History  recordsRepo.BookingHistoryRepository
	Logger   *zap.Logger
}

// canView reports whether the caller is a party to the booking. Admin and
// operations staff see every booking.
func canView(caller models.Caller, b *models.Booking) bool {
	switch caller.Role {
	case models.RoleAdmin, models.RoleOperations:
		return true
	case models.RoleDriver:
		return caller.ID == b.DriverID
	case models.RolePartner:
		return caller.ID == b.PartnerID
	default:
		return false
	}
}

func (s *DefaultBookingQueryService) GetBooking(ctx context.Context, caller models.Caller, bookingID string) (*models.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return nil, validationError("booking id is required")
	}
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, lookupError("Booking", err)
	}
	if !canView(caller, booking) {
		return nil, authorizationError("You are not authorized to view this booking")
	}
	return booking, nil
}

func (s *DefaultBookingQueryService) GetHistory(ctx context.Context, caller models.Caller, bookingID string) ([]models.BookingHistoryEntry, error) {
	if _, err := s.GetBooking(ctx, caller, bookingID); err != nil {
		return nil, err
	}
	entries, err := s.History.ListByBooking(ctx, strings.TrimSpace(bookingID))
	if err != nil {
		s.Logger.Error("failed to list booking history", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, utils.WrapAppError(utils.KindDependencyWrite, "failed to load booking history", err)
	}
	if entries == nil {
		entries = []models.BookingHistoryEntry{}
	}
	return entries, nil
}
