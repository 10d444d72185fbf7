package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pcohire/database"
	bookingRepo "pcohire/database/repository/booking"
	recordsRepo "pcohire/database/repository/records"
	vehicleRepo "pcohire/database/repository/vehicle"
	"pcohire/models"
	"pcohire/services/notification"

	"go.uber.org/zap"
)

// Statuses from which a return may be requested.
var returnableStatuses = map[string]bool{
	models.BookingPartnerAccepted: true,
	models.BookingActive:          true,
	models.BookingInProgress:      true,
}

// DefaultReturnService implements ReturnService.
type DefaultReturnService struct {
	Bookings bookingRepo.BookingRepository
	Vehicles vehicleRepo.VehicleRepository
	History  recordsRepo.BookingHistoryRepository
	Notifier notification.Dispatcher
	Tx       database.Transactor
	Locker   Locker
	LockTTL  time.Duration

	AdminChannel string
	Logger       *zap.Logger
	Now          func() time.Time
}

func (s *DefaultReturnService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeReturnRequest(req models.ReturnRequest) (models.ReturnRequest, error) {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.RequestedBy = strings.TrimSpace(req.RequestedBy)
	req.RequestedByType = strings.ToLower(strings.TrimSpace(req.RequestedByType))
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	req.Reason = strings.TrimSpace(req.Reason)

	if req.BookingID == "" || req.RequestedBy == "" {
		return req, validationError("bookingId and requestedBy are required")
	}
	switch req.Action {
	case models.ReturnActionRequest, models.ReturnActionApprove, models.ReturnActionReject:
	default:
		return req, validationError(fmt.Sprintf("unknown action %q", req.Action))
	}
	switch req.RequestedByType {
	case models.RoleDriver, models.RolePartner, models.RoleAdmin:
	default:
		return req, validationError(fmt.Sprintf("unknown requestedByType %q", req.RequestedByType))
	}
	return req, nil
}

func authorizeReturnActor(b *models.Booking, req models.ReturnRequest) error {
	switch req.RequestedByType {
	case models.RoleDriver:
		if b.DriverID != req.RequestedBy {
			return authorizationError("You are not the driver on this booking")
		}
	case models.RolePartner:
		if b.PartnerID != req.RequestedBy {
			return authorizationError("You are not the partner on this booking")
		}
	}
	return nil
}

// nextReturnState validates the transition against the current booking and
// returns the write that applies it.
func nextReturnState(b *models.Booking, req models.ReturnRequest, at time.Time) (models.ReturnTransition, error) {
	state := b.ReturnState
	t := models.ReturnTransition{At: at}

	switch req.Action {
	case models.ReturnActionRequest:
		if req.RequestedByType == models.RoleAdmin {
			return t, authorizationError("Only the driver or partner can request a return")
		}
		if !returnableStatuses[b.Status] {
			return t, invalidStateError("Cannot request a return for a booking with status %s", b.Status)
		}
		if state.ReturnRequested {
			return t, invalidStateError("A return has already been requested for this booking")
		}
		state.ReturnRequested = true
		state.ReturnRequestedBy = req.RequestedBy
		state.ReturnRequestedByType = req.RequestedByType
		state.ReturnRequestedAt = &at
		state.ReturnReason = req.Reason
		state.ReturnRejectedBy = ""
		state.ReturnRejectedByType = ""
		state.ReturnRejectedAt = nil
		state.ReturnRejectionReason = ""

	case models.ReturnActionApprove:
		if !state.ReturnRequested {
			return t, invalidStateError("No return has been requested for this booking")
		}
		if state.ReturnApproved {
			return t, invalidStateError("The return has already been approved")
		}
		state.ReturnApproved = true
		state.ReturnApprovedBy = req.RequestedBy
		state.ReturnApprovedByType = req.RequestedByType
		state.ReturnApprovedAt = &at
		t.Status = models.BookingCompleted
		t.CompletedAt = &at

	case models.ReturnActionReject:
		if !state.ReturnRequested {
			return t, invalidStateError("No return has been requested for this booking")
		}
		if state.ReturnApproved {
			return t, invalidStateError("The return has already been approved")
		}
		state.ReturnRequested = false
		state.ReturnRejectedBy = req.RequestedBy
		state.ReturnRejectedByType = req.RequestedByType
		state.ReturnRejectedAt = &at
		state.ReturnRejectionReason = req.Reason
	}

	t.State = state
	return t, nil
}

// HandleReturn applies one return action to a booking. Approval completes the
// booking and frees its vehicle in the same transaction.
func (s *DefaultReturnService) HandleReturn(ctx context.Context, req models.ReturnRequest) (*models.ReturnResult, error) {
	req, err := normalizeReturnRequest(req)
	if err != nil {
		return nil, err
	}

	release, err := lockBooking(ctx, s.Locker, s.LockTTL, req.BookingID, s.Logger)
	if err != nil {
		return nil, err
	}
	defer release()

	booking, err := s.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, lookupError("Booking", err)
	}
	if err := authorizeReturnActor(booking, req); err != nil {
		return nil, err
	}

	transition, err := nextReturnState(booking, req, s.now())
	if err != nil {
		return nil, err
	}

	logger := s.Logger.With(zap.String("booking_id", booking.ID), zap.String("action", req.Action))

	if req.Action == models.ReturnActionApprove {
		err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.Bookings.ApplyReturnTransition(ctx, booking.ID, booking.Version, transition); err != nil {
				return err
			}
			if booking.CurrentVehicleID == "" {
				return nil
			}
			released, err := s.Vehicles.Release(ctx, booking.CurrentVehicleID, booking.ID)
			if err != nil {
				return err
			}
			if !released {
				logger.Warn("vehicle is owned by another booking, left untouched", zap.String("vehicle_id", booking.CurrentVehicleID))
			}
			return nil
		})
	} else {
		err = s.Bookings.ApplyReturnTransition(ctx, booking.ID, booking.Version, transition)
	}
	if err != nil {
		return nil, writeError("failed to update return status", err)
	}

	booking.ReturnState = transition.State
	if transition.Status != "" {
		booking.Status = transition.Status
	}
	booking.CompletedAt = transition.CompletedAt
	logger.Info("return transition applied", zap.String("return_status", booking.ReturnState.Status()))

	s.afterTransition(context.WithoutCancel(ctx), req, booking)

	return &models.ReturnResult{
		Success:      true,
		Message:      returnMessage(req.Action),
		Status:       booking.Status,
		ReturnStatus: booking.ReturnState.Status(),
	}, nil
}

func returnMessage(action string) string {
	switch action {
	case models.ReturnActionApprove:
		return "Return approved and booking completed"
	case models.ReturnActionReject:
		return "Return request rejected"
	default:
		return "Return requested successfully"
	}
}

func (s *DefaultReturnService) afterTransition(ctx context.Context, req models.ReturnRequest, booking *models.Booking) {
	effects := sideEffects{history: s.History, notifier: s.Notifier, logger: s.Logger}

	var (
		action    string
		notifType string
		title     string
		verb      string
	)
	switch req.Action {
	case models.ReturnActionApprove:
		action, notifType, title, verb = models.HistoryReturnApproved, models.NotificationReturnApproved, "Return approved", "approved"
	case models.ReturnActionReject:
		action, notifType, title, verb = models.HistoryReturnRejected, models.NotificationReturnRejected, "Return rejected", "rejected"
	default:
		action, notifType, title, verb = models.HistoryReturnRequested, models.NotificationReturnRequested, "Return requested", "requested"
	}

	description := fmt.Sprintf("Return %s by %s %s.", verb, req.RequestedByType, req.RequestedBy)
	if req.Reason != "" {
		description += " Reason: " + req.Reason + "."
	}

	effects.record(ctx, models.BookingHistoryEntry{
		BookingID:       booking.ID,
		Action:          action,
		PerformedBy:     req.RequestedBy,
		PerformedByType: req.RequestedByType,
		Description:     description,
		Details: map[string]any{
			"reason":        req.Reason,
			"status":        booking.Status,
			"return_status": booking.ReturnState.Status(),
		},
		CreatedAt: s.now(),
	})

	data := map[string]any{
		"booking_id":    booking.ID,
		"action":        req.Action,
		"actor_id":      req.RequestedBy,
		"actor_type":    req.RequestedByType,
		"reason":        req.Reason,
		"return_status": booking.ReturnState.Status(),
	}

	priority := models.PriorityNormal
	if req.Action == models.ReturnActionRequest {
		priority = models.PriorityHigh
	}
	message := fmt.Sprintf("The return for booking %s was %s by the %s.", booking.ID, verb, req.RequestedByType)
	if req.Reason != "" {
		message += " Reason: " + req.Reason
	}

	var notes []models.Notification
	for _, party := range []struct{ id, role string }{
		{booking.DriverID, models.RoleDriver},
		{booking.PartnerID, models.RolePartner},
	} {
		if party.id == "" || (party.role == req.RequestedByType && party.id == req.RequestedBy) {
			continue
		}
		notes = append(notes, models.Notification{
			RecipientID:   party.id,
			RecipientType: party.role,
			Type:          notifType,
			Title:         title,
			Message:       message,
			Priority:      priority,
			Data:          data,
		})
	}

	adminMsg := fmt.Sprintf("Return %s on booking %s by %s %s.", verb, booking.ID, req.RequestedByType, req.RequestedBy)
	notes = append(notes, adminNotifications(s.AdminChannel, notifType, title, adminMsg, data,
		req.Action == models.ReturnActionRequest)...)

	effects.notify(ctx, booking.ID, notes...)
}
