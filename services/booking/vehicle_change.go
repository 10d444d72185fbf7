package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pcohire/database"
	bookingRepo "pcohire/database/repository/booking"
	ledgerRepo "pcohire/database/repository/ledger"
	recordsRepo "pcohire/database/repository/records"
	vehicleRepo "pcohire/database/repository/vehicle"
	"pcohire/models"
	"pcohire/services/billing"
	"pcohire/services/notification"

	"go.uber.org/zap"
)

// Statuses in which a partner may swap the vehicle on a booking.
var vehicleChangeStatuses = map[string]bool{
	models.BookingActive:                 true,
	models.BookingPartnerAccepted:        true,
	models.BookingConfirmed:              true,
	models.BookingPendingInsuranceUpload: true,
}

// DefaultVehicleChangeService implements VehicleChangeService.
type DefaultVehicleChangeService struct {
	Bookings bookingRepo.BookingRepository
	Vehicles vehicleRepo.VehicleRepository
	Ledger   ledgerRepo.LedgerRepository
	History  recordsRepo.BookingHistoryRepository
	Billing  billing.AdjustmentService
	Notifier notification.Dispatcher
	Tx       database.Transactor
	Locker   Locker
	LockTTL  time.Duration

	AdminChannel string
	Logger       *zap.Logger
	Now          func() time.Time
}

// vehicleChange is everything read and computed before any write happens.
type vehicleChange struct {
	booking    *models.Booking
	newVehicle *models.Vehicle
	oldVehicle *models.Vehicle
	oldRate    float64
	actualPaid float64
	proration  billing.Proration
}

func (s *DefaultVehicleChangeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeChangeRequest(req models.VehicleChangeRequest) (models.VehicleChangeRequest, error) {
	req.BookingID = strings.TrimSpace(req.BookingID)
	req.PartnerID = strings.TrimSpace(req.PartnerID)
	req.NewVehicleID = strings.TrimSpace(req.NewVehicleID)
	req.Reason = strings.TrimSpace(req.Reason)

	if req.BookingID == "" || req.PartnerID == "" || req.NewVehicleID == "" {
		return req, validationError("bookingId, partnerId and newVehicleId are required")
	}
	adjType, ok := billing.NormalizeAdjustmentType(req.AdjustmentType)
	if !ok {
		return req, validationError(fmt.Sprintf("unknown adjustmentType %q", req.AdjustmentType))
	}
	req.AdjustmentType = adjType
	return req, nil
}

// load checks the preconditions in order and computes the adjustment.
func (s *DefaultVehicleChangeService) load(ctx context.Context, req models.VehicleChangeRequest) (*vehicleChange, error) {
	booking, err := s.Bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, lookupError("Booking", err)
	}
	if booking.PartnerID != req.PartnerID {
		return nil, authorizationError("You are not authorized to change the vehicle on this booking")
	}
	if !vehicleChangeStatuses[booking.Status] {
		return nil, invalidStateError("Cannot change vehicle for a booking with status %s", booking.Status)
	}

	newVehicle, err := s.Vehicles.GetByID(ctx, req.NewVehicleID)
	if err != nil {
		return nil, lookupError("Vehicle", err)
	}
	if newVehicle.PartnerID != "" && newVehicle.PartnerID != booking.PartnerID {
		return nil, vehicleUnavailableError("Selected vehicle is not part of this partner's fleet")
	}
	if newVehicle.Status != models.VehicleAvailable && !newVehicle.OwnedBy(booking.ID) {
		return nil, vehicleUnavailableError("Selected vehicle is not available")
	}

	change := &vehicleChange{booking: booking, newVehicle: newVehicle, oldRate: booking.WeeklyRate}

	if oldID := booking.CurrentVehicleID; oldID != "" && oldID != newVehicle.ID {
		old, err := s.Vehicles.GetByID(ctx, oldID)
		if err != nil {
			s.Logger.Warn("current vehicle could not be loaded",
				zap.String("booking_id", booking.ID), zap.String("vehicle_id", oldID), zap.Error(err))
		} else {
			change.oldVehicle = old
		}
	} else if oldID == newVehicle.ID {
		change.oldVehicle = newVehicle
	}
	if change.oldRate <= 0 && change.oldVehicle != nil {
		change.oldRate = change.oldVehicle.WeeklyRate
	}

	paid, err := s.Ledger.SumSettledRent(ctx, booking.ID)
	if err != nil {
		return nil, lookupError("payment history", err)
	}
	change.actualPaid = paid

	change.proration = billing.CalculateProration(billing.ProrationInput{
		OldWeeklyRate:  change.oldRate,
		NewWeeklyRate:  newVehicle.WeeklyRate,
		AdjustmentType: req.AdjustmentType,
		ActualPaid:     paid,
		BookingStatus:  booking.Status,
		StartDate:      booking.StartDate,
		Now:            s.now(),
	})
	return change, nil
}

// QuoteVehicleChange runs the preconditions and returns the adjustment without writing.
func (s *DefaultVehicleChangeService) QuoteVehicleChange(ctx context.Context, req models.VehicleChangeRequest) (*models.VehicleChangeQuote, error) {
	req, err := normalizeChangeRequest(req)
	if err != nil {
		return nil, err
	}
	change, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	p := change.proration
	return &models.VehicleChangeQuote{
		BookingID:        change.booking.ID,
		NewVehicleID:     change.newVehicle.ID,
		OldWeeklyRate:    change.oldRate,
		NewWeeklyRate:    change.newVehicle.WeeklyRate,
		AdjustmentType:   p.Type,
		AdjustmentAmount: p.Amount,
		AdjustmentReason: p.Reason,
		ActualPaid:       change.actualPaid,
		DaysUsed:         p.DaysUsed,
		PaidDays:         p.PaidDays,
		RemainingDays:    p.RemainingDays,
	}, nil
}

// ChangeVehicle settles the rate adjustment, then moves the booking and both
// vehicles in one transaction. History and notifications follow as best effort.
func (s *DefaultVehicleChangeService) ChangeVehicle(ctx context.Context, req models.VehicleChangeRequest) (*models.VehicleChangeResult, error) {
	req, err := normalizeChangeRequest(req)
	if err != nil {
		return nil, err
	}

	release, err := lockBooking(ctx, s.Locker, s.LockTTL, req.BookingID, s.Logger)
	if err != nil {
		return nil, err
	}
	defer release()

	change, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	booking, newVehicle := change.booking, change.newVehicle
	logger := s.Logger.With(zap.String("booking_id", booking.ID), zap.String("vehicle_id", newVehicle.ID))

	snapshot := models.AdjustmentSnapshot{
		DriverID:         booking.DriverID,
		PartnerID:        booking.PartnerID,
		OldVehicleID:     booking.CurrentVehicleID,
		OldVehicle:       describeVehicle(change.oldVehicle),
		NewVehicleID:     newVehicle.ID,
		NewVehicle:       describeVehicle(newVehicle),
		OldWeeklyRate:    change.oldRate,
		NewWeeklyRate:    newVehicle.WeeklyRate,
		AdjustmentType:   change.proration.Type,
		AdjustmentReason: change.proration.Reason,
		ChangeReason:     req.Reason,
	}

	outcome, err := s.Billing.Settle(ctx, billing.AdjustmentRequest{
		Booking:   booking,
		Proration: change.proration,
		Snapshot:  snapshot,
		ChangeKey: fmt.Sprintf("%s:v%d:%s", booking.ID, booking.Version, newVehicle.ID),
	})
	if err != nil {
		return nil, err
	}

	at := s.now()
	assignment := models.VehicleAssignment{
		Vehicle:    *newVehicle,
		WeeklyRate: newVehicle.WeeklyRate,
		At:         at,
		HistoryEntry: models.VehicleHistoryEntry{
			VehicleID:         newVehicle.ID,
			PreviousVehicleID: booking.CurrentVehicleID,
			Make:              newVehicle.Make,
			Model:             newVehicle.Model,
			Registration:      newVehicle.Registration,
			AssignedBy:        req.PartnerID,
			AssignedAt:        at,
			Reason:            req.Reason,
			OldWeeklyRate:     change.oldRate,
			NewWeeklyRate:     newVehicle.WeeklyRate,
			AdjustmentType:    change.proration.Type,
			AdjustmentAmount:  change.proration.Amount,
		},
	}
	oldID := booking.CurrentVehicleID

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Bookings.AssignVehicle(ctx, booking.ID, booking.Version, assignment); err != nil {
			return err
		}
		if oldID != "" && oldID != newVehicle.ID {
			released, err := s.Vehicles.Release(ctx, oldID, booking.ID)
			if err != nil {
				return err
			}
			if !released {
				logger.Warn("previous vehicle is owned by another booking, left untouched", zap.String("old_vehicle_id", oldID))
			}
		}
		return s.Vehicles.Reserve(ctx, newVehicle.ID, booking.ID)
	})
	if err != nil {
		if outcome.Processed {
			logger.Error("vehicle change failed after payment adjustment was recorded",
				zap.String("payment_instruction_id", outcome.Instruction.ID),
				zap.Error(err))
		}
		return nil, writeError("failed to apply vehicle change", err)
	}

	newVehicle.Status = models.VehicleBooked
	newVehicle.CurrentBookingID = booking.ID
	newVehicle.UpdatedAt = at
	logger.Info("vehicle changed",
		zap.String("old_vehicle_id", oldID),
		zap.Float64("adjustment_amount", change.proration.Amount),
		zap.Bool("payment_processed", outcome.Processed))

	s.afterChange(context.WithoutCancel(ctx), req, change, outcome)

	return &models.VehicleChangeResult{
		Success:          true,
		NewVehicle:       *newVehicle,
		AdjustmentAmount: change.proration.Amount,
		AdjustmentReason: change.proration.Reason,
		PaymentProcessed: outcome.Processed,
		StripePaymentID:  outcome.StripePaymentID,
		StripeRefundID:   outcome.StripeRefundID,
	}, nil
}

func (s *DefaultVehicleChangeService) afterChange(ctx context.Context, req models.VehicleChangeRequest, change *vehicleChange, outcome *billing.AdjustmentOutcome) {
	booking, newVehicle, p := change.booking, change.newVehicle, change.proration
	effects := sideEffects{history: s.History, notifier: s.Notifier, logger: s.Logger}

	oldLabel := describeVehicle(change.oldVehicle)
	if oldLabel == "" {
		oldLabel = "no vehicle"
	}
	newLabel := describeVehicle(newVehicle)

	description := fmt.Sprintf("Vehicle changed from %s to %s.", oldLabel, newLabel)
	if req.Reason != "" {
		description += " Reason: " + req.Reason + "."
	}
	if p.Amount != 0 {
		description += fmt.Sprintf(" Adjustment: %.2f (%s).", p.Amount, p.Type)
	}

	effects.record(ctx, models.BookingHistoryEntry{
		BookingID:       booking.ID,
		Action:          models.HistoryVehicleAssigned,
		PerformedBy:     req.PartnerID,
		PerformedByType: models.RolePartner,
		Description:     description,
		Details: map[string]any{
			"old_vehicle_id":    booking.CurrentVehicleID,
			"new_vehicle_id":    newVehicle.ID,
			"old_weekly_rate":   change.oldRate,
			"new_weekly_rate":   newVehicle.WeeklyRate,
			"adjustment_type":   p.Type,
			"adjustment_amount": p.Amount,
			"payment_processed": outcome.Processed,
		},
		CreatedAt: s.now(),
	})

	data := map[string]any{
		"booking_id":        booking.ID,
		"old_vehicle_id":    booking.CurrentVehicleID,
		"new_vehicle_id":    newVehicle.ID,
		"adjustment_amount": p.Amount,
		"adjustment_type":   p.Type,
	}

	driverMsg := fmt.Sprintf("Your vehicle has been changed to %s.", newLabel)
	switch {
	case p.Amount > 0:
		driverMsg += fmt.Sprintf(" An additional %.2f applies for the rest of your paid period.", p.Amount)
	case p.Amount < 0:
		driverMsg += fmt.Sprintf(" You will be refunded %.2f for the rest of your paid period.", -p.Amount)
	}

	requiresAction := outcome.NeedsManualSettlement(p.Amount)
	adminMsg := fmt.Sprintf("Booking %s moved from %s to %s by partner %s.", booking.ID, oldLabel, newLabel, req.PartnerID)
	switch {
	case requiresAction && !outcome.SubscriptionFound:
		adminMsg += fmt.Sprintf(" No active subscription to settle the %.2f adjustment.", p.Amount)
	case requiresAction:
		adminMsg += fmt.Sprintf(" Adjustment of %.2f is pending at the payment gateway.", p.Amount)
	}

	notes := []models.Notification{{
		RecipientID:   booking.DriverID,
		RecipientType: models.RoleDriver,
		Type:          models.NotificationVehicleChanged,
		Title:         "Vehicle changed",
		Message:       driverMsg,
		Priority:      models.PriorityHigh,
		Data:          data,
	}}
	notes = append(notes, adminNotifications(s.AdminChannel, models.NotificationVehicleChanged,
		"Booking vehicle changed", adminMsg, data, requiresAction)...)

	effects.notify(ctx, booking.ID, notes...)
}

func describeVehicle(v *models.Vehicle) string {
	if v == nil {
		return ""
	}
	label := strings.TrimSpace(v.Make + " " + v.Model)
	if v.Registration != "" {
		label = strings.TrimSpace(label + " (" + v.Registration + ")")
	}
	if label == "" {
		return v.ID
	}
	return label
}
