package booking

import (
	"context"
	"errors"
	"time"

	recordsRepo "pcohire/database/repository/records"
	"pcohire/models"
	"pcohire/services/notification"
	"pcohire/utils"

	"go.uber.org/zap"
)

const defaultLockTTL = 15 * time.Second

// lockBooking takes the per-booking mutation lock. When the lock store is down
// the call proceeds and the version guard on the booking row catches races.
func lockBooking(ctx context.Context, locker Locker, ttl time.Duration, bookingID string, logger *zap.Logger) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	release, err := locker.Acquire(ctx, bookingID, ttl)
	if errors.Is(err, utils.ErrLockHeld) {
		return nil, utils.NewAppError(utils.KindConflict, "booking is being modified by another request, please retry")
	}
	if err != nil {
		logger.Warn("booking lock unavailable, relying on version guard", zap.String("booking_id", bookingID), zap.Error(err))
		return func() {}, nil
	}
	return release, nil
}

// sideEffects writes the audit trail and notifications that follow a committed
// change. Failures are logged and never reach the caller.
type sideEffects struct {
	history  recordsRepo.BookingHistoryRepository
	notifier notification.Dispatcher
	logger   *zap.Logger
}

func (s sideEffects) record(ctx context.Context, entry models.BookingHistoryEntry) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Create(ctx, entry); err != nil {
		s.logger.Error("failed to append booking history",
			zap.String("booking_id", entry.BookingID),
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

func (s sideEffects) notify(ctx context.Context, bookingID string, notes ...models.Notification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notes {
		if _, err := s.notifier.Dispatch(ctx, n); err != nil {
			s.logger.Error("failed to dispatch notification",
				zap.String("booking_id", bookingID),
				zap.String("recipient_type", n.RecipientType),
				zap.String("type", n.Type),
				zap.Error(err))
		}
	}
}

// adminNotifications builds the general admin notice and its structured
// counterpart used for operational triage.
func adminNotifications(adminChannel, notifType, title, message string, data map[string]any, requiresAction bool) []models.Notification {
	if adminChannel == "" {
		adminChannel = models.RoleAdmin
	}
	enhancedPriority := models.PriorityNormal
	if requiresAction {
		enhancedPriority = models.PriorityHigh
	}
	enhancedType := models.NotificationAdminAlert
	if requiresAction {
		enhancedType = models.NotificationAdminActionAlert
	}

	return []models.Notification{
		{
			RecipientID:   adminChannel,
			RecipientType: models.RoleAdmin,
			Type:          notifType,
			Title:         title,
			Message:       message,
			Priority:      models.PriorityNormal,
			Data:          data,
		},
		{
			RecipientID:    adminChannel,
			RecipientType:  models.RoleAdmin,
			Type:           enhancedType,
			Title:          title,
			Message:        message,
			Priority:       enhancedPriority,
			Data:           withEvent(data, notifType),
			TargetRoles:    []string{models.RoleAdmin, models.RoleOperations},
			RequiresAction: requiresAction,
			Enhanced:       true,
		},
	}
}

func withEvent(data map[string]any, event string) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["event"] = event
	return out
}
