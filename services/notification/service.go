package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pcohire/config"
	"pcohire/database"
	notificationRepo "pcohire/database/repository/notification"
	"pcohire/models"
	"pcohire/services/tasks"
	"pcohire/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// DefaultNotificationService writes notification rows and queues their delivery.
type DefaultNotificationService struct {
	Repo     notificationRepo.NotificationRepository
	Queue    TaskEnqueuer
	MaxRetry int

	// Topics subscribes staff devices to the admin topic. Nil disables it.
	Topics TopicSubscriber
	Logger *zap.Logger
}

// Dispatch inserts the row, then enqueues delivery. A failed enqueue leaves the
// row undelivered but still returns its id.
func (s *DefaultNotificationService) Dispatch(ctx context.Context, n models.Notification) (string, error) {
	if n.RecipientID == "" || n.RecipientType == "" {
		return "", utils.NewAppError(utils.KindValidation, "notification recipient is required")
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	id, err := s.Repo.Create(ctx, n)
	if err != nil {
		return "", utils.WrapAppError(utils.KindDependencyWrite, "failed to store notification", err)
	}

	logger := s.Logger.With(zap.String("notification_id", id), zap.String("type", n.Type))
	if s.Queue == nil {
		logger.Warn("no delivery queue configured, notification stored only")
		return id, nil
	}

	task, opts, err := tasks.NewDeliverNotificationTask(id, s.MaxRetry)
	if err != nil {
		logger.Error("failed to build delivery task", zap.Error(err))
		return id, nil
	}
	if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
		logger.Error("failed to enqueue notification delivery", zap.Error(err))
		return id, nil
	}
	logger.Debug("notification queued for delivery")
	return id, nil
}

// Redrive queues a fresh delivery job for every undelivered row created before
// olderThan and returns how many were queued. Rows that already have a job
// under this sweep's task id are skipped.
func (s *DefaultNotificationService) Redrive(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	if s.Queue == nil {
		return 0, nil
	}
	rows, err := s.Repo.ListUndelivered(ctx, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("list undelivered notifications: %w", err)
	}

	queued := 0
	for _, n := range rows {
		task, opts, err := tasks.NewRedeliverNotificationTask(n.ID, s.MaxRetry, olderThan)
		if err != nil {
			s.Logger.Error("failed to build redelivery task", zap.String("notification_id", n.ID), zap.Error(err))
			continue
		}
		if _, err := s.Queue.EnqueueContext(ctx, task, opts...); err != nil {
			if errors.Is(err, asynq.ErrTaskIDConflict) {
				continue
			}
			return queued, fmt.Errorf("enqueue redelivery of %s: %w", n.ID, err)
		}
		queued++
	}
	if queued > 0 {
		s.Logger.Info("undelivered notifications re-queued", zap.Int("count", queued), zap.Time("older_than", olderThan))
	}
	return queued, nil
}

// scopeFor maps a caller to the rows they may see. Admin and operations staff
// share the admin inbox.
func scopeFor(caller models.Caller) notificationRepo.ListQuery {
	if caller.Role == models.RoleAdmin || caller.Role == models.RoleOperations {
		return notificationRepo.ListQuery{RecipientType: models.RoleAdmin}
	}
	return notificationRepo.ListQuery{RecipientID: caller.ID, RecipientType: caller.Role}
}

func (s *DefaultNotificationService) List(ctx context.Context, caller models.Caller, page, limit int, unreadOnly bool) ([]models.Notification, error) {
	q := scopeFor(caller)
	q.Page, q.Limit, q.UnreadOnly = page, limit, unreadOnly

	out, err := s.Repo.ListByRecipient(ctx, q)
	if err != nil {
		return nil, utils.WrapAppError(utils.KindDependencyWrite, "failed to load notifications", err)
	}
	return out, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, caller models.Caller, id string) error {
	if strings.TrimSpace(id) == "" {
		return utils.NewAppError(utils.KindValidation, "notification id is required")
	}
	err := s.Repo.MarkRead(ctx, id, scopeFor(caller))
	if errors.Is(err, database.ErrNotFound) {
		return utils.NewAppError(utils.KindNotFound, "notification not found")
	}
	if err != nil {
		return utils.WrapAppError(utils.KindDependencyWrite, "failed to update notification", err)
	}
	return nil
}

func (s *DefaultNotificationService) RegisterPushToken(ctx context.Context, caller models.Caller, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return utils.NewAppError(utils.KindValidation, "token is required")
	}
	recipient := scopeFor(caller)
	recipientID := recipient.RecipientID
	if recipientID == "" {
		recipientID = caller.ID
	}
	err := s.Repo.UpsertPushToken(ctx, models.PushToken{
		RecipientID:   recipientID,
		RecipientType: recipient.RecipientType,
		Token:         token,
		UpdatedAt:     time.Now(),
	})
	if err != nil {
		return utils.WrapAppError(utils.KindDependencyWrite, "failed to save push token", err)
	}

	if recipient.RecipientType == models.RoleAdmin && s.Topics != nil {
		if _, err := s.Topics.SubscribeToTopic(ctx, []string{token}, config.AdminTopic); err != nil {
			s.Logger.Warn("failed to subscribe device to admin topic", zap.String("caller", caller.ID), zap.Error(err))
		}
	}
	return nil
}
