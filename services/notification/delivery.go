package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pcohire/config"
	"pcohire/database"
	notificationRepo "pcohire/database/repository/notification"
	"pcohire/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPublisher publishes realtime payloads on Redis pub/sub.
type RedisPublisher struct {
	Client *redis.Client
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.Client.Publish(ctx, channel, payload).Err()
}

// RealtimeChannel is the pub/sub channel a recipient's clients subscribe to.
func RealtimeChannel(recipientType, recipientID string) string {
	return fmt.Sprintf("notifications:%s:%s", recipientType, recipientID)
}

// DefaultDeliveryService drains stored notifications to realtime subscribers and FCM.
type DefaultDeliveryService struct {
	Repo      notificationRepo.NotificationRepository
	Publisher RealtimePublisher

	// Push is nil when FCM is not configured.
	Push   PushSender
	Logger *zap.Logger
	Now    func() time.Time
}

func (d *DefaultDeliveryService) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Deliver sends one notification. A returned error makes the queue retry the job.
func (d *DefaultDeliveryService) Deliver(ctx context.Context, notificationID string) error {
	logger := d.Logger.With(zap.String("notification_id", notificationID))

	n, err := d.Repo.GetByID(ctx, notificationID)
	if errors.Is(err, database.ErrNotFound) {
		logger.Warn("notification vanished before delivery")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load notification: %w", err)
	}
	if n.Delivered {
		return nil
	}

	// Push is the only step that fails the job; a retry must not repeat the realtime event.
	if err := d.push(ctx, n, logger); err != nil {
		return err
	}

	if err := d.Repo.MarkDelivered(ctx, n.ID, d.now()); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	d.publish(ctx, n, logger)
	logger.Info("notification delivered", zap.String("recipient_type", n.RecipientType))
	return nil
}

// publish is best effort: clients that miss the event still list the stored row.
func (d *DefaultDeliveryService) publish(ctx context.Context, n *models.Notification, logger *zap.Logger) {
	if d.Publisher == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		logger.Warn("failed to encode realtime notification", zap.Error(err))
		return
	}
	if err := d.Publisher.Publish(ctx, RealtimeChannel(n.RecipientType, n.RecipientID), payload); err != nil {
		logger.Warn("failed to publish realtime notification", zap.Error(err))
	}
}

func (d *DefaultDeliveryService) push(ctx context.Context, n *models.Notification, logger *zap.Logger) error {
	if d.Push == nil {
		return nil
	}

	msg := buildPushMessage(n)
	if n.RecipientType == models.RoleAdmin {
		msg.Topic = config.AdminTopic
	} else {
		token, err := d.Repo.GetPushToken(ctx, n.RecipientID, n.RecipientType)
		if errors.Is(err, database.ErrNotFound) {
			logger.Debug("recipient has no push token, skipping push")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load push token: %w", err)
		}
		msg.Token = token
	}

	if _, err := d.Push.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			logger.Warn("push token rejected, skipping push", zap.Error(err))
			return nil
		}
		return fmt.Errorf("send push: %w", err)
	}
	return nil
}

func buildPushMessage(n *models.Notification) *messaging.Message {
	data := map[string]string{
		"notification_id": n.ID,
		"type":            n.Type,
		"priority":        n.Priority,
		"role":            n.RecipientType,
	}
	for k, v := range n.Data {
		if _, taken := data[k]; !taken {
			data[k] = fmt.Sprint(v)
		}
	}

	androidPriority, apnsPriority, channel := "normal", "5", "default"
	if n.Priority == models.PriorityHigh || n.Priority == models.PriorityUrgent {
		androidPriority, apnsPriority, channel = "high", "10", "high_priority"
	}

	return &messaging.Message{
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: androidPriority,
			Notification: &messaging.AndroidNotification{
				ChannelID: channel,
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  apnsPriority,
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
}
