package notification

import (
	"context"
	"time"

	"pcohire/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
)

// Dispatcher records a notification and schedules its delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) (string, error)
}

// NotificationService is the caller-facing side of notifications.
type NotificationService interface {
	Dispatcher
	List(ctx context.Context, caller models.Caller, page, limit int, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, caller models.Caller, id string) error
	RegisterPushToken(ctx context.Context, caller models.Caller, token string) error
}

// Redriver re-queues stored notifications whose delivery job never completed.
type Redriver interface {
	Redrive(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

// DeliveryService pushes a stored notification out to realtime and push channels.
type DeliveryService interface {
	Deliver(ctx context.Context, notificationID string) error
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TopicSubscriber is satisfied by *messaging.Client.
type TopicSubscriber interface {
	SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error)
}

// RealtimePublisher fans a payload out to subscribers of channel.
type RealtimePublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}
