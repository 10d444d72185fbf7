package notificationRepo

import (
	"context"
	"time"

	"pcohire/models"
)

// NotificationRepository stores notification rows and recipient push tokens.
type NotificationRepository interface {
	Create(ctx context.Context, n models.Notification) (string, error)
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByRecipient(ctx context.Context, q ListQuery) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, q ListQuery) error
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	// ListUndelivered returns up to limit undelivered rows created before olderThan, oldest first.
	ListUndelivered(ctx context.Context, olderThan time.Time, limit int) ([]models.Notification, error)

	UpsertPushToken(ctx context.Context, t models.PushToken) error
	// GetPushToken returns database.ErrNotFound when the recipient never registered a device.
	GetPushToken(ctx context.Context, recipientID, recipientType string) (string, error)
}

// ListQuery scopes notification reads. An empty RecipientID matches every row of RecipientType.
type ListQuery struct {
	RecipientID   string
	RecipientType string
	UnreadOnly    bool
	Page          int
	Limit         int
}
