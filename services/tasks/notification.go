package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"pcohire/models"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverNotification  = "notification:deliver"
	TypeRedriveNotifications = "notification:redrive"
	NotificationQueue        = "notifications"

	defaultMaxRetry = 5
)

// NewDeliverNotificationTask builds the delivery job for one notification row.
// A non-positive maxRetry falls back to the default of 5.
func NewDeliverNotificationTask(notificationID string, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	if maxRetry <= 0 {
		maxRetry = defaultMaxRetry
	}
	b, err := json.Marshal(models.NotificationTaskPayload{NotificationID: notificationID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{
		asynq.Queue(NotificationQueue),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(30 * time.Second),
		// One delivery job per row while it is pending or retrying.
		asynq.TaskID("notification:" + notificationID),
	}

	return task, opts, nil
}

// NewRedeliverNotificationTask re-queues a row that missed its first delivery job.
// The task id is scoped to the sweep so a row whose earlier job was archived can
// be queued again, while two jobs from one sweep still collapse into one.
func NewRedeliverNotificationTask(notificationID string, maxRetry int, sweep time.Time) (*asynq.Task, []asynq.Option, error) {
	task, opts, err := NewDeliverNotificationTask(notificationID, maxRetry)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, asynq.TaskID(fmt.Sprintf("notification:%s:redrive:%d", notificationID, sweep.Unix())))
	return task, opts, nil
}

// NewRedriveNotificationsTask is the periodic sweep over undelivered rows.
func NewRedriveNotificationsTask() (*asynq.Task, []asynq.Option) {
	return asynq.NewTask(TypeRedriveNotifications, nil), []asynq.Option{
		asynq.Queue(NotificationQueue),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Minute),
	}
}

// ParseDeliverNotificationPayload decodes a delivery job.
func ParseDeliverNotificationPayload(task *asynq.Task) (models.NotificationTaskPayload, error) {
	var p models.NotificationTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, err
	}
	return p, nil
}
