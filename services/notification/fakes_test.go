package notification

import (
	"context"
	"errors"
	"sort"
	"time"

	"pcohire/database"
	notificationRepo "pcohire/database/repository/notification"
	"pcohire/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
)

type memoryRepo struct {
	rows      map[string]*models.Notification
	tokens    map[string]string
	createErr error
	lastQuery notificationRepo.ListQuery
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[string]*models.Notification{}, tokens: map[string]string{}}
}

func (m *memoryRepo) Create(ctx context.Context, n models.Notification) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	if n.ID == "" {
		n.ID = "n-" + n.RecipientID + "-" + n.Type
	}
	m.rows[n.ID] = &n
	return n.ID, nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	n, ok := m.rows[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *memoryRepo) ListByRecipient(ctx context.Context, q notificationRepo.ListQuery) ([]models.Notification, error) {
	m.lastQuery = q
	var out []models.Notification
	for _, n := range m.rows {
		if n.RecipientType == q.RecipientType && (q.RecipientID == "" || n.RecipientID == q.RecipientID) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *memoryRepo) MarkRead(ctx context.Context, id string, q notificationRepo.ListQuery) error {
	n, ok := m.rows[id]
	if !ok || n.RecipientType != q.RecipientType || (q.RecipientID != "" && n.RecipientID != q.RecipientID) {
		return database.ErrNotFound
	}
	n.Read = true
	return nil
}

func (m *memoryRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	n, ok := m.rows[id]
	if !ok {
		return database.ErrNotFound
	}
	n.Delivered = true
	n.DeliveredAt = &at
	return nil
}

func (m *memoryRepo) ListUndelivered(ctx context.Context, olderThan time.Time, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.rows {
		if !n.Delivered && n.CreatedAt.Before(olderThan) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRepo) UpsertPushToken(ctx context.Context, t models.PushToken) error {
	m.tokens[t.RecipientType+":"+t.RecipientID] = t.Token
	return nil
}

func (m *memoryRepo) GetPushToken(ctx context.Context, recipientID, recipientType string) (string, error) {
	tok, ok := m.tokens[recipientType+":"+recipientID]
	if !ok {
		return "", database.ErrNotFound
	}
	return tok, nil
}

// fakeQueue rejects a task id it has already accepted, like asynq does.
type fakeQueue struct {
	tasks   []*asynq.Task
	taskIDs []string
	err     error
}

func (q *fakeQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	var id string
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			id, _ = o.Value().(string)
		}
	}
	for _, seen := range q.taskIDs {
		if id != "" && seen == id {
			return nil, asynq.ErrTaskIDConflict
		}
	}
	q.tasks = append(q.tasks, task)
	q.taskIDs = append(q.taskIDs, id)
	return &asynq.TaskInfo{ID: id}, nil
}

type fakePush struct {
	sent []*messaging.Message
	err  error
}

func (p *fakePush) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.sent = append(p.sent, msg)
	return "projects/test/messages/1", nil
}

type fakeTopics struct {
	subscribed map[string][]string
}

func (f *fakeTopics) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (*messaging.TopicManagementResponse, error) {
	if f.subscribed == nil {
		f.subscribed = map[string][]string{}
	}
	f.subscribed[topic] = append(f.subscribed[topic], tokens...)
	return &messaging.TopicManagementResponse{SuccessCount: len(tokens)}, nil
}

type fakePublisher struct {
	channels []string
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.channels = append(p.channels, channel)
	return nil
}

var errBoom = errors.New("boom")
