package notificationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pcohire/database"
	"pcohire/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll      *mongo.Collection
	tokenColl *mongo.Collection
}

func NewMongoNotificationRepo() NotificationRepository {
	db := database.DB()
	repo := &MongoNotificationRepo{
		coll:      db.Collection("notifications"),
		tokenColl: db.Collection("push_tokens"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create notification indexes: %v\n", err)
	}
	return repo
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n models.Notification) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return "", fmt.Errorf("failed to insert notification: %w", err)
	}
	return n.ID, nil
}

func (r *MongoNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n models.Notification
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification %s: %w", id, err)
	}
	return &n, nil
}

func recipientFilter(q ListQuery) bson.M {
	filter := bson.M{"recipient_type": q.RecipientType}
	if q.RecipientID != "" {
		filter["recipient_id"] = q.RecipientID
	}
	return filter
}

func (r *MongoNotificationRepo) ListByRecipient(ctx context.Context, q ListQuery) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := recipientFilter(q)
	if q.UnreadOnly {
		filter["read"] = false
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return out, nil
}

func (r *MongoNotificationRepo) MarkRead(ctx context.Context, id string, q ListQuery) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := recipientFilter(q)
	filter["id"] = id
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *MongoNotificationRepo) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"delivered": true, "delivered_at": at}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to mark notification %s delivered: %w", id, err)
	}
	return nil
}

func (r *MongoNotificationRepo) ListUndelivered(ctx context.Context, olderThan time.Time, limit int) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit < 1 {
		limit = 100
	}
	filter := bson.M{"delivered": false, "created_at": bson.M{"$lt": olderThan}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list undelivered notifications: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.Notification{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode undelivered notifications: %w", err)
	}
	return out, nil
}

func (r *MongoNotificationRepo) UpsertPushToken(ctx context.Context, t models.PushToken) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now()
	}
	filter := bson.M{"recipient_id": t.RecipientID, "recipient_type": t.RecipientType}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.tokenColl.ReplaceOne(ctx, filter, t, opts); err != nil {
		return fmt.Errorf("failed to save push token: %w", err)
	}
	return nil
}

func (r *MongoNotificationRepo) GetPushToken(ctx context.Context, recipientID, recipientType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.PushToken
	filter := bson.M{"recipient_id": recipientID, "recipient_type": recipientType}
	if err := r.tokenColl.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", database.ErrNotFound
		}
		return "", fmt.Errorf("failed to fetch push token: %w", err)
	}
	return t.Token, nil
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recipient_type", Value: 1}, {Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "delivered", Value: 1}, {Key: "created_at", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	if _, err := r.tokenColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "recipient_type", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create push token indexes: %w", err)
	}
	return nil
}
