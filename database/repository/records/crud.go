package recordsRepo

import (
	"context"
	"errors"
	"time"

	"pcohire/database"
	"pcohire/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new history entry and returns its ID.
func (r *mongoRecordRepo) Create(ctx context.Context, entry models.BookingHistoryEntry) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

// GetByID returns a history entry by its ID.
func (r *mongoRecordRepo) GetByID(ctx context.Context, id string) (*models.BookingHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry models.BookingHistoryEntry
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListByBooking fetches the audit trail of a booking, newest first.
func (r *mongoRecordRepo) ListByBooking(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.BookingHistoryEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
