package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"pcohire/database"
	"pcohire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingHistoryRepository stores the append-only audit trail of booking actions.
type BookingHistoryRepository interface {
	Create(ctx context.Context, entry models.BookingHistoryEntry) (string, error)
	GetByID(ctx context.Context, id string) (*models.BookingHistoryEntry, error)
	ListByBooking(ctx context.Context, bookingID string) ([]models.BookingHistoryEntry, error)
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a new BookingHistoryRepository instance using MongoDB.
func NewMongoRecordRepo() BookingHistoryRepository {
	repo := &mongoRecordRepo{
		coll: database.DB().Collection("booking_history"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking history indexes: %v\n", err)
	}
	return repo
}

func (r *mongoRecordRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
