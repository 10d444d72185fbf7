package ledgerRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pcohire/database"
	"pcohire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLedgerRepo implements LedgerRepository using MongoDB.
type MongoLedgerRepo struct {
	instructionColl  *mongo.Collection
	transactionColl  *mongo.Collection
	subscriptionColl *mongo.Collection
}

func NewMongoLedgerRepo() LedgerRepository {
	db := database.DB()
	repo := &MongoLedgerRepo{
		instructionColl:  db.Collection("payment_instructions"),
		transactionColl:  db.Collection("transactions"),
		subscriptionColl: db.Collection("subscriptions"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create ledger indexes: %v\n", err)
	}
	return repo
}

func (r *MongoLedgerRepo) SumSettledRent(ctx context.Context, bookingID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"booking_id": bookingID,
			"status":     bson.M{"$in": bson.A{models.PaymentCompleted, models.PaymentReceived}},
			"type":       bson.M{"$ne": models.PaymentTypeVehicleChangeAdjustment},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	}

	cursor, err := r.instructionColl.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum payments for booking %s: %w", bookingID, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode payment sum: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (r *MongoLedgerRepo) GetActiveSubscription(ctx context.Context, bookingID string) (*models.Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	filter := bson.M{"booking_id": bookingID, "status": models.SubscriptionActive}

	var sub models.Subscription
	if err := r.subscriptionColl.FindOne(ctx, filter, opts).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription for booking %s: %w", bookingID, err)
	}
	return &sub, nil
}

func (r *MongoLedgerRepo) GetInstructionByChangeKey(ctx context.Context, changeKey string) (*models.PaymentInstruction, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var instr models.PaymentInstruction
	if err := r.instructionColl.FindOne(ctx, bson.M{"change_key": changeKey}).Decode(&instr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment instruction for change %s: %w", changeKey, err)
	}
	return &instr, nil
}

func (r *MongoLedgerRepo) RecordAdjustment(ctx context.Context, instr models.PaymentInstruction, entries []models.LedgerEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.instructionColl.InsertOne(ctx, instr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrDuplicate
		}
		return fmt.Errorf("insert payment instruction failed: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e)
	}
	if _, err := r.transactionColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert ledger entries failed: %w", err)
	}
	return nil
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoLedgerRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.instructionColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "change_key", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	}); err != nil {
		return fmt.Errorf("failed to create payment instruction indexes: %w", err)
	}
	if _, err := r.transactionColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "journal_id", Value: 1}}},
		{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	if _, err := r.subscriptionColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}, {Key: "status", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create subscription indexes: %w", err)
	}
	return nil
}
