package vehicleRepo

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

// MongoVehicleRepo implements VehicleRepository using MongoDB.
type MongoVehicleRepo struct {
	coll *mongo.Collection
}

func NewMongoVehicleRepo() VehicleRepository {
	repo := &MongoVehicleRepo{coll: database.DB().Collection("vehicles")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create vehicle indexes: %v\n", err)
	}
	return repo
}

func (r *MongoVehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var v models.Vehicle
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch vehicle %s: %w", id, err)
	}
	return &v, nil
}

func (r *MongoVehicleRepo) Reserve(ctx context.Context, vehicleID, bookingID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := reserveFilter(vehicleID, bookingID)
	update := bson.M{"$set": bson.M{
		"status":             models.VehicleBooked,
		"current_booking_id": bookingID,
		"updated_at":         time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reserve vehicle %s: %w", vehicleID, err)
	}
	if res.MatchedCount == 0 {
		return database.ErrConflict
	}
	return nil
}

func (r *MongoVehicleRepo) Release(ctx context.Context, vehicleID, bookingID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := releaseFilter(vehicleID, bookingID)
	update := bson.M{"$set": bson.M{
		"status":             models.VehicleAvailable,
		"current_booking_id": "",
		"updated_at":         time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to release vehicle %s: %w", vehicleID, err)
	}
	return res.MatchedCount > 0, nil
}

// reserveFilter matches the vehicle only while it is free or already held by bookingID.
func reserveFilter(vehicleID, bookingID string) bson.M {
	return bson.M{
		"id": vehicleID,
		"$or": bson.A{
			bson.M{"status": models.VehicleAvailable},
			bson.M{"status": models.VehicleBooked, "current_booking_id": bookingID},
		},
	}
}

// releaseFilter never matches a vehicle held by another booking.
func releaseFilter(vehicleID, bookingID string) bson.M {
	return bson.M{
		"id":                 vehicleID,
		"current_booking_id": bson.M{"$in": bson.A{bookingID, ""}},
	}
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoVehicleRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "partner_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "current_booking_id", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
