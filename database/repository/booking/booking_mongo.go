package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pcohire/database"
	"pcohire/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{coll: database.DB().Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// withTimeout bounds a store call while keeping any session carried by ctx.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) AssignVehicle(ctx context.Context, bookingID string, expectedVersion int64, a models.VehicleAssignment) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := versionFilter(bookingID, expectedVersion)
	update := bson.M{
		"$set": bson.M{
			"current_vehicle_id": a.Vehicle.ID,
			"car_make":           a.Vehicle.Make,
			"car_model":          a.Vehicle.Model,
			"car_registration":   a.Vehicle.Registration,
			"car_color":          a.Vehicle.Color,
			"weekly_rate":        a.WeeklyRate,
			"updated_at":         a.At,
		},
		"$push": bson.M{"vehicle_history": a.HistoryEntry},
		"$inc":  bson.M{"version": 1},
	}
	return r.guardedUpdate(ctx, filter, update)
}

func (r *MongoBookingRepo) ApplyReturnTransition(ctx context.Context, bookingID string, expectedVersion int64, t models.ReturnTransition) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"return_requested":         t.State.ReturnRequested,
		"return_requested_by":      t.State.ReturnRequestedBy,
		"return_requested_by_type": t.State.ReturnRequestedByType,
		"return_requested_at":      t.State.ReturnRequestedAt,
		"return_reason":            t.State.ReturnReason,
		"return_approved":          t.State.ReturnApproved,
		"return_approved_by":       t.State.ReturnApprovedBy,
		"return_approved_by_type":  t.State.ReturnApprovedByType,
		"return_approved_at":       t.State.ReturnApprovedAt,
		"return_rejected_by":       t.State.ReturnRejectedBy,
		"return_rejected_by_type":  t.State.ReturnRejectedByType,
		"return_rejected_at":       t.State.ReturnRejectedAt,
		"return_rejection_reason":  t.State.ReturnRejectionReason,
		"updated_at":               t.At,
	}
	if t.Status != "" {
		set["status"] = t.Status
	}
	if t.CompletedAt != nil {
		set["completed_at"] = t.CompletedAt
	}

	filter := versionFilter(bookingID, expectedVersion)
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	return r.guardedUpdate(ctx, filter, update)
}

// versionFilter matches the booking at the version the caller read. Rows written
// before versioning have no version field and count as version 0.
func versionFilter(bookingID string, version int64) bson.M {
	if version == 0 {
		return bson.M{
			"id": bookingID,
			"$or": bson.A{
				bson.M{"version": version},
				bson.M{"version": bson.M{"$exists": false}},
			},
		}
	}
	return bson.M{"id": bookingID, "version": version}
}

func (r *MongoBookingRepo) guardedUpdate(ctx context.Context, filter, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return database.ErrConflict
	}
	return nil
}
