package mongo

import (
	"context"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ShiftRepository implements application.ShiftRepository using MongoDB.
type ShiftRepository struct {
	collection *mongo.Collection
}

// NewShiftRepository creates a Mongo-backed shift repository.
func NewShiftRepository(db *mongo.Database, collectionName string) *ShiftRepository {
	return &ShiftRepository{collection: db.Collection(collectionName)}
}

// FindOpenByLocation returns every shift at the location with no recorded
// end time.
func (r *ShiftRepository) FindOpenByLocation(ctx context.Context, locationID string) ([]domain.Shift, error) {
	locationObjID, err := primitive.ObjectIDFromHex(locationID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"locationId": locationObjID,
		"endedAt":    bson.M{"$exists": false},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	shifts := make([]domain.Shift, 0)
	for cursor.Next(ctx) {
		var doc ShiftDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		shifts = append(shifts, mapShiftDocument(doc))
	}
	return shifts, cursor.Err()
}

// Open inserts a new open shift and reflects the assigned identifier back
// onto the domain model.
func (r *ShiftRepository) Open(ctx context.Context, shift *domain.Shift) error {
	employeeObjID, err := primitive.ObjectIDFromHex(shift.EmployeeID)
	if err != nil {
		return err
	}
	locationObjID, err := primitive.ObjectIDFromHex(shift.LocationID)
	if err != nil {
		return err
	}

	doc := ShiftDocument{
		ID:         primitive.NewObjectID(),
		EmployeeID: employeeObjID,
		LocationID: locationObjID,
		StartedAt:  shift.StartedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	shift.ID = doc.ID.Hex()
	return nil
}

// CloseByEmployee stamps an end time on every open shift the employee holds.
// Closing all of them, not just the latest, is what heals a duplicate
// open-shift anomaly.
func (r *ShiftRepository) CloseByEmployee(ctx context.Context, employeeID string, endedAt time.Time) (int, error) {
	employeeObjID, err := primitive.ObjectIDFromHex(employeeID)
	if err != nil {
		return 0, err
	}

	filter := bson.M{
		"employeeId": employeeObjID,
		"endedAt":    bson.M{"$exists": false},
	}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"endedAt": endedAt}})
	if err != nil {
		return 0, err
	}
	return int(result.ModifiedCount), nil
}

func mapShiftDocument(doc ShiftDocument) domain.Shift {
	return domain.Shift{
		ID:         doc.ID.Hex(),
		EmployeeID: doc.EmployeeID.Hex(),
		LocationID: doc.LocationID.Hex(),
		StartedAt:  doc.StartedAt,
		EndedAt:    doc.EndedAt,
	}
}
