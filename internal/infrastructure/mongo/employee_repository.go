package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EmployeeRepository implements application.EmployeeRepository using MongoDB.
type EmployeeRepository struct {
	collection *mongo.Collection
}

// NewEmployeeRepository creates a Mongo-backed employee repository.
func NewEmployeeRepository(db *mongo.Database, collectionName string) *EmployeeRepository {
	return &EmployeeRepository{collection: db.Collection(collectionName)}
}

// FindByID returns a single employee by its identifier.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*domain.Employee, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var doc EmployeeDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, err
	}
	employee := mapEmployeeDocument(doc)
	return &employee, nil
}

// FindByIDs bulk-loads employees into a map keyed by hex identifier.
// Unresolvable identifiers are simply absent from the result.
func (r *EmployeeRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.Employee, error) {
	result := make(map[string]domain.Employee, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc EmployeeDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result[doc.ID.Hex()] = mapEmployeeDocument(doc)
	}
	return result, cursor.Err()
}

// UpsertByName registers the employee on first clock-in; later clock-ins
// return the existing record unchanged.
func (r *EmployeeRepository) UpsertByName(ctx context.Context, locationID, name string) (*domain.Employee, error) {
	locationObjID, err := primitive.ObjectIDFromHex(locationID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)

	filter := bson.M{"locationId": locationObjID, "name": name}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"name":       name,
			"locationId": locationObjID,
			"createdAt":  time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc EmployeeDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	employee := mapEmployeeDocument(doc)
	return &employee, nil
}

func mapEmployeeDocument(doc EmployeeDocument) domain.Employee {
	return domain.Employee{
		ID:         doc.ID.Hex(),
		Name:       doc.Name,
		LocationID: doc.LocationID.Hex(),
		CreatedAt:  doc.CreatedAt,
	}
}
