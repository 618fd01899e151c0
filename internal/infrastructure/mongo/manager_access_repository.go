package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ManagerAccessRepository reads the per-location manager panel password.
type ManagerAccessRepository struct {
	collection *mongo.Collection
}

// NewManagerAccessRepository creates a Mongo-backed manager access repository.
func NewManagerAccessRepository(db *mongo.Database, collectionName string) *ManagerAccessRepository {
	return &ManagerAccessRepository{collection: db.Collection(collectionName)}
}

// Password returns the manager password configured for the location.
func (r *ManagerAccessRepository) Password(ctx context.Context, locationID string) (string, error) {
	locationObjID, err := primitive.ObjectIDFromHex(locationID)
	if err != nil {
		// A malformed id can never have credentials.
		return "", mongo.ErrNoDocuments
	}
	var doc ManagerAccessDocument
	if err := r.collection.FindOne(ctx, bson.M{"locationId": locationObjID}).Decode(&doc); err != nil {
		return "", err
	}
	return doc.Password, nil
}
