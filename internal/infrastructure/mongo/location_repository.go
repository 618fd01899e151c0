package mongo

import (
	"context"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LocationRepository implements application.LocationRepository using MongoDB.
type LocationRepository struct {
	collection *mongo.Collection
}

// NewLocationRepository creates a Mongo-backed location repository.
func NewLocationRepository(db *mongo.Database, collectionName string) *LocationRepository {
	return &LocationRepository{collection: db.Collection(collectionName)}
}

// FindByID returns a single location by its identifier.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*domain.Location, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id can never resolve.
		return nil, mongo.ErrNoDocuments
	}
	var doc LocationDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		return nil, err
	}
	location := mapLocationDocument(doc)
	return &location, nil
}

// Find returns all locations.
func (r *LocationRepository) Find(ctx context.Context) ([]domain.Location, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	locations := make([]domain.Location, 0)
	for cursor.Next(ctx) {
		var doc LocationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		locations = append(locations, mapLocationDocument(doc))
	}
	return locations, cursor.Err()
}

func mapLocationDocument(doc LocationDocument) domain.Location {
	return domain.Location{
		ID:        doc.ID.Hex(),
		Name:      doc.Name,
		Timezone:  doc.Timezone,
		CreatedAt: doc.CreatedAt,
	}
}
