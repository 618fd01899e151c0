package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MenuItemRepository implements application.MenuItemRepository using MongoDB.
type MenuItemRepository struct {
	collection *mongo.Collection
}

// NewMenuItemRepository creates a Mongo-backed menu item repository.
func NewMenuItemRepository(db *mongo.Database, collectionName string) *MenuItemRepository {
	return &MenuItemRepository{collection: db.Collection(collectionName)}
}

// FindByLocation returns the location's vocabulary, optionally restricted to
// active items, sorted by category then name for stable display grouping.
func (r *MenuItemRepository) FindByLocation(ctx context.Context, locationID string, activeOnly bool) ([]domain.MenuItem, error) {
	locationObjID, err := primitive.ObjectIDFromHex(locationID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"locationId": locationObjID}
	if activeOnly {
		filter["active"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]domain.MenuItem, 0)
	for cursor.Next(ctx) {
		var doc MenuItemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		items = append(items, mapMenuItemDocument(doc))
	}
	return items, cursor.Err()
}

// FindByIDs bulk-loads menu items into a map keyed by hex identifier,
// inactive items included so historical transactions keep resolving.
func (r *MenuItemRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.MenuItem, error) {
	result := make(map[string]domain.MenuItem, len(ids))
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
		var doc MenuItemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		result[doc.ID.Hex()] = mapMenuItemDocument(doc)
	}
	return result, cursor.Err()
}

// Create inserts a new active menu item.
func (r *MenuItemRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	locationObjID, err := primitive.ObjectIDFromHex(item.LocationID)
	if err != nil {
		return err
	}

	doc := MenuItemDocument{
		ID:         primitive.NewObjectID(),
		Name:       strings.TrimSpace(item.Name),
		LocationID: locationObjID,
		Category:   item.Category,
		Icon:       item.Icon,
		PriceSEK:   item.PriceSEK,
		Active:     item.Active,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	item.ID = doc.ID.Hex()
	item.CreatedAt = doc.CreatedAt
	return nil
}

// Update applies a partial patch (rename, activate/deactivate) and returns
// the updated item.
func (r *MenuItemRepository) Update(ctx context.Context, id string, patch application.MenuItemPatch) (*domain.MenuItem, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	if len(set) == 0 {
		var doc MenuItemDocument
		if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
			return nil, err
		}
		item := mapMenuItemDocument(doc)
		return &item, nil
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc MenuItemDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, err
	}
	item := mapMenuItemDocument(doc)
	return &item, nil
}

func mapMenuItemDocument(doc MenuItemDocument) domain.MenuItem {
	return domain.MenuItem{
		ID:         doc.ID.Hex(),
		Name:       doc.Name,
		LocationID: doc.LocationID.Hex(),
		Category:   doc.Category,
		Icon:       doc.Icon,
		PriceSEK:   doc.PriceSEK,
		Active:     doc.Active,
		CreatedAt:  doc.CreatedAt,
	}
}
