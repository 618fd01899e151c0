package mongo

import (
	"context"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"github.com/mcupsell/upsell-board/api/internal/leaderboard/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionRepository implements application.TransactionRepository using
// MongoDB.
type TransactionRepository struct {
	collection *mongo.Collection
}

// NewTransactionRepository creates a Mongo-backed transaction repository.
func NewTransactionRepository(db *mongo.Database, collectionName string) *TransactionRepository {
	return &TransactionRepository{collection: db.Collection(collectionName)}
}

// FindByLocationWindow returns the location's transactions created within
// [start, end), oldest first so aggregation folds in submission order.
func (r *TransactionRepository) FindByLocationWindow(ctx context.Context, locationID string, start, end time.Time) ([]domain.Transaction, error) {
	locationObjID, err := primitive.ObjectIDFromHex(locationID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"locationId": locationObjID,
		"createdAt":  bson.M{"$gte": start, "$lt": end},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeTransactions(ctx, cursor)
}

// FindByLocation returns the transaction log, newest first, with the total
// count for pagination.
func (r *TransactionRepository) FindByLocation(ctx context.Context, locationID string, paging application.Paging) ([]domain.Transaction, int, error) {
	locationObjID, err := primitive.ObjectIDFromHex(locationID)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"locationId": locationObjID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if paging.Limit > 0 {
		skip := int64((paging.Page - 1) * paging.Limit)
		if skip < 0 {
			skip = 0
		}
		opts.SetSkip(skip).SetLimit(int64(paging.Limit))
	}
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	txs, err := decodeTransactions(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return txs, int(total), nil
}

// Create inserts the transaction and reflects the assigned identifier and
// server-side timestamp back onto the domain model.
func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	employeeObjID, err := primitive.ObjectIDFromHex(tx.EmployeeID)
	if err != nil {
		return err
	}
	locationObjID, err := primitive.ObjectIDFromHex(tx.LocationID)
	if err != nil {
		return err
	}

	doc := TransactionDocument{
		ID:          primitive.NewObjectID(),
		EmployeeID:  employeeObjID,
		LocationID:  locationObjID,
		OrderNumber: tx.OrderNumber,
		Lines:       make([]LineEntryDocument, 0, len(tx.Lines)),
		CreatedAt:   time.Now().UTC(),
	}
	if tx.ShiftID != "" {
		shiftObjID, err := primitive.ObjectIDFromHex(tx.ShiftID)
		if err != nil {
			return err
		}
		doc.ShiftID = &shiftObjID
	}
	for _, line := range tx.Lines {
		itemObjID, err := primitive.ObjectIDFromHex(line.MenuItemID)
		if err != nil {
			return err
		}
		doc.Lines = append(doc.Lines, LineEntryDocument{MenuItemID: itemObjID, Quantity: line.Quantity})
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	tx.ID = doc.ID.Hex()
	tx.CreatedAt = doc.CreatedAt
	return nil
}

func decodeTransactions(ctx context.Context, cursor *mongo.Cursor) ([]domain.Transaction, error) {
	txs := make([]domain.Transaction, 0)
	for cursor.Next(ctx) {
		var doc TransactionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		txs = append(txs, mapTransactionDocument(doc))
	}
	return txs, cursor.Err()
}

func mapTransactionDocument(doc TransactionDocument) domain.Transaction {
	lines := make([]domain.LineEntry, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, domain.LineEntry{
			MenuItemID: line.MenuItemID.Hex(),
			Quantity:   line.Quantity,
		})
	}

	shiftID := ""
	if doc.ShiftID != nil {
		shiftID = doc.ShiftID.Hex()
	}

	return domain.Transaction{
		ID:          doc.ID.Hex(),
		EmployeeID:  doc.EmployeeID.Hex(),
		LocationID:  doc.LocationID.Hex(),
		ShiftID:     shiftID,
		OrderNumber: doc.OrderNumber,
		Lines:       lines,
		CreatedAt:   doc.CreatedAt,
	}
}
