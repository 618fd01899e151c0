package mongo

import (
	"context"
	"log"

	"github.com/mcupsell/upsell-board/api/internal/leaderboard/application"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ChangeFeed implements application.ChangeFeed on top of Mongo change
// streams. Delivery is at-least-once; consumers treat events as staleness
// signals only.
type ChangeFeed struct {
	database              *mongo.Database
	shiftCollection       string
	transactionCollection string
	logger                *log.Logger
}

// NewChangeFeed creates a change feed for the given database. The collection
// names tell the feed how to decode after-images.
func NewChangeFeed(db *mongo.Database, shiftCollection, transactionCollection string, logger *log.Logger) *ChangeFeed {
	return &ChangeFeed{
		database:              db,
		shiftCollection:       shiftCollection,
		transactionCollection: transactionCollection,
		logger:                logger,
	}
}

// changeEventDocument is the slice of the raw change-stream event we care
// about.
type changeEventDocument struct {
	OperationType string   `bson:"operationType"`
	FullDocument  bson.Raw `bson:"fullDocument,omitempty"`
}

// Watch opens a change stream on the collection and pumps decoded events
// into the returned channel until the release function is called or the
// parent context ends. The stream is closed on every exit path.
func (f *ChangeFeed) Watch(ctx context.Context, collection string) (<-chan application.Change, func(), error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := f.database.Collection(collection).Watch(ctx, mongo.Pipeline{}, opts)
	if err != nil {
		return nil, nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	events := make(chan application.Change)

	go func() {
		defer close(events)
		defer func() {
			if err := stream.Close(context.Background()); err != nil {
				f.logger.Printf("change stream close %s: %v", collection, err)
			}
		}()

		for stream.Next(watchCtx) {
			var raw changeEventDocument
			if err := stream.Decode(&raw); err != nil {
				f.logger.Printf("change stream decode %s: %v", collection, err)
				continue
			}
			change, ok := f.mapEvent(collection, raw)
			if !ok {
				continue
			}
			select {
			case events <- change:
			case <-watchCtx.Done():
				return
			}
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			f.logger.Printf("change stream %s terminated: %v", collection, err)
		}
	}()

	return events, cancel, nil
}

// mapEvent decodes the after-image according to the source collection. An
// event without a usable after-image (deletes, unknown collections) is still
// forwarded so consumers can mark state stale.
func (f *ChangeFeed) mapEvent(collection string, raw changeEventDocument) (application.Change, bool) {
	change := application.Change{
		Collection: collection,
		Operation:  application.ChangeOperation(raw.OperationType),
	}

	switch raw.OperationType {
	case "insert", "update", "replace", "delete":
	default:
		// invalidate and friends carry no document-level meaning here.
		return application.Change{}, false
	}

	if len(raw.FullDocument) == 0 {
		return change, true
	}

	switch collection {
	case f.shiftCollection:
		var doc ShiftDocument
		if err := bson.Unmarshal(raw.FullDocument, &doc); err != nil {
			f.logger.Printf("change stream %s: shift decode: %v", collection, err)
			return change, true
		}
		shift := mapShiftDocument(doc)
		change.Shift = &shift
	case f.transactionCollection:
		var doc TransactionDocument
		if err := bson.Unmarshal(raw.FullDocument, &doc); err != nil {
			f.logger.Printf("change stream %s: transaction decode: %v", collection, err)
			return change, true
		}
		tx := mapTransactionDocument(doc)
		change.Transaction = &tx
	}
	return change, true
}
