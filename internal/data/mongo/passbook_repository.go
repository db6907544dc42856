package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wallet-ledger/internal/domain/passbook"
)

const (
	// PassbookCollectionName is the name of the passbook collection in MongoDB
	PassbookCollectionName = "passbook_entries"
)

// PassbookRepository implements the passbook.Repository interface for MongoDB
type PassbookRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

var _ passbook.Repository = (*PassbookRepository)(nil)

// NewPassbookRepository creates a new MongoDB passbook repository
func NewPassbookRepository(logger *slog.Logger, db *mongo.Database) *PassbookRepository {
	return &PassbookRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the owner/timestamp index used by passbook pages
func (r *PassbookRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(PassbookCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create passbook index: %w", err)
	}
	return nil
}

// Upsert replaces the record keyed by its entry id, inserting it when absent.
// Replaying the same ledger event leaves a single document.
func (r *PassbookRepository) Upsert(ctx context.Context, record *passbook.Record) error {
	collection := r.db.Collection(PassbookCollectionName)

	filter := bson.M{"_id": record.EntryID}
	opts := options.Replace().SetUpsert(true)

	if _, err := collection.ReplaceOne(ctx, filter, record, opts); err != nil {
		r.logger.Error("Failed to upsert passbook record",
			"entry_id", record.EntryID.String(),
			"owner_id", record.OwnerID.String(),
			"error", err)
		return fmt.Errorf("failed to upsert passbook record: %w", err)
	}

	return nil
}

// ListByOwner retrieves a page of the owner's passbook, newest first
func (r *PassbookRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*passbook.Record, error) {
	collection := r.db.Collection(PassbookCollectionName)

	filter := bson.M{"owner_id": ownerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get passbook records",
			"owner_id", ownerID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get passbook records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]*passbook.Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode passbook records",
			"owner_id", ownerID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode passbook records: %w", err)
	}

	return records, nil
}

// CountByOwner counts the owner's passbook records
func (r *PassbookRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	collection := r.db.Collection(PassbookCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		r.logger.Error("Failed to count passbook records",
			"owner_id", ownerID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count passbook records: %w", err)
	}

	return count, nil
}
