package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deducta-loan-ledger/internal/domain/batch"
)

const (
	// SheetCollectionName is the name of the archived sheet collection in MongoDB
	SheetCollectionName = "deduction_sheets"
)

type sheetDocument struct {
	Key        string    `bson:"key"`
	Data       []byte    `bson:"data"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

// FileStore implements the batch.FileStore interface on a MongoDB collection.
// Sheets are small (thousands of rows of CSV) so a plain document per sheet
// is enough; no GridFS.
type FileStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewFileStore creates a new MongoDB-backed sheet archive
func NewFileStore(logger *slog.Logger, db *mongo.Database) batch.FileStore {
	return &FileStore{
		db:     db,
		logger: logger,
	}
}

// Save archives the raw sheet bytes under the key. Re-uploading the same key
// replaces the previous copy.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	collection := s.db.Collection(SheetCollectionName)

	filter := bson.M{"key": key}
	doc := sheetDocument{
		Key:        key,
		Data:       data,
		UploadedAt: time.Now(),
	}

	_, err := collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		s.logger.Error("Failed to archive deduction sheet", "key", key, "error", err)
		return fmt.Errorf("failed to archive deduction sheet: %w", err)
	}

	return nil
}

// Get fetches the archived sheet bytes by key.
// Returns ErrFileNotFound when no sheet was archived under the key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	collection := s.db.Collection(SheetCollectionName)

	var doc sheetDocument
	err := collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, batch.ErrFileNotFound{Key: key}
		}
		s.logger.Error("Failed to fetch archived deduction sheet", "key", key, "error", err)
		return nil, fmt.Errorf("failed to fetch archived deduction sheet: %w", err)
	}

	return doc.Data, nil
}
