package repositories

import (
	"context"
	"time"

	"github.com/pulsegram/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsageRepository appends token usage audit records. Records are
// write-once; there is no update path.
type UsageRepository interface {
	Append(ctx context.Context, record *models.TokenUsageRecord) error
	GetByUserID(ctx context.Context, userID uint, limit int64) ([]models.TokenUsageRecord, error)
}

type mongoUsageRepository struct {
	collection *mongo.Collection
}

func NewMongoUsageRepository(db *mongo.Database) UsageRepository {
	return &mongoUsageRepository{collection: db.Collection("token_usage_records")}
}

func (r *mongoUsageRepository) Append(ctx context.Context, record *models.TokenUsageRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *mongoUsageRepository) GetByUserID(ctx context.Context, userID uint, limit int64) ([]models.TokenUsageRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.TokenUsageRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
