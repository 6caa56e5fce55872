package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"youth-press/models"
)

// ModerationLogRepository is append-only; entries are never updated or deleted.
type ModerationLogRepository struct {
	col *mongo.Collection
}

func NewModerationLogRepository(d *mongo.Database) *ModerationLogRepository {
	return &ModerationLogRepository{col: d.Collection("moderation_logs")}
}

func (r *ModerationLogRepository) Insert(ctx context.Context, e models.ModerationLog) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, e)
	return err
}

// List returns entries newest first, optionally only one moderator's.
func (r *ModerationLogRepository) List(ctx context.Context, moderatorID string, limit int64) ([]models.ModerationLog, error) {
	filter := bson.M{}
	if moderatorID != "" {
		filter["moderator_id"] = moderatorID
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := []models.ModerationLog{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
