package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"youth-press/models"
	"youth-press/quota"
)

// RateEventRepository is the Mongo quota.CounterStore. Old events are
// removed by the TTL index on `at`.
//
// Each event in a window takes a numbered slot encoded in its _id, so the
// unique _id index caps a window at `limit` events even when API
// instances race.
type RateEventRepository struct {
	col *mongo.Collection
}

func NewRateEventRepository(d *mongo.Database) *RateEventRepository {
	return &RateEventRepository{col: d.Collection("rate_events")}
}

var _ quota.CounterStore = (*RateEventRepository)(nil)

func slotID(key string, windowStart time.Time, slot int64) string {
	return fmt.Sprintf("%s@%d#%d", key, windowStart.UnixMilli(), slot)
}

func (r *RateEventRepository) Add(ctx context.Context, key string, windowStart, at time.Time, limit int64) (bool, error) {
	used, err := r.Count(ctx, key, windowStart)
	if err != nil {
		return false, err
	}
	// 먼저 차지된 슬롯은 건너뛰고 다음 번호를 시도한다
	for slot := used + 1; slot <= limit; slot++ {
		_, err := r.col.InsertOne(ctx, models.RateEvent{
			ID:  slotID(key, windowStart, slot),
			Key: key,
			At:  at,
		})
		if err == nil {
			return true, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return false, err
		}
	}
	return false, nil
}

func (r *RateEventRepository) Count(ctx context.Context, key string, windowStart time.Time) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"key": key, "at": bson.M{"$gte": windowStart}})
}
