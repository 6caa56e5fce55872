package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"youth-press/lifecycle"
	"youth-press/models"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(d *mongo.Database) *UserRepository {
	return &UserRepository{col: d.Collection("users")}
}

// RoleOf returns the stored role of a user id. Users without a record are
// readers.
func (r *UserRepository) RoleOf(ctx context.Context, userID string) (lifecycle.Role, error) {
	var u models.User
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return lifecycle.RoleReader, nil
	}
	if err != nil {
		return "", err
	}
	return lifecycle.Role(u.Role), nil
}

// SetRole upserts a user's role.
func (r *UserRepository) SetRole(ctx context.Context, userID string, role lifecycle.Role) error {
	now := time.Now()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$setOnInsert": bson.M{"created_at": now},
			"$set":         bson.M{"role": role, "updated_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
