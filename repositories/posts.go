package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"youth-press/models"
)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(d *mongo.Database) *PostRepository {
	return &PostRepository{col: d.Collection("posts")}
}

// Insert inserts a new discussion post.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// SetFlagged updates only the flagged field.
func (r *PostRepository) SetFlagged(ctx context.Context, id string, flagged bool) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"flagged": flagged}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListVisible returns a discussion's unflagged posts, oldest first.
func (r *PostRepository) ListVisible(ctx context.Context, discussionID primitive.ObjectID) ([]models.Post, error) {
	return r.list(ctx, bson.M{"discussion_id": discussionID, "flagged": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
}

// ListFlagged returns flagged posts newest first for moderator review.
func (r *PostRepository) ListFlagged(ctx context.Context, limit int64) ([]models.Post, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}
	return r.list(ctx, bson.M{"flagged": true}, findOpts)
}

func (r *PostRepository) list(ctx context.Context, filter bson.M, findOpts *options.FindOptions) ([]models.Post, error) {
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := []models.Post{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
