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

type DiscussionRepository struct {
	col *mongo.Collection
}

func NewDiscussionRepository(d *mongo.Database) *DiscussionRepository {
	return &DiscussionRepository{col: d.Collection("discussions")}
}

// Ensure returns the article's discussion, creating it with guidingQuestion
// if it does not exist yet. The question of an existing discussion is kept.
func (r *DiscussionRepository) Ensure(ctx context.Context, articleID primitive.ObjectID, guidingQuestion string) (*models.Discussion, error) {
	var d models.Discussion
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"article_id": articleID},
		bson.M{"$setOnInsert": bson.M{
			"article_id":       articleID,
			"guiding_question": guidingQuestion,
			"created_at":       time.Now(),
		}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&d)
	if mongo.IsDuplicateKeyError(err) {
		// lost the upsert race against another request; the winner's row is there now
		return r.FindByArticle(ctx, articleID)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DiscussionRepository) FindByArticle(ctx context.Context, articleID primitive.ObjectID) (*models.Discussion, error) {
	var d models.Discussion
	if err := r.col.FindOne(ctx, bson.M{"article_id": articleID}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *DiscussionRepository) FindByID(ctx context.Context, id string) (*models.Discussion, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var d models.Discussion
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}
