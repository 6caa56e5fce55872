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

type ArticleMediaRepository struct {
	col *mongo.Collection
}

func NewArticleMediaRepository(d *mongo.Database) *ArticleMediaRepository {
	return &ArticleMediaRepository{col: d.Collection("article_media")}
}

// Replace empties the article's media slot and stores m in it. A nil m
// just empties the slot.
func (r *ArticleMediaRepository) Replace(ctx context.Context, articleID primitive.ObjectID, m *models.ArticleMedia) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"article_id": articleID}); err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	m.ArticleID = articleID
	m.SortOrder = 0
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, m)
	return err
}

// FindByArticle returns the article's media item, or nil if the slot is empty.
func (r *ArticleMediaRepository) FindByArticle(ctx context.Context, articleID primitive.ObjectID) (*models.ArticleMedia, error) {
	var m models.ArticleMedia
	err := r.col.FindOne(ctx, bson.M{"article_id": articleID},
		options.FindOne().SetSort(bson.D{{Key: "sort_order", Value: 1}}),
	).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
