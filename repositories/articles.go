package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"youth-press/db"
	"youth-press/lifecycle"
	"youth-press/models"
	"youth-press/review"
)

type ArticleRepository struct {
	col *mongo.Collection
}

func NewArticleRepository(d *mongo.Database) *ArticleRepository {
	return &ArticleRepository{col: d.Collection("articles")}
}

// Insert creates a new article. CreatedAt/UpdatedAt are filled in.
func (r *ArticleRepository) Insert(ctx context.Context, a *models.Article) error {
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// FindByID returns an article by its hex id.
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	var a models.Article
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// ListByAuthor returns the author's articles newest first. An empty status
// matches every status.
func (r *ArticleRepository) ListByAuthor(ctx context.Context, authorID string, status lifecycle.Status, limit int64) ([]models.Article, error) {
	filter := bson.M{"author_id": authorID}
	if status != "" {
		filter["status"] = status
	}
	findOpts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := []models.Article{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyReview writes a review result while the article is still
// pending_ai_review. A validator refusal is reported as
// review.ErrOptionalFieldRejected so the recorder can drop the raw field.
func (r *ArticleRepository) ApplyReview(ctx context.Context, articleID string, u review.Update) error {
	oid, err := ParseID(articleID)
	if err != nil {
		return err
	}

	now := time.Now()
	set := bson.M{
		"type":         string(u.Type),
		"ai_status":    string(u.AIStatus),
		"ai_feedback":  u.AIFeedback,
		"status":       string(u.Status),
		"published_at": u.PublishedAt,
		"updated_at":   now,
	}
	if u.RawResponse != nil {
		set["ai_raw_response"] = *u.RawResponse
	}

	filter := bson.M{"_id": oid, "status": lifecycle.StatusPendingAIReview}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if db.IsDocumentValidationFailure(err) {
			return fmt.Errorf("%w: %v", review.ErrOptionalFieldRejected, err)
		}
		return err
	}
	if res.MatchedCount == 0 {
		return review.ErrArticleNotPending
	}
	return nil
}

// Transition moves an article from `from` to `to` only if its status is
// still `from`. published_at follows the target status; entering draft
// also clears the AI fields.
func (r *ArticleRepository) Transition(ctx context.Context, id primitive.ObjectID, from, to lifecycle.Status) (*models.Article, error) {
	now := time.Now()
	set := bson.M{"status": to, "updated_at": now}
	if to.HasPublishedAt() {
		set["published_at"] = now
	} else {
		set["published_at"] = nil
	}
	if to == lifecycle.StatusDraft {
		set["ai_status"] = nil
		set["ai_feedback"] = nil
	}

	var a models.Article
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStatusConflict
		}
		return nil, err
	}
	return &a, nil
}

// ContentUpdate is the editable field set of an article.
type ContentUpdate struct {
	Title      string
	Content    string
	Type       string
	Disclosure string
	ContextBox string
}

// Resubmit replaces the editable fields and puts the article back into
// pending_ai_review, clearing the previous review, if its status is still
// `from`.
func (r *ArticleRepository) Resubmit(ctx context.Context, id primitive.ObjectID, from lifecycle.Status, c ContentUpdate) (*models.Article, error) {
	set := bson.M{
		"title":        c.Title,
		"content":      c.Content,
		"type":         c.Type,
		"disclosure":   c.Disclosure,
		"context_box":  c.ContextBox,
		"status":       lifecycle.StatusPendingAIReview,
		"ai_status":    nil,
		"ai_feedback":  nil,
		"published_at": nil,
		"updated_at":   time.Now(),
	}

	var a models.Article
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set, "$unset": bson.M{"ai_raw_response": ""}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrStatusConflict
		}
		return nil, err
	}
	return &a, nil
}
