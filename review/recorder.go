package review

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"youth-press/config"
	"youth-press/lifecycle"
)

var (
	// ErrOptionalFieldRejected is returned by a Store when the backing
	// collection refuses the optional raw-response field.
	ErrOptionalFieldRejected = errors.New("store rejected optional raw response field")
	// ErrArticleNotPending is returned by a Store when the article left
	// pending_ai_review before the result could be written.
	ErrArticleNotPending = errors.New("article is no longer pending review")
)

// Update is the fixed field set written after a review. A nil PublishedAt
// clears the column; a nil RawResponse leaves it out of the write.
type Update struct {
	Type        Category
	AIStatus    Decision
	AIFeedback  string
	Status      lifecycle.Status
	PublishedAt *time.Time
	RawResponse *string
}

type Store interface {
	// ApplyReview must only write while the article is still pending_ai_review.
	ApplyReview(ctx context.Context, articleID string, u Update) error
}

// Recorder persists review results.
type Recorder struct {
	store    Store
	storeRaw atomic.Bool
	now      func() time.Time
}

// NewRecorder builds a recorder. storeRaw comes from the startup capability probe.
func NewRecorder(store Store, storeRaw bool) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	r.storeRaw.Store(storeRaw)
	return r
}

// Record writes res and returns the status the article moved to. When the
// store refuses the raw-response field the write is retried once without it
// and the field is not attempted again.
func (r *Recorder) Record(ctx context.Context, articleID string, res Result) (lifecycle.Status, error) {
	status, err := lifecycle.ReviewOutcome(string(res.Decision))
	if err != nil {
		return "", err
	}

	u := Update{
		Type:       res.Category,
		AIStatus:   res.Decision,
		AIFeedback: res.Feedback,
		Status:     status,
	}
	if status.HasPublishedAt() {
		now := r.now()
		u.PublishedAt = &now
	}
	if r.storeRaw.Load() && res.Raw != "" {
		raw := res.Raw
		u.RawResponse = &raw
	}

	err = r.store.ApplyReview(ctx, articleID, u)
	if errors.Is(err, ErrOptionalFieldRejected) && u.RawResponse != nil {
		config.WarnWithFields("raw response field rejected, retrying without it", config.Fields{
			"article_id": articleID,
			"error":      err.Error(),
		})
		r.storeRaw.Store(false)
		u.RawResponse = nil
		err = r.store.ApplyReview(ctx, articleID, u)
	}
	if err != nil {
		return "", fmt.Errorf("persist review for %s: %w", articleID, err)
	}
	return status, nil
}
