package repositories

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"youth-press/lifecycle"
	"youth-press/models"
	"youth-press/review"
)

// testDatabase connects to MONGO_TEST_URI and returns a throwaway database.
func testDatabase(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cl, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	d := cl.Database("youth_press_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = d.Drop(ctx)
		_ = cl.Disconnect(ctx)
	})
	return d
}

func pendingArticle(author string) *models.Article {
	return &models.Article{
		AuthorID: author,
		Slug:     "library-hours-" + uuid.NewString()[:8],
		Title:    "Library hours",
		Content:  "The library will stay open later.",
		Type:     "reporting",
		Status:   string(lifecycle.StatusPendingAIReview),
	}
}

func TestArticleRepositoryApplyReviewOnlyWhilePending(t *testing.T) {
	d := testDatabase(t)
	repo := NewArticleRepository(d)
	ctx := context.Background()

	a := pendingArticle("u1")
	require.NoError(t, repo.Insert(ctx, a))

	now := time.Now().UTC().Truncate(time.Millisecond)
	raw := `{"decision":"approved"}`
	u := review.Update{
		Type:        review.CategoryExplainer,
		AIStatus:    review.DecisionApproved,
		AIFeedback:  "Nice.",
		Status:      lifecycle.StatusApproved,
		PublishedAt: &now,
		RawResponse: &raw,
	}
	require.NoError(t, repo.ApplyReview(ctx, a.ID.Hex(), u))

	got, err := repo.FindByID(ctx, a.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, string(lifecycle.StatusApproved), got.Status)
	assert.Equal(t, "explainer", got.Type)
	require.NotNil(t, got.PublishedAt)
	require.NotNil(t, got.AIRawResponse)

	// second write loses: the article already left pending_ai_review
	err = repo.ApplyReview(ctx, a.ID.Hex(), u)
	assert.ErrorIs(t, err, review.ErrArticleNotPending)
}

func TestArticleRepositoryTransitionIsConditional(t *testing.T) {
	d := testDatabase(t)
	repo := NewArticleRepository(d)
	ctx := context.Background()

	a := pendingArticle("u1")
	a.Status = string(lifecycle.StatusApproved)
	require.NoError(t, repo.Insert(ctx, a))

	got, err := repo.Transition(ctx, a.ID, lifecycle.StatusApproved, lifecycle.StatusPublished)
	require.NoError(t, err)
	assert.Equal(t, string(lifecycle.StatusPublished), got.Status)
	assert.NotNil(t, got.PublishedAt)

	_, err = repo.Transition(ctx, a.ID, lifecycle.StatusApproved, lifecycle.StatusDraft)
	assert.ErrorIs(t, err, ErrStatusConflict)

	got, err = repo.Transition(ctx, a.ID, lifecycle.StatusPublished, lifecycle.StatusDraft)
	require.NoError(t, err)
	assert.Nil(t, got.PublishedAt)
	assert.Nil(t, got.AIStatus)
}

func TestArticleRepositoryFindByMalformedID(t *testing.T) {
	d := testDatabase(t)
	_, err := NewArticleRepository(d).FindByID(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRateEventRepositoryCounts(t *testing.T) {
	d := testDatabase(t)
	store := NewRateEventRepository(d)
	ctx := context.Background()
	now := time.Now()
	window := now.Add(-time.Hour)

	ok, err := store.Add(ctx, "k", now.Add(-26*time.Hour), now.Add(-26*time.Hour), 2)
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < 2; i++ {
		ok, err = store.Add(ctx, "k", window, now, 2)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err = store.Add(ctx, "k", window, now, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Count(ctx, "k", window)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestRateEventRepositoryRacingAdds(t *testing.T) {
	d := testDatabase(t)
	store := NewRateEventRepository(d)
	ctx := context.Background()
	now := time.Now()
	window := now.Add(-time.Hour)

	var wg sync.WaitGroup
	var granted atomic.Int64
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := store.Add(ctx, "race", window, now, 2); err == nil && ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2), granted.Load())
	n, err := store.Count(ctx, "race", window)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDiscussionRepositoryEnsureKeepsFirstQuestion(t *testing.T) {
	d := testDatabase(t)
	repo := NewDiscussionRepository(d)
	ctx := context.Background()
	articleID := primitive.NewObjectID()

	first, err := repo.Ensure(ctx, articleID, "first?")
	require.NoError(t, err)
	second, err := repo.Ensure(ctx, articleID, "second?")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "first?", second.GuidingQuestion)
}

func TestPostRepositoryHidesFlagged(t *testing.T) {
	d := testDatabase(t)
	repo := NewPostRepository(d)
	ctx := context.Background()
	disc, err := NewDiscussionRepository(d).Ensure(ctx, primitive.NewObjectID(), "q?")
	require.NoError(t, err)

	visible := &models.Post{DiscussionID: disc.ID, AuthorID: "u1", Content: "first"}
	hidden := &models.Post{DiscussionID: disc.ID, AuthorID: "u2", Content: "second"}
	require.NoError(t, repo.Insert(ctx, visible))
	require.NoError(t, repo.Insert(ctx, hidden))
	require.NoError(t, repo.SetFlagged(ctx, hidden.ID.Hex(), true))

	posts, err := repo.ListVisible(ctx, disc.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "first", posts[0].Content)

	flagged, err := repo.ListFlagged(ctx, 10)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, hidden.ID, flagged[0].ID)
}
