package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"youth-press/cmd/api/dto"
	"youth-press/cmd/api/trace"
	"youth-press/config"
	"youth-press/lifecycle"
	"youth-press/models"
	"youth-press/parser"
	"youth-press/repositories"
	"youth-press/review"
)

const (
	msgMissingFields = "Missing required fields"
	msgInvalidType   = "Invalid article type"
	msgInvalidMedia  = "Invalid media URL. Wait for image upload to finish and try again."

	msgReviewed = "Article submitted and reviewed successfully."
	msgPending  = "Article submitted for review. AI review is pending."
)

var mediaURLPattern = regexp.MustCompile(`(?i)^https?://`)

type ArticleStore interface {
	review.Store
	Insert(ctx context.Context, a *models.Article) error
	FindByID(ctx context.Context, id string) (*models.Article, error)
	ListByAuthor(ctx context.Context, authorID string, status lifecycle.Status, limit int64) ([]models.Article, error)
	Transition(ctx context.Context, id primitive.ObjectID, from, to lifecycle.Status) (*models.Article, error)
	Resubmit(ctx context.Context, id primitive.ObjectID, from lifecycle.Status, c repositories.ContentUpdate) (*models.Article, error)
}

type MediaStore interface {
	Replace(ctx context.Context, articleID primitive.ObjectID, m *models.ArticleMedia) error
	FindByArticle(ctx context.Context, articleID primitive.ObjectID) (*models.ArticleMedia, error)
}

// AuditLog appends moderation log entries without blocking the caller.
type AuditLog interface {
	AppendLog(ctx context.Context, targetType, targetID, action, reason string, moderatorID *string)
}

type ArticleService struct {
	articles     ArticleStore
	media        MediaStore
	orchestrator *review.Orchestrator
	recorder     *review.Recorder
	audit        AuditLog
	batchLimit   int

	// one review per article at a time within this process
	inflight singleflight.Group
}

func NewArticleService(articles ArticleStore, media MediaStore, orchestrator *review.Orchestrator, recorder *review.Recorder, audit AuditLog, batchLimit int) *ArticleService {
	if batchLimit <= 0 || batchLimit > config.DefaultReviewBatchLimit {
		batchLimit = config.DefaultReviewBatchLimit
	}
	return &ArticleService{
		articles:     articles,
		media:        media,
		orchestrator: orchestrator,
		recorder:     recorder,
		audit:        audit,
		batchLimit:   batchLimit,
	}
}

type validatedArticle struct {
	content repositories.ContentUpdate
	media   *models.ArticleMedia
}

func validateArticle(in dto.ArticleRequestDTO) (validatedArticle, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Type == "" || !parser.HasVisibleText(in.Content) {
		return validatedArticle{}, invalid(msgMissingFields)
	}
	if _, ok := review.ParseCategory(in.Type); !ok {
		return validatedArticle{}, invalid(msgInvalidType)
	}

	var media *models.ArticleMedia
	for _, m := range in.Media {
		url := strings.TrimSpace(m.URL)
		if mediaURLPattern.MatchString(url) {
			media = &models.ArticleMedia{URL: url, Caption: strings.TrimSpace(m.Caption)}
			break
		}
	}
	if len(in.Media) > 0 && media == nil {
		return validatedArticle{}, invalid(msgInvalidMedia)
	}

	return validatedArticle{
		content: repositories.ContentUpdate{
			Title:      title,
			Content:    in.Content,
			Type:       in.Type,
			Disclosure: strings.TrimSpace(in.Disclosure),
			ContextBox: strings.TrimSpace(in.ContextBox),
		},
		media: media,
	}, nil
}

// Submit creates an article in pending_ai_review and reviews it in the
// same request. A failed review does not fail the submission.
func (s *ArticleService) Submit(ctx context.Context, actor lifecycle.Actor, in dto.ArticleRequestDTO) (*dto.SubmitArticleResponseDTO, error) {
	v, err := validateArticle(in)
	if err != nil {
		return nil, err
	}

	a := &models.Article{
		AuthorID:   actor.ID,
		Slug:       parser.NewSlug(v.content.Title),
		Title:      v.content.Title,
		Content:    v.content.Content,
		Type:       v.content.Type,
		Disclosure: v.content.Disclosure,
		ContextBox: v.content.ContextBox,
		Status:     string(lifecycle.StatusPendingAIReview),
	}
	if err := s.articles.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("insert article: %w", err)
	}
	var mediaErr error
	if v.media != nil {
		mediaErr = s.media.Replace(ctx, a.ID, v.media)
	}

	return s.reviewAndRespond(ctx, a, v.media, mediaErr)
}

// Update replaces an article's content and media and sends it back to review.
func (s *ArticleService) Update(ctx context.Context, actor lifecycle.Actor, id string, in dto.ArticleRequestDTO) (*dto.SubmitArticleResponseDTO, error) {
	v, err := validateArticle(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Article not found")
		}
		return nil, err
	}
	if err := lifecycle.Resubmit(actor, existing.AuthorID, lifecycle.Status(existing.Status)); err != nil {
		if errors.Is(err, lifecycle.ErrForbidden) {
			return nil, forbidden("Not allowed")
		}
		return nil, conflict("Only drafts and articles that need revision can be resubmitted")
	}

	a, err := s.articles.Resubmit(ctx, existing.ID, lifecycle.Status(existing.Status), v.content)
	if err != nil {
		return nil, err
	}
	mediaErr := s.media.Replace(ctx, a.ID, v.media)

	return s.reviewAndRespond(ctx, a, v.media, mediaErr)
}

// reviewAndRespond runs after the article write has succeeded, so neither a
// media nor a review failure turns the response into an error.
func (s *ArticleService) reviewAndRespond(ctx context.Context, a *models.Article, media *models.ArticleMedia, mediaErr error) (*dto.SubmitArticleResponseDTO, error) {
	resp := &dto.SubmitArticleResponseDTO{Success: true, Message: msgPending}

	if mediaErr != nil {
		media = nil
		resp.MediaError = "Article media could not be saved. Edit the article to add it again."
		config.ErrorWithFields("article media not stored", config.Fields{
			"article_id": a.ID.Hex(),
			"request_id": trace.RequestIDFromContext(ctx),
			"error":      mediaErr.Error(),
		})
	}

	if _, err := s.review(ctx, a); err != nil {
		resp.ReviewError = "AI review could not be saved"
		config.ErrorWithFields("review not recorded", config.Fields{
			"article_id": a.ID.Hex(),
			"request_id": trace.RequestIDFromContext(ctx),
			"error":      err.Error(),
		})
	} else {
		resp.Reviewed = true
		resp.Message = msgReviewed
		if refreshed, err := s.articles.FindByID(ctx, a.ID.Hex()); err == nil {
			a = refreshed
		}
	}

	resp.Article = dto.NewArticleDTO(a, media)
	return resp, nil
}

type reviewOutcome struct {
	status lifecycle.Status
	result review.Result
}

// review runs the orchestrator and records its result. Concurrent calls for
// the same article share one run.
func (s *ArticleService) review(ctx context.Context, a *models.Article) (reviewOutcome, error) {
	id := a.ID.Hex()
	v, err, _ := s.inflight.Do(id, func() (interface{}, error) {
		reqID, span := trace.NextSpanID(ctx)
		res := s.orchestrator.Review(ctx, review.Article{
			ID:           id,
			Title:        a.Title,
			Content:      parser.StripHTMLToText(a.Content),
			DeclaredType: a.Type,
			Disclosure:   a.Disclosure,
		})
		config.InfoWithFields("article reviewed", config.Fields{
			"article_id": id,
			"request_id": reqID,
			"span_id":    span,
			"decision":   string(res.Decision),
			"category":   string(res.Category),
			"source":     string(res.Source),
		})

		status, err := s.recorder.Record(ctx, id, res)
		if err != nil {
			return nil, err
		}
		return reviewOutcome{status: status, result: res}, nil
	})
	if err != nil {
		return reviewOutcome{}, err
	}
	return v.(reviewOutcome), nil
}

// Moderate applies a publish or return_to_draft action.
func (s *ArticleService) Moderate(ctx context.Context, actor lifecycle.Actor, id string, action lifecycle.Action) (*dto.ArticleDTO, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Article not found.")
		}
		return nil, err
	}

	current := lifecycle.Status(a.Status)
	next, err := lifecycle.Moderate(actor, a.AuthorID, current, action)
	if err != nil {
		switch {
		case errors.Is(err, lifecycle.ErrValidation):
			return nil, invalid("Missing or invalid action.")
		case errors.Is(err, lifecycle.ErrForbidden):
			return nil, forbidden("Forbidden")
		}
		return nil, conflict("Article cannot be " + actionVerb(action) + " from " + a.Status)
	}

	updated, err := s.articles.Transition(ctx, a.ID, current, next)
	if err != nil {
		return nil, err
	}

	if actor.Role.Privileged() {
		moderatorID := actor.ID
		auditAction, reason := models.ModerationApprove, "published by "+string(actor.Role)
		if action == lifecycle.ActionReturnToDraft {
			auditAction, reason = models.ModerationFlag, "returned to draft by "+string(actor.Role)
		}
		s.audit.AppendLog(ctx, models.TargetArticle, id, auditAction, reason, &moderatorID)
	}

	media, _ := s.media.FindByArticle(ctx, updated.ID)
	out := dto.NewArticleDTO(updated, media)
	return &out, nil
}

// ReviewPending re-reviews the caller's pending articles, newest first, one
// at a time. A failing article is logged and skipped.
func (s *ArticleService) ReviewPending(ctx context.Context, actor lifecycle.Actor) (*dto.BatchReviewResponseDTO, error) {
	pending, err := s.articles.ListByAuthor(ctx, actor.ID, lifecycle.StatusPendingAIReview, int64(s.batchLimit))
	if err != nil {
		return nil, err
	}

	resp := &dto.BatchReviewResponseDTO{Results: make([]dto.BatchReviewItemDTO, 0, len(pending))}
	for i := range pending {
		a := &pending[i]
		item := dto.BatchReviewItemDTO{ArticleID: a.ID.Hex(), Title: a.Title}

		out, err := s.review(ctx, a)
		if err != nil {
			item.Error = "AI review could not be saved"
			config.WarnWithFields("batch review skipped article", config.Fields{
				"article_id": a.ID.Hex(),
				"author_id":  actor.ID,
				"error":      err.Error(),
			})
		} else {
			item.Reviewed = true
			item.Status = string(out.status)
			item.Feedback = out.result.Feedback
			resp.Reviewed++
		}
		resp.Results = append(resp.Results, item)
	}
	resp.Total = len(resp.Results)
	return resp, nil
}

// ReviewOne reviews a single article that is still pending review.
func (s *ArticleService) ReviewOne(ctx context.Context, id string) (*dto.ReviewResultDTO, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Article not found")
		}
		return nil, err
	}
	if lifecycle.Status(a.Status) != lifecycle.StatusPendingAIReview {
		return nil, conflict("Article is not pending AI review")
	}

	out, err := s.review(ctx, a)
	if err != nil {
		return nil, err
	}
	return &dto.ReviewResultDTO{
		Decision: string(out.result.Decision),
		Category: string(out.result.Category),
		Feedback: out.result.Feedback,
		Status:   string(out.status),
	}, nil
}

// Get returns an article to its author, to privileged roles, or to anyone
// once it is approved or published.
func (s *ArticleService) Get(ctx context.Context, actor *lifecycle.Actor, id string) (*dto.ArticleDTO, error) {
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Article not found")
		}
		return nil, err
	}
	visible := lifecycle.Status(a.Status).Visible() ||
		(actor != nil && (actor.ID == a.AuthorID || actor.Role.Privileged()))
	if !visible {
		// hidden articles look missing to strangers
		return nil, notFound("Article not found")
	}

	media, err := s.media.FindByArticle(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	out := dto.NewArticleDTO(a, media)
	return &out, nil
}

// ListMine returns the caller's articles newest first.
func (s *ArticleService) ListMine(ctx context.Context, actor lifecycle.Actor) ([]dto.ArticleDTO, error) {
	list, err := s.articles.ListByAuthor(ctx, actor.ID, "", 0)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ArticleDTO, 0, len(list))
	for i := range list {
		out = append(out, dto.NewArticleDTO(&list[i], nil))
	}
	return out, nil
}

func actionVerb(a lifecycle.Action) string {
	if a == lifecycle.ActionPublish {
		return "published"
	}
	return "returned to draft"
}
