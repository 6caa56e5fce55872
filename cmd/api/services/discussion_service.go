package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"youth-press/cmd/api/dto"
	"youth-press/config"
	"youth-press/discussion"
	"youth-press/lifecycle"
	"youth-press/models"
	"youth-press/repositories"
)

type ArticleFinder interface {
	FindByID(ctx context.Context, id string) (*models.Article, error)
}

type DiscussionStore interface {
	Ensure(ctx context.Context, articleID primitive.ObjectID, guidingQuestion string) (*models.Discussion, error)
	FindByID(ctx context.Context, id string) (*models.Discussion, error)
}

type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	ListVisible(ctx context.Context, discussionID primitive.ObjectID) ([]models.Post, error)
}

// SafetyCheckRequester queues a committed post for the keyword screen.
type SafetyCheckRequester interface {
	RequestPostSafetyCheck(ctx context.Context, postID, content string)
}

type DiscussionService struct {
	articles    ArticleFinder
	discussions DiscussionStore
	posts       PostStore
	guard       *discussion.Guard
	audit       AuditLog
	safety      SafetyCheckRequester
}

func NewDiscussionService(articles ArticleFinder, discussions DiscussionStore, posts PostStore, guard *discussion.Guard, audit AuditLog, safety SafetyCheckRequester) *DiscussionService {
	return &DiscussionService{
		articles:    articles,
		discussions: discussions,
		posts:       posts,
		guard:       guard,
		audit:       audit,
		safety:      safety,
	}
}

// Ensure returns the discussion for an approved or published article,
// creating it on first call.
func (s *DiscussionService) Ensure(ctx context.Context, articleID string) (*dto.DiscussionDTO, error) {
	a, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Article not found")
		}
		return nil, err
	}
	if !lifecycle.Status(a.Status).Visible() {
		return nil, conflict("Discussion unavailable for this article")
	}

	d, err := s.discussions.Ensure(ctx, a.ID, discussion.GuidingQuestion(a.Title))
	if err != nil {
		return nil, fmt.Errorf("ensure discussion: %w", err)
	}
	out := dto.NewDiscussionDTO(d)
	return &out, nil
}

// ListPosts returns the discussion and its unflagged posts, oldest first.
func (s *DiscussionService) ListPosts(ctx context.Context, discussionID string) (*dto.DiscussionPostsResponseDTO, error) {
	d, err := s.discussions.FindByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Discussion not found")
		}
		return nil, err
	}

	posts, err := s.posts.ListVisible(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.DiscussionPostsResponseDTO{
		Discussion: dto.NewDiscussionDTO(d),
		Posts:      make([]dto.DiscussionPostDTO, 0, len(posts)),
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, dto.NewDiscussionPostDTO(&posts[i]))
	}
	return resp, nil
}

// CreatePost stores a post on the discussion of a still visible article,
// after the length and quota checks. Spam signals only flag the post; they
// never block it.
func (s *DiscussionService) CreatePost(ctx context.Context, actor lifecycle.Actor, in dto.CreatePostRequestDTO) (*dto.CreatePostResponseDTO, error) {
	content := strings.TrimSpace(in.Content)
	if strings.TrimSpace(in.DiscussionID) == "" || content == "" {
		return nil, invalid("Missing fields")
	}

	d, err := s.discussions.FindByID(ctx, in.DiscussionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Discussion not found")
		}
		return nil, err
	}
	// 글이 비공개로 돌아가면 토론도 닫힌다
	a, err := s.articles.FindByID(ctx, d.ArticleID.Hex())
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if a == nil || !lifecycle.Status(a.Status).Visible() {
		return nil, conflict("Discussion unavailable for this article")
	}

	verdict, err := s.guard.CanPost(ctx, actor.ID, content)
	if err != nil {
		return nil, err
	}
	if !verdict.Allowed {
		return nil, rejection(verdict, s.guard.Limits())
	}
	// CanPost 이후 다른 요청이 마지막 슬롯을 가져갔을 수 있다
	if err := s.guard.Reserve(ctx, actor.ID); err != nil {
		return nil, err
	}

	p := &models.Post{
		DiscussionID: d.ID,
		AuthorID:     actor.ID,
		Content:      content,
		Flagged:      verdict.Flagged(),
	}
	if err := s.posts.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	postID := p.ID.Hex()
	if verdict.Flagged() {
		reasons, _ := json.Marshal(verdict.SpamReasons)
		s.audit.AppendLog(ctx, models.TargetPost, postID, models.ModerationFlag, string(reasons), nil)
		config.InfoWithFields("post flagged on create", config.Fields{
			"post_id":   postID,
			"author_id": actor.ID,
			"reasons":   verdict.SpamReasons,
		})
	} else {
		s.safety.RequestPostSafetyCheck(ctx, postID, content)
	}

	reasons := verdict.SpamReasons
	if reasons == nil {
		reasons = []string{}
	}
	return &dto.CreatePostResponseDTO{
		Flagged: verdict.Flagged(),
		Reason:  reasons,
		Post:    dto.NewDiscussionPostDTO(p),
	}, nil
}

func rejection(v discussion.Verdict, limits discussion.Limits) error {
	err := v.Err()
	if errors.Is(err, discussion.ErrRateLimited) {
		return err
	}
	for _, r := range v.Reasons {
		switch r {
		case discussion.ReasonTooManyWords:
			return invalid(fmt.Sprintf("Post must be %d words or fewer", limits.MaxWords))
		case discussion.ReasonTooShort:
			return invalid("Post is too short")
		}
	}
	return &UserError{Kind: discussion.ErrValidation, Message: "Post is not valid"}
}
