package services

import (
	"context"
	"errors"

	"youth-press/cmd/api/dto"
	"youth-press/lifecycle"
	"youth-press/models"
	"youth-press/repositories"
	"youth-press/safety"
)

const defaultModerationListLimit = 50

type FlaggedPostStore interface {
	FindByID(ctx context.Context, id string) (*models.Post, error)
	SetFlagged(ctx context.Context, id string, flagged bool) error
	ListFlagged(ctx context.Context, limit int64) ([]models.Post, error)
}

type ModerationLogReader interface {
	List(ctx context.Context, moderatorID string, limit int64) ([]models.ModerationLog, error)
}

// PostChecker runs the keyword screen on a stored post and flags it on a hit.
type PostChecker interface {
	CheckPost(ctx context.Context, postID, content string) (bool, error)
}

type ModerationService struct {
	posts   FlaggedPostStore
	logs    ModerationLogReader
	audit   AuditLog
	checker PostChecker
}

func NewModerationService(posts FlaggedPostStore, logs ModerationLogReader, audit AuditLog, checker PostChecker) *ModerationService {
	return &ModerationService{posts: posts, logs: logs, audit: audit, checker: checker}
}

func (s *ModerationService) FlaggedPosts(ctx context.Context) ([]dto.DiscussionPostDTO, error) {
	posts, err := s.posts.ListFlagged(ctx, defaultModerationListLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DiscussionPostDTO, 0, len(posts))
	for i := range posts {
		out = append(out, dto.NewDiscussionPostDTO(&posts[i]))
	}
	return out, nil
}

// ApprovePost clears the flag on a post and records who cleared it.
func (s *ModerationService) ApprovePost(ctx context.Context, actor lifecycle.Actor, postID string) error {
	if err := s.posts.SetFlagged(ctx, postID, false); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("Post not found")
		}
		return err
	}
	moderatorID := actor.ID
	s.audit.AppendLog(ctx, models.TargetPost, postID, models.ModerationApprove, "approved by "+string(actor.Role), &moderatorID)
	return nil
}

// Logs lists moderation entries newest first. An empty moderatorID lists
// every entry.
func (s *ModerationService) Logs(ctx context.Context, moderatorID string) ([]dto.ModerationLogDTO, error) {
	logs, err := s.logs.List(ctx, moderatorID, defaultModerationListLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ModerationLogDTO, 0, len(logs))
	for i := range logs {
		out = append(out, dto.NewModerationLogDTO(&logs[i]))
	}
	return out, nil
}

// CheckPost runs the keyword screen synchronously for a trusted caller.
func (s *ModerationService) CheckPost(ctx context.Context, postID string, in dto.InternalModerateRequestDTO) (*dto.InternalModerateResponseDTO, error) {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("Post not found")
		}
		return nil, err
	}

	flagged, err := s.checker.CheckPost(ctx, postID, in.Content)
	if err != nil {
		return nil, err
	}
	resp := &dto.InternalModerateResponseDTO{Flagged: flagged}
	if flagged {
		reason, _ := safety.CheckPost(in.Content)
		resp.Reason = string(reason)
	}
	return resp, nil
}
