package moderation

import (
	"context"
	"fmt"

	"youth-press/config"
	"youth-press/eventbus"
	"youth-press/events"
	"youth-press/models"
	"youth-press/safety"
)

type PostFlagger interface {
	SetFlagged(ctx context.Context, postID string, flagged bool) error
}

type LogWriter interface {
	Insert(ctx context.Context, e models.ModerationLog) error
}

type EventHandlers struct {
	posts PostFlagger
	logs  LogWriter
}

func NewEventHandlers(posts PostFlagger, logs LogWriter) *EventHandlers {
	return &EventHandlers{posts: posts, logs: logs}
}

// CheckPost screens a committed post and flags it when the keyword screen
// fires. It reports whether the post was flagged.
func (h *EventHandlers) CheckPost(ctx context.Context, postID, content string) (bool, error) {
	reason, hit := safety.CheckPost(content)
	if !hit {
		return false, nil
	}
	if err := h.posts.SetFlagged(ctx, postID, true); err != nil {
		return false, fmt.Errorf("flag post %s: %w", postID, err)
	}
	err := h.logs.Insert(ctx, models.ModerationLog{
		TargetType: models.TargetPost,
		TargetID:   postID,
		Action:     models.ModerationFlag,
		Reason:     string(reason),
	})
	if err != nil {
		return true, fmt.Errorf("log flag of post %s: %w", postID, err)
	}
	config.InfoWithFields("post flagged by safety check", config.Fields{"post_id": postID, "reason": string(reason)})
	return true, nil
}

func (h *EventHandlers) HandlePostSafetyCheckRequested(ctx context.Context, e *events.PostSafetyCheckRequestedEvent) error {
	_, err := h.CheckPost(ctx, e.PostID, e.Content)
	return err
}

func (h *EventHandlers) HandleModerationLogRequested(ctx context.Context, e *events.ModerationLogRequestedEvent) error {
	return h.logs.Insert(ctx, models.ModerationLog{
		CreatedAt:   e.Timestamp,
		TargetType:  e.TargetType,
		TargetID:    e.TargetID,
		Action:      e.Action,
		Reason:      e.Reason,
		ModeratorID: e.ModeratorID,
	})
}

// Handle routes one bus event by its type. Unknown types are acknowledged.
func (h *EventHandlers) Handle(ctx context.Context, ev eventbus.Event) error {
	typ, err := events.PeekType(ev.Payload)
	if err != nil {
		return err
	}
	switch typ {
	case events.PostSafetyCheckRequested:
		v, err := eventbus.DecodeJSON[events.PostSafetyCheckRequestedEvent](ev)
		if err != nil {
			return err
		}
		return h.HandlePostSafetyCheckRequested(ctx, &v)
	case events.ModerationLogRequested:
		v, err := eventbus.DecodeJSON[events.ModerationLogRequestedEvent](ev)
		if err != nil {
			return err
		}
		return h.HandleModerationLogRequested(ctx, &v)
	default:
		return nil
	}
}
