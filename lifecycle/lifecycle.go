// Package lifecycle defines article states, roles and the legal transitions
// between states, along with who may trigger each one.
package lifecycle

import (
	"errors"
	"fmt"
	"slices"
)

type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingAIReview Status = "pending_ai_review"
	StatusNeedsRevision   Status = "needs_revision"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusPublished       Status = "published"
)

var AllStatuses = []Status{
	StatusDraft,
	StatusPendingAIReview,
	StatusNeedsRevision,
	StatusApproved,
	StatusRejected,
	StatusPublished,
}

func (s Status) Valid() bool { return slices.Contains(AllStatuses, s) }

// HasPublishedAt reports whether an article in this status carries published_at.
func (s Status) HasPublishedAt() bool {
	return s == StatusApproved || s == StatusPublished
}

// Visible reports whether readers other than the author may see the article.
func (s Status) Visible() bool { return s.HasPublishedAt() }

type Role string

const (
	RoleReader    Role = "reader"
	RoleWriter    Role = "writer"
	RoleEditor    Role = "editor"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Privileged roles may bypass author-only transition restrictions.
func (r Role) Privileged() bool {
	return r == RoleEditor || r == RoleModerator || r == RoleAdmin
}

// Actor is the authenticated caller of a lifecycle operation.
type Actor struct {
	ID   string
	Role Role
}

type Action string

const (
	ActionPublish       Action = "publish"
	ActionReturnToDraft Action = "return_to_draft"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionPublish, ActionReturnToDraft:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}

var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("not allowed for this actor")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// Moderate checks a manual moderation action and returns the target status.
// The author may publish only from approved and may return to draft from any
// status but published; privileged roles may do either from any status.
func Moderate(actor Actor, authorID string, current Status, action Action) (Status, error) {
	isAuthor := actor.ID != "" && actor.ID == authorID
	privileged := actor.Role.Privileged()

	switch action {
	case ActionPublish:
		if privileged {
			return StatusPublished, nil
		}
		if !isAuthor {
			return "", ErrForbidden
		}
		if current != StatusApproved {
			return "", fmt.Errorf("%w: cannot publish from %s", ErrIllegalTransition, current)
		}
		return StatusPublished, nil

	case ActionReturnToDraft:
		if privileged {
			return StatusDraft, nil
		}
		if !isAuthor {
			return "", ErrForbidden
		}
		if current == StatusPublished {
			return "", fmt.Errorf("%w: published articles can only be returned to draft by an editor", ErrIllegalTransition)
		}
		return StatusDraft, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, action)
}

// resubmittable statuses are the ones an author may edit and send back to review.
var resubmittable = []Status{StatusNeedsRevision, StatusDraft}

// Resubmit checks an edit-and-resubmit by the author.
func Resubmit(actor Actor, authorID string, current Status) error {
	if actor.ID == "" || actor.ID != authorID {
		return ErrForbidden
	}
	if !slices.Contains(resubmittable, current) {
		return fmt.Errorf("%w: cannot resubmit from %s", ErrIllegalTransition, current)
	}
	return nil
}

// ReviewOutcome maps a reviewer decision onto the next status. The
// vocabularies are kept separate so a human override can diverge later.
func ReviewOutcome(decision string) (Status, error) {
	switch decision {
	case "approved":
		return StatusApproved, nil
	case "needs_revision":
		return StatusNeedsRevision, nil
	case "rejected":
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
}
