package services

import (
	"errors"

	"youth-press/cmd/api/dto"
	"youth-press/discussion"
	"youth-press/lifecycle"
	"youth-press/repositories"
	"youth-press/review"
)

// UserError carries a message meant for the caller next to the sentinel
// that classifies it.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Kind }

func invalid(msg string) error   { return &UserError{Kind: lifecycle.ErrValidation, Message: msg} }
func forbidden(msg string) error { return &UserError{Kind: lifecycle.ErrForbidden, Message: msg} }
func conflict(msg string) error {
	return &UserError{Kind: lifecycle.ErrIllegalTransition, Message: msg}
}
func notFound(msg string) error { return &UserError{Kind: repositories.ErrNotFound, Message: msg} }

// Message returns the caller-facing text for err.
func Message(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	switch {
	case errors.Is(err, discussion.ErrRateLimited):
		return "Rate limit exceeded. Try again tomorrow."
	case errors.Is(err, repositories.ErrStatusConflict), errors.Is(err, review.ErrArticleNotPending):
		return "Article changed while the request was running. Reload and try again."
	case errors.Is(err, repositories.ErrNotFound):
		return "Not found"
	}
	return "Internal server error"
}

// ErrorResponse builds the JSON body for err.
func ErrorResponse(err error) dto.ErrorResponseDTO {
	return dto.ErrorResponseDTO{Error: Message(err)}
}
