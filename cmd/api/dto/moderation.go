package dto

import (
	"time"

	"youth-press/models"
)

type ModerationLogDTO struct {
	ID          string    `json:"id"`
	TargetType  string    `json:"target_type"`
	TargetID    string    `json:"target_id"`
	Action      string    `json:"action"`
	Reason      string    `json:"reason"`
	ModeratorID *string   `json:"moderator_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewModerationLogDTO(l *models.ModerationLog) ModerationLogDTO {
	return ModerationLogDTO{
		ID:          l.ID.Hex(),
		TargetType:  l.TargetType,
		TargetID:    l.TargetID,
		Action:      l.Action,
		Reason:      l.Reason,
		ModeratorID: l.ModeratorID,
		CreatedAt:   l.CreatedAt,
	}
}

// InternalModerateRequestDTO is sent by trusted workers with the internal key.
type InternalModerateRequestDTO struct {
	Content string `json:"content" binding:"required"`
}

type InternalModerateResponseDTO struct {
	Flagged bool   `json:"flagged"`
	Reason  string `json:"reason,omitempty"`
}
