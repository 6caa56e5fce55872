package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TargetPost    = "post"
	TargetArticle = "article"

	ModerationFlag    = "flag"
	ModerationApprove = "approve"
	ModerationRemove  = "remove"
)

// ModerationLog is an append-only audit entry. A nil ModeratorID means the
// entry was written by the system.
// Collection: moderation_logs
type ModerationLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	TargetType  string             `bson:"target_type" json:"target_type"`
	TargetID    string             `bson:"target_id" json:"target_id"`
	Action      string             `bson:"action" json:"action"`
	Reason      string             `bson:"reason" json:"reason"`
	ModeratorID *string            `bson:"moderator_id" json:"moderator_id"`
}
