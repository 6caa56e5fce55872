package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article is a piece submitted by a writer
// Collection: articles
//
//	status:          lifecycle.Status 값 (draft, pending_ai_review, ...)
//	ai_status:       마지막 리뷰 결정, 재제출 시 null
//	ai_raw_response: 진단용, validator 가 허용하지 않으면 저장하지 않음
//	published_at:    status 가 approved/published 일 때만 존재
type Article struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
	AuthorID      string             `bson:"author_id" json:"author_id"`
	Slug          string             `bson:"slug" json:"slug"`
	Title         string             `bson:"title" json:"title"`
	Content       string             `bson:"content" json:"content"`
	Type          string             `bson:"type" json:"type"`
	Disclosure    string             `bson:"disclosure,omitempty" json:"disclosure,omitempty"`
	ContextBox    string             `bson:"context_box,omitempty" json:"context_box,omitempty"`
	Status        string             `bson:"status" json:"status"`
	AIStatus      *string            `bson:"ai_status" json:"ai_status"`
	AIFeedback    *string            `bson:"ai_feedback" json:"ai_feedback"`
	AIRawResponse *string            `bson:"ai_raw_response,omitempty" json:"-"`
	PublishedAt   *time.Time         `bson:"published_at" json:"published_at"`
}

// ArticleMedia is the single image slot of an article
// Collection: article_media
type ArticleMedia struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	ArticleID primitive.ObjectID `bson:"article_id" json:"article_id"`
	URL       string             `bson:"url" json:"url"`
	Caption   string             `bson:"caption,omitempty" json:"caption,omitempty"`
	SortOrder int                `bson:"sort_order" json:"sort_order"`
}
