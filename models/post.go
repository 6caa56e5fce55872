package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discussion is created lazily, one per article
// Collection: discussions
type Discussion struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	ArticleID       primitive.ObjectID `bson:"article_id" json:"article_id"`
	GuidingQuestion string             `bson:"guiding_question" json:"guiding_question"`
}

// Post is a discussion response
// Collection: posts
//
//	flagged: 공개 조회에서 제외, 모더레이터 검토용으로 보존
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	DiscussionID primitive.ObjectID `bson:"discussion_id" json:"discussion_id"`
	AuthorID     string             `bson:"author_id" json:"author_id"`
	Content      string             `bson:"content" json:"content"`
	Flagged      bool               `bson:"flagged" json:"flagged"`
}
