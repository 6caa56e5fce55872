package dto

import (
	"time"

	"youth-press/models"
)

type DiscussionDTO struct {
	ID              string    `json:"id"`
	ArticleID       string    `json:"article_id"`
	GuidingQuestion string    `json:"guiding_question"`
	CreatedAt       time.Time `json:"created_at"`
}

func NewDiscussionDTO(d *models.Discussion) DiscussionDTO {
	return DiscussionDTO{
		ID:              d.ID.Hex(),
		ArticleID:       d.ArticleID.Hex(),
		GuidingQuestion: d.GuidingQuestion,
		CreatedAt:       d.CreatedAt,
	}
}

// CreatePostRequestDTO의 discussion_id 는 경로 파라미터로 채워진다.
type CreatePostRequestDTO struct {
	DiscussionID string `json:"-"`
	Content      string `json:"content" example:"I liked how the article quoted the librarian."`
}

type DiscussionPostDTO struct {
	ID           string    `json:"id"`
	DiscussionID string    `json:"discussion_id"`
	AuthorID     string    `json:"author_id"`
	Content      string    `json:"content"`
	Flagged      bool      `json:"flagged"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewDiscussionPostDTO(p *models.Post) DiscussionPostDTO {
	return DiscussionPostDTO{
		ID:           p.ID.Hex(),
		DiscussionID: p.DiscussionID.Hex(),
		AuthorID:     p.AuthorID,
		Content:      p.Content,
		Flagged:      p.Flagged,
		CreatedAt:    p.CreatedAt,
	}
}

// CreatePostResponseDTO는 flagged 여부와 그 이유를 함께 돌려준다.
// flagged 글도 저장은 되지만 목록에는 노출되지 않는다.
type CreatePostResponseDTO struct {
	Flagged bool              `json:"flagged"`
	Reason  []string          `json:"reason"`
	Post    DiscussionPostDTO `json:"post"`
}

type DiscussionPostsResponseDTO struct {
	Discussion DiscussionDTO       `json:"discussion"`
	Posts      []DiscussionPostDTO `json:"posts"`
}
