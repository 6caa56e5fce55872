package dto

import (
	"time"

	"youth-press/models"
)

type MediaInputDTO struct {
	URL     string `json:"url" example:"https://cdn.example.org/uploads/photo.jpg"`
	Caption string `json:"caption" example:"Students outside the library"`
}

// ArticleRequestDTO는 기사 제출/수정 요청 본문이다.
// 첫 번째 유효한 media 항목만 저장된다.
type ArticleRequestDTO struct {
	Title      string          `json:"title" example:"New library hours"`
	Type       string          `json:"type" example:"reporting"`
	Content    string          `json:"content" example:"<p>The library will stay open until 8pm...</p>"`
	Disclosure string          `json:"disclosure" example:"I work part-time at the library."`
	ContextBox string          `json:"context_box"`
	Media      []MediaInputDTO `json:"media"`
}

type MediaDTO struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// ArticleDTO hides the stored raw model reply.
type ArticleDTO struct {
	ID          string     `json:"id"`
	AuthorID    string     `json:"author_id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Type        string     `json:"type"`
	Disclosure  string     `json:"disclosure,omitempty"`
	ContextBox  string     `json:"context_box,omitempty"`
	Status      string     `json:"status"`
	AIStatus    *string    `json:"ai_status"`
	AIFeedback  *string    `json:"ai_feedback"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Media       *MediaDTO  `json:"media,omitempty"`
}

func NewArticleDTO(a *models.Article, media *models.ArticleMedia) ArticleDTO {
	out := ArticleDTO{
		ID:          a.ID.Hex(),
		AuthorID:    a.AuthorID,
		Slug:        a.Slug,
		Title:       a.Title,
		Content:     a.Content,
		Type:        a.Type,
		Disclosure:  a.Disclosure,
		ContextBox:  a.ContextBox,
		Status:      a.Status,
		AIStatus:    a.AIStatus,
		AIFeedback:  a.AIFeedback,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if media != nil {
		out.Media = &MediaDTO{URL: media.URL, Caption: media.Caption}
	}
	return out
}

// SubmitArticleResponseDTO is returned by submit and update. The article is
// stored even when its media or review could not be saved.
type SubmitArticleResponseDTO struct {
	Success     bool       `json:"success"`
	Message     string     `json:"message"`
	Reviewed    bool       `json:"reviewed"`
	ReviewError string     `json:"review_error,omitempty"`
	MediaError  string     `json:"media_error,omitempty"`
	Article     ArticleDTO `json:"article"`
}

type ModerateArticleRequestDTO struct {
	Action string `json:"action" binding:"required" example:"publish"`
}

type ReviewResultDTO struct {
	Decision string `json:"decision" example:"needs_revision"`
	Category string `json:"category" example:"explainer"`
	Feedback string `json:"feedback"`
	Status   string `json:"status" example:"needs_revision"`
}

type BatchReviewItemDTO struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Reviewed  bool   `json:"reviewed"`
	Status    string `json:"status,omitempty"`
	Feedback  string `json:"feedback,omitempty"`
	Error     string `json:"error,omitempty"`
}

type BatchReviewResponseDTO struct {
	Total    int                  `json:"total"`
	Reviewed int                  `json:"reviewed"`
	Results  []BatchReviewItemDTO `json:"results"`
}
