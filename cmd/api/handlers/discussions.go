package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/dto"
	"youth-press/lifecycle"
)

type DiscussionAPI interface {
	Ensure(ctx context.Context, articleID string) (*dto.DiscussionDTO, error)
	ListPosts(ctx context.Context, discussionID string) (*dto.DiscussionPostsResponseDTO, error)
	CreatePost(ctx context.Context, actor lifecycle.Actor, in dto.CreatePostRequestDTO) (*dto.CreatePostResponseDTO, error)
}

// EnsureDiscussionHandler godoc
// @Summary      Get or create an article's discussion
// @Tags         discussions
// @Produce      json
// @Param        id   path      string  true  "Article ObjectID"
// @Success      200  {object}  dto.DiscussionDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Security     BearerAuth
// @Router       /articles/{id}/discussion [post]
func EnsureDiscussionHandler(svc DiscussionAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svc.Ensure(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// ListDiscussionPostsHandler godoc
// @Summary      List discussion posts
// @Description  Unflagged posts, oldest first
// @Tags         discussions
// @Produce      json
// @Param        id   path      string  true  "Discussion ObjectID"
// @Success      200  {object}  dto.DiscussionPostsResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /discussions/{id}/posts [get]
func ListDiscussionPostsHandler(svc DiscussionAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.ListPosts(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// CreatePostHandler godoc
// @Summary      Post to a discussion
// @Description  Two posts per day; spam signals flag the post without blocking it
// @Tags         discussions
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Discussion ObjectID"
// @Param        body  body      dto.CreatePostRequestDTO  true  "Post"
// @Success      201   {object}  dto.CreatePostResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      429   {object}  dto.ErrorResponseDTO
// @Security     BearerAuth
// @Router       /discussions/{id}/posts [post]
func CreatePostHandler(svc DiscussionAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var in dto.CreatePostRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Missing fields")
			return
		}
		in.DiscussionID = c.Param("id")
		resp, err := svc.CreatePost(c.Request.Context(), actor, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}
