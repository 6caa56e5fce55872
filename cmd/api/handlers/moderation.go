package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/dto"
	"youth-press/lifecycle"
)

type ModerationAPI interface {
	FlaggedPosts(ctx context.Context) ([]dto.DiscussionPostDTO, error)
	ApprovePost(ctx context.Context, actor lifecycle.Actor, postID string) error
	Logs(ctx context.Context, moderatorID string) ([]dto.ModerationLogDTO, error)
	CheckPost(ctx context.Context, postID string, in dto.InternalModerateRequestDTO) (*dto.InternalModerateResponseDTO, error)
}

// ListFlaggedPostsHandler godoc
// @Summary      List flagged posts
// @Tags         moderation
// @Produce      json
// @Success      200  {array}  dto.DiscussionPostDTO
// @Security     BearerAuth
// @Router       /moderation/posts/flagged [get]
func ListFlaggedPostsHandler(svc ModerationAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := svc.FlaggedPosts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, posts)
	}
}

// ApprovePostHandler godoc
// @Summary      Clear a post's flag
// @Tags         moderation
// @Produce      json
// @Param        id   path      string  true  "Post ObjectID"
// @Success      200  {object}  dto.MessageResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Security     BearerAuth
// @Router       /moderation/posts/{id}/approve [post]
func ApprovePostHandler(svc ModerationAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		if err := svc.ApprovePost(c.Request.Context(), actor, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "Post approved"})
	}
}

// ListModerationLogsHandler godoc
// @Summary      List moderation log entries
// @Tags         moderation
// @Produce      json
// @Param        moderator_id  query  string  false  "Only entries by this moderator"
// @Success      200  {array}  dto.ModerationLogDTO
// @Security     BearerAuth
// @Router       /moderation/logs [get]
func ListModerationLogsHandler(svc ModerationAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := svc.Logs(c.Request.Context(), c.Query("moderator_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

// InternalModeratePostHandler godoc
// @Summary      Run the post safety screen
// @Description  Internal API key only
// @Tags         internal
// @Accept       json
// @Produce      json
// @Param        id    path      string                          true  "Post ObjectID"
// @Param        body  body      dto.InternalModerateRequestDTO  true  "Post content"
// @Success      200   {object}  dto.InternalModerateResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Router       /internal/posts/{id}/moderate [post]
func InternalModeratePostHandler(svc ModerationAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in dto.InternalModerateRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Missing fields")
			return
		}
		resp, err := svc.CheckPost(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
