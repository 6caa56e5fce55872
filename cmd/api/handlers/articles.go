package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/dto"
	"youth-press/cmd/api/middleware"
	"youth-press/lifecycle"
)

type ArticleAPI interface {
	Submit(ctx context.Context, actor lifecycle.Actor, in dto.ArticleRequestDTO) (*dto.SubmitArticleResponseDTO, error)
	Update(ctx context.Context, actor lifecycle.Actor, id string, in dto.ArticleRequestDTO) (*dto.SubmitArticleResponseDTO, error)
	Moderate(ctx context.Context, actor lifecycle.Actor, id string, action lifecycle.Action) (*dto.ArticleDTO, error)
	ReviewPending(ctx context.Context, actor lifecycle.Actor) (*dto.BatchReviewResponseDTO, error)
	ReviewOne(ctx context.Context, id string) (*dto.ReviewResultDTO, error)
	Get(ctx context.Context, actor *lifecycle.Actor, id string) (*dto.ArticleDTO, error)
	ListMine(ctx context.Context, actor lifecycle.Actor) ([]dto.ArticleDTO, error)
}

// SubmitArticleHandler godoc
// @Summary      Submit article
// @Description  Create an article and run the AI review in the same request
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ArticleRequestDTO  true  "Article"
// @Success      201   {object}  dto.SubmitArticleResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Security     BearerAuth
// @Router       /articles [post]
func SubmitArticleHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var in dto.ArticleRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Missing required fields")
			return
		}
		resp, err := svc.Submit(c.Request.Context(), actor, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// UpdateArticleHandler godoc
// @Summary      Edit and resubmit article
// @Description  Replace an article's content and media, then send it back to review
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Article ObjectID"
// @Param        body  body      dto.ArticleRequestDTO  true  "Article"
// @Success      200   {object}  dto.SubmitArticleResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      403   {object}  dto.ErrorResponseDTO
// @Failure      404   {object}  dto.ErrorResponseDTO
// @Failure      409   {object}  dto.ErrorResponseDTO
// @Security     BearerAuth
// @Router       /articles/{id} [put]
func UpdateArticleHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var in dto.ArticleRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Missing required fields")
			return
		}
		resp, err := svc.Update(c.Request.Context(), actor, c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ModerateArticleHandler godoc
// @Summary      Publish or return an article to draft
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        id    path      string                         true  "Article ObjectID"
// @Param        body  body      dto.ModerateArticleRequestDTO  true  "Action"
// @Success      200   {object}  dto.ArticleDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      403   {object}  dto.ErrorResponseDTO
// @Failure      409   {object}  dto.ErrorResponseDTO
// @Security     BearerAuth
// @Router       /articles/{id}/moderate [post]
func ModerateArticleHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		var in dto.ModerateArticleRequestDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "Missing or invalid action.")
			return
		}
		action, err := lifecycle.ParseAction(in.Action)
		if err != nil {
			badRequest(c, "Missing or invalid action.")
			return
		}
		article, err := svc.Moderate(c.Request.Context(), actor, c.Param("id"), action)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

// ReviewPendingHandler godoc
// @Summary      Re-review my pending articles
// @Description  Reviews up to 25 of the caller's pending_ai_review articles, newest first
// @Tags         articles
// @Produce      json
// @Success      200  {object}  dto.BatchReviewResponseDTO
// @Security     BearerAuth
// @Router       /articles/review-pending [post]
func ReviewPendingHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		resp, err := svc.ReviewPending(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ReviewArticleHandler godoc
// @Summary      Review one pending article
// @Description  Privileged role or internal API key
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article ObjectID"
// @Success      200  {object}  dto.ReviewResultDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      409  {object}  dto.ErrorResponseDTO
// @Router       /articles/{id}/review [post]
func ReviewArticleHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.ReviewOne(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetArticleHandler godoc
// @Summary      Get article
// @Description  Visible to its author, privileged roles, or anyone once approved or published
// @Tags         articles
// @Produce      json
// @Param        id   path      string  true  "Article ObjectID"
// @Success      200  {object}  dto.ArticleDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /articles/{id} [get]
func GetArticleHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var actor *lifecycle.Actor
		if a, ok := middleware.ActorFrom(c); ok {
			actor = &a
		}
		article, err := svc.Get(c.Request.Context(), actor, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, article)
	}
}

// ListMyArticlesHandler godoc
// @Summary      List my articles
// @Tags         articles
// @Produce      json
// @Success      200  {array}  dto.ArticleDTO
// @Security     BearerAuth
// @Router       /articles/mine [get]
func ListMyArticlesHandler(svc ArticleAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := requireActor(c)
		if !ok {
			return
		}
		list, err := svc.ListMine(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
