package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/handlers"
	"youth-press/cmd/api/middleware"
)

// Deps 는 라우터가 필요로 하는 서비스와 인증 구성 요소다.
type Deps struct {
	Tokens         middleware.TokenParser
	Roles          middleware.RoleLookup
	InternalAPIKey string
	AllowedOrigins []string

	Articles    handlers.ArticleAPI
	Discussions handlers.DiscussionAPI
	Moderation  handlers.ModerationAPI

	// Health 는 저장소 연결을 확인한다. nil 이면 항상 ok.
	Health func(ctx context.Context) error
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace())

	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id", "X-Span-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := d.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authenticated := middleware.Authenticate(d.Tokens, d.Roles)
	optional := middleware.OptionalAuthenticate(d.Tokens, d.Roles)

	// v1 routes
	api := r.Group("/api/v1")
	{
		articles := api.Group("/articles")
		articles.POST("", authenticated, handlers.SubmitArticleHandler(d.Articles))
		articles.GET("/mine", authenticated, handlers.ListMyArticlesHandler(d.Articles))
		articles.POST("/review-pending", authenticated, handlers.ReviewPendingHandler(d.Articles))
		articles.GET("/:id", optional, handlers.GetArticleHandler(d.Articles))
		articles.PUT("/:id", authenticated, handlers.UpdateArticleHandler(d.Articles))
		articles.POST("/:id/moderate", authenticated, handlers.ModerateArticleHandler(d.Articles))
		articles.POST("/:id/review",
			middleware.PrivilegedOrInternal(d.Tokens, d.Roles, d.InternalAPIKey),
			handlers.ReviewArticleHandler(d.Articles))
		articles.POST("/:id/discussion", authenticated, handlers.EnsureDiscussionHandler(d.Discussions))

		discussions := api.Group("/discussions")
		discussions.GET("/:id/posts", handlers.ListDiscussionPostsHandler(d.Discussions))
		discussions.POST("/:id/posts", authenticated, handlers.CreatePostHandler(d.Discussions))

		moderation := api.Group("/moderation", authenticated, middleware.RequirePrivileged())
		moderation.GET("/posts/flagged", handlers.ListFlaggedPostsHandler(d.Moderation))
		moderation.POST("/posts/:id/approve", handlers.ApprovePostHandler(d.Moderation))
		moderation.GET("/logs", handlers.ListModerationLogsHandler(d.Moderation))

		internal := api.Group("/internal", middleware.InternalKey(d.InternalAPIKey))
		internal.POST("/posts/:id/moderate", handlers.InternalModeratePostHandler(d.Moderation))
	}

	return r
}
