package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/dto"
	"youth-press/cmd/api/middleware"
	"youth-press/cmd/api/services"
	"youth-press/cmd/api/trace"
	"youth-press/config"
	"youth-press/discussion"
	"youth-press/lifecycle"
	"youth-press/repositories"
	"youth-press/review"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrValidation), errors.Is(err, discussion.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrIllegalTransition),
		errors.Is(err, repositories.ErrStatusConflict),
		errors.Is(err, review.ErrArticleNotPending):
		return http.StatusConflict
	case errors.Is(err, discussion.ErrRateLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		config.ErrorWithFields("request failed", config.Fields{
			"path":       c.FullPath(),
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"error":      err.Error(),
		})
	}
	_ = c.Error(err)
	c.JSON(status, services.ErrorResponse(err))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: msg})
}

// requireActor는 Authenticate 미들웨어 뒤에서만 쓰인다. 미들웨어가 빠진
// 라우트 설정 실수를 401로 드러낸다.
func requireActor(c *gin.Context) (lifecycle.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponseDTO{Error: "Unauthorized"})
		return lifecycle.Actor{}, false
	}
	return actor, true
}
