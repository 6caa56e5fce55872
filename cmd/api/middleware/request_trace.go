package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/trace"
	"youth-press/config"
)

const (
	headerRequestID = "X-Request-Id"
	headerSpanID    = "X-Span-Id"
)

// RequestTrace는 모든 inbound HTTP 요청에 대해 Request ID를 보장하고,
// 이를 컨텍스트/헤더에 저장한 뒤 완료 로그에 포함시킨다.
// 기사 본문이 로그에 남지 않도록 요청 바디는 기록하지 않는다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		requestID := req.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}

		ctx := trace.WithRequest(req.Context(), requestID)
		c.Request = req.WithContext(ctx)
		c.Writer.Header().Set(headerRequestID, requestID)

		c.Next()

		finalSpan := trace.CurrentSpanID(c.Request.Context())
		c.Writer.Header().Set(headerSpanID, finalSpan)

		fields := config.Fields{
			"method":      req.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  requestID,
			"span_id":     finalSpan,
		}
		if userID, ok := c.Get(ctxKeyUserID); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		config.InfoWithFields("completed request", fields)
	}
}
