package middleware

import (
	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/auth"
	"youth-press/config"
)

// RequirePrivileged 는 Authenticate 뒤에 붙어 editor/moderator/admin 만 통과시킨다.
func RequirePrivileged() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			auth.AbortWithUnauthorized(c, auth.ErrMissingHeader)
			return
		}
		if !actor.Role.Privileged() {
			config.WarnWithFields("access denied", config.Fields{
				"user_id": actor.ID,
				"role":    string(actor.Role),
				"path":    c.FullPath(),
			})
			auth.AbortWithForbidden(c)
			return
		}
		c.Next()
	}
}
