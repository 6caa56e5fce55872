package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"youth-press/cmd/api/auth"
	"youth-press/config"
	"youth-press/lifecycle"
)

const (
	ctxKeyUserID = "user_id"
	ctxKeyRole   = "role"
	ctxKeyCaller = "caller"

	headerInternalKey = "X-Internal-Api-Key"

	callerInternal = "internal"
)

type TokenParser interface {
	Parse(token string) (string, error)
}

type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (lifecycle.Role, error)
}

// Authenticate 는 Bearer 토큰을 검증하고 users 컬렉션에서 역할을 조회해
// 컨텍스트에 저장한다. 토큰이 없거나 유효하지 않으면 401.
func Authenticate(tokens TokenParser, roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}
		if !setActor(c, tokens, roles, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuthenticate 는 토큰이 없으면 익명으로 통과시키고,
// 토큰이 있는데 유효하지 않으면 401 을 내려준다.
func OptionalAuthenticate(tokens TokenParser, roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c)
		if errors.Is(err, auth.ErrMissingHeader) {
			c.Next()
			return
		}
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}
		if !setActor(c, tokens, roles, token) {
			return
		}
		c.Next()
	}
}

func setActor(c *gin.Context, tokens TokenParser, roles RoleLookup, token string) bool {
	userID, err := tokens.Parse(token)
	if err != nil {
		config.WarnWithFields("token rejected", config.Fields{"error": err.Error(), "path": c.FullPath()})
		auth.AbortWithUnauthorized(c, auth.ErrInvalidToken)
		return false
	}

	role, err := roles.RoleOf(c.Request.Context(), userID)
	if err != nil {
		config.ErrorWithFields("role lookup failed", config.Fields{"user_id": userID, "error": err.Error()})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}

	SetActor(c, lifecycle.Actor{ID: userID, Role: role})
	return true
}

// SetActor stores an authenticated caller on the gin context.
func SetActor(c *gin.Context, actor lifecycle.Actor) {
	c.Set(ctxKeyUserID, actor.ID)
	c.Set(ctxKeyRole, actor.Role)
}

// ActorFrom returns the caller stored by Authenticate.
func ActorFrom(c *gin.Context) (lifecycle.Actor, bool) {
	userID := c.GetString(ctxKeyUserID)
	if userID == "" {
		return lifecycle.Actor{}, false
	}
	role, _ := c.Get(ctxKeyRole)
	r, _ := role.(lifecycle.Role)
	return lifecycle.Actor{ID: userID, Role: r}, true
}

// InternalKey 는 X-Internal-Api-Key 헤더를 설정된 키와 상수 시간 비교한다.
// 키가 설정되지 않았으면 모든 요청을 거부한다.
func InternalKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !validInternalKey(c, key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(ctxKeyCaller, callerInternal)
		c.Next()
	}
}

func validInternalKey(c *gin.Context, key string) bool {
	if key == "" {
		return false
	}
	got := c.GetHeader(headerInternalKey)
	return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
}

// PrivilegedOrInternal 은 내부 키가 맞으면 바로 통과시키고, 아니면
// 사용자 인증 후 privileged 역할을 요구한다.
func PrivilegedOrInternal(tokens TokenParser, roles RoleLookup, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validInternalKey(c, key) {
			c.Set(ctxKeyCaller, callerInternal)
			c.Next()
			return
		}
		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}
		if !setActor(c, tokens, roles, token) {
			return
		}
		if actor, _ := ActorFrom(c); !actor.Role.Privileged() {
			auth.AbortWithForbidden(c)
			return
		}
		c.Next()
	}
}
