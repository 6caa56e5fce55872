package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"youth-press/lifecycle"
)

type fakeTokens map[string]string

func (f fakeTokens) Parse(token string) (string, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

type fakeRoles map[string]lifecycle.Role

func (f fakeRoles) RoleOf(_ context.Context, userID string) (lifecycle.Role, error) {
	if userID == "broken" {
		return "", errors.New("mongo down")
	}
	if r, ok := f[userID]; ok {
		return r, nil
	}
	return lifecycle.RoleReader, nil
}

var (
	tokens = fakeTokens{"t-writer": "u1", "t-editor": "u2", "t-broken": "broken"}
	roles  = fakeRoles{"u1": lifecycle.RoleWriter, "u2": lifecycle.RoleEditor}
)

func newEngine(mw ...gin.HandlerFunc) (*gin.Engine, *[]lifecycle.Actor) {
	gin.SetMode(gin.TestMode)
	seen := &[]lifecycle.Actor{}
	r := gin.New()
	r.Use(RequestTrace())
	handlers := append(mw, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		*seen = append(*seen, actor)
		c.Status(http.StatusNoContent)
	})
	r.GET("/x", handlers...)
	return r, seen
}

func do(r *gin.Engine, header, value string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, seen := newEngine(Authenticate(tokens, roles))

	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer nope").Code)
	assert.Equal(t, http.StatusInternalServerError, do(r, "Authorization", "Bearer t-broken").Code)

	w := do(r, "Authorization", "Bearer t-writer")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
	assert.Equal(t, []lifecycle.Actor{{ID: "u1", Role: lifecycle.RoleWriter}}, *seen)
}

func TestOptionalAuthenticate(t *testing.T) {
	r, seen := newEngine(OptionalAuthenticate(tokens, roles))

	assert.Equal(t, http.StatusNoContent, do(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer nope").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "Authorization", "Bearer t-editor").Code)

	assert.Equal(t, []lifecycle.Actor{{}, {ID: "u2", Role: lifecycle.RoleEditor}}, *seen)
}

func TestRequirePrivileged(t *testing.T) {
	r, _ := newEngine(Authenticate(tokens, roles), RequirePrivileged())

	assert.Equal(t, http.StatusForbidden, do(r, "Authorization", "Bearer t-writer").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "Authorization", "Bearer t-editor").Code)
}

func TestInternalKey(t *testing.T) {
	r, _ := newEngine(InternalKey("s3cret"))
	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, headerInternalKey, "guess").Code)
	assert.Equal(t, http.StatusNoContent, do(r, headerInternalKey, "s3cret").Code)

	unset, _ := newEngine(InternalKey(""))
	assert.Equal(t, http.StatusUnauthorized, do(unset, headerInternalKey, "").Code)
}

func TestPrivilegedOrInternal(t *testing.T) {
	r, seen := newEngine(PrivilegedOrInternal(tokens, roles, "s3cret"))

	assert.Equal(t, http.StatusNoContent, do(r, headerInternalKey, "s3cret").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "Authorization", "Bearer t-writer").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "Authorization", "Bearer t-editor").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)

	// handler runs exactly once per allowed request
	assert.Len(t, *seen, 2)
}
