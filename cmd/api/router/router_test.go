package router

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

type noTokens struct{}

func (noTokens) Parse(string) (string, error) { return "", errors.New("invalid") }

type noRoles struct{}

func (noRoles) RoleOf(context.Context, string) (lifecycle.Role, error) {
	return lifecycle.RoleReader, nil
}

func newTestRouter(health func(context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(Deps{
		Tokens:         noTokens{},
		Roles:          noRoles{},
		InternalAPIKey: "k",
		AllowedOrigins: []string{"http://localhost:3000"},
		Health:         health,
	})
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	down := func(context.Context) error { return errors.New("no reachable servers") }
	newTestRouter(down).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r := newTestRouter(nil)
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/articles"},
		{http.MethodGet, "/api/v1/articles/mine"},
		{http.MethodPut, "/api/v1/articles/abc"},
		{http.MethodPost, "/api/v1/articles/abc/moderate"},
		{http.MethodPost, "/api/v1/articles/review-pending"},
		{http.MethodPost, "/api/v1/articles/abc/review"},
		{http.MethodPost, "/api/v1/discussions/abc/posts"},
		{http.MethodGet, "/api/v1/moderation/logs"},
		{http.MethodPost, "/api/v1/internal/posts/abc/moderate"},
	}

	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/articles", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	newTestRouter(nil).ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
