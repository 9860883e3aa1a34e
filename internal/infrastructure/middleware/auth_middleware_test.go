package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/core/services"
	"camlive/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthFixture(t *testing.T) (ports.UserRepository, services.TokenService, *domain.User) {
	t.Helper()

	users := memory.NewMemoryUserRepository()
	user := &domain.User{
		ID:       "user-1",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RoleViewer,
	}
	require.NoError(t, users.Create(context.Background(), user))

	tokens := services.NewTokenService(
		"access-secret", "refresh-secret",
		15*time.Minute, 7*24*time.Hour,
		"camlive", "camlive-api",
		users,
	)
	return users, tokens, user
}

func protectedRouter(tokens services.TokenService, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": user.Username})
	})
	router.GET("/protected", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, tokens, user := newAuthFixture(t)
	router := protectedRouter(tokens)

	token, err := tokens.IssueAccessToken(user)
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, tokens, _ := newAuthFixture(t)
	router := protectedRouter(tokens)

	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	users, tokens, user := newAuthFixture(t)
	router := protectedRouter(tokens)

	token, err := tokens.IssueAccessToken(user)
	require.NoError(t, err)

	_, err = users.IncrementTokenVersion(context.Background(), user.ID)
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_DeletedIdentity(t *testing.T) {
	users, tokens, user := newAuthFixture(t)
	router := protectedRouter(tokens)

	token, err := tokens.IssueAccessToken(user)
	require.NoError(t, err)
	require.NoError(t, users.Delete(context.Background(), user.ID))

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireRoles(t *testing.T) {
	_, tokens, user := newAuthFixture(t)
	router := protectedRouter(tokens, RequireRoles(domain.RolePerformer, domain.RoleAdmin))

	token, err := tokens.IssueAccessToken(user)
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
