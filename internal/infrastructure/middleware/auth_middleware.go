package middleware

import (
	"net/http"
	"strings"

	"camlive/internal/core/domain"
	"camlive/internal/core/services"
	apperrors "camlive/pkg/errors"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "auth_user"

// AuthMiddleware validates the bearer access token and binds the
// freshly fetched user to the request context. Validation rechecks
// the token version on every request, so a logout or password change
// kills in-flight tokens immediately.
func AuthMiddleware(tokens services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "no token provided",
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, _, err := tokens.Validate(c.Request.Context(), token, services.TokenAccess)
		if err != nil {
			appErr := apperrors.FromDomain(err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"status":  "error",
				"message": appErr.Message,
			})
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user bound by AuthMiddleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	val, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// RequireRoles rejects requests whose authenticated user does not hold
// one of the given roles.
func RequireRoles(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "unauthorized",
			})
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "access denied",
		})
	}
}
