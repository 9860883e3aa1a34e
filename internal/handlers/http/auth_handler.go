package http

import (
	"net/http"
	"strings"

	"camlive/internal/core/domain"
	"camlive/internal/core/services"
	"camlive/internal/infrastructure/middleware"
	apperrors "camlive/pkg/errors"
	"camlive/pkg/validation"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions services.SessionService
	tokens   services.TokenService
}

func NewAuthHandler(sessions services.SessionService, tokens services.TokenService) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tokens:   tokens,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/refresh", h.Refresh)
	}

	authed := router.Group("/api/auth")
	authed.Use(middleware.AuthMiddleware(h.tokens))
	{
		authed.POST("/logout", h.Logout)
		authed.POST("/change-password", h.ChangePassword)
		authed.GET("/me", h.Me)
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	Password string `json:"password" binding:"required,max=128"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"max=2048"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required,max=128"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=128"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if err := validation.ValidateUsername(req.Username); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	// Admins are provisioned out of band, not self-registered.
	role := domain.UserRole(req.Role)
	if role == domain.RoleAdmin {
		fail(c, http.StatusForbidden, "access denied")
		return
	}

	user, pair, err := h.sessions.Register(c.Request.Context(), req.Username, req.Email, req.Password, role)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "user registered successfully",
		"data": gin.H{
			"user":         user,
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	user, pair, err := h.sessions.Login(c.Request.Context(), strings.TrimSpace(strings.ToLower(req.Email)), req.Password)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "login successful",
		"data": gin.H{
			"user":         user,
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.BindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusBadRequest, "refresh token is required")
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "token refreshed successfully",
		"data": gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

// Logout bumps the caller's token version; the access token that
// authenticated this request is itself dead once the call returns.
func (h *AuthHandler) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), user.ID); err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "logout successful",
	})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.sessions.ChangePassword(c.Request.Context(), user, req.CurrentPassword, req.NewPassword)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "password changed successfully",
		"data": gin.H{
			"accessToken":  pair.AccessToken,
			"refreshToken": pair.RefreshToken,
		},
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": user},
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

func failDomain(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	c.JSON(appErr.HTTPStatus, gin.H{
		"status":  "error",
		"message": appErr.Message,
	})
}
