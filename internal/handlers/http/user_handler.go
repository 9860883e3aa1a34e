package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/core/services"
	"camlive/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users  ports.UserRepository
	tokens services.TokenService
}

func NewUserHandler(users ports.UserRepository, tokens services.TokenService) *UserHandler {
	return &UserHandler{
		users:  users,
		tokens: tokens,
	}
}

func (h *UserHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/users")
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		api.GET("", middleware.RequireRoles(domain.RoleAdmin), h.ListUsers)
		api.GET("/:id", h.GetUser)
		api.PATCH("/:id", middleware.RequireOwnership(middleware.UserOwnership{}, "id"), h.UpdateUser)
		api.DELETE("/:id", middleware.RequireOwnership(middleware.UserOwnership{}, "id"), h.DeleteUser)
	}
}

type UpdateUserRequest struct {
	DisplayName *string `json:"displayName" binding:"omitempty,max=100"`
	Bio         *string `json:"bio" binding:"omitempty,max=1000"`
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := pagination(c)

	users, err := h.users.List(c.Request.Context(), offset, limit)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"users":  users,
			"offset": offset,
			"limit":  limit,
		},
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": user},
	})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	user.UpdatedAt = time.Now()

	if err := h.users.Update(c.Request.Context(), user); err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "user updated successfully",
		"data":    gin.H{"user": user},
	})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), domain.UserID(c.Param("id"))); err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "user deleted successfully",
	})
}

// pagination reads offset/limit query params with sane bounds.
func pagination(c *gin.Context) (int, int) {
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}
