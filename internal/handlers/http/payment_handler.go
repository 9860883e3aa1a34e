package http

import (
	"net/http"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/core/services"
	"camlive/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments    ports.PaymentService
	paymentRepo ports.PaymentRepository
	tokens      services.TokenService
}

func NewPaymentHandler(payments ports.PaymentService, paymentRepo ports.PaymentRepository, tokens services.TokenService) *PaymentHandler {
	return &PaymentHandler{
		payments:    payments,
		paymentRepo: paymentRepo,
		tokens:      tokens,
	}
}

func (h *PaymentHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/payments")
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		api.POST("", h.CreatePayment)
		api.GET("", h.ListMyPayments)
		api.GET("/:id", middleware.RequireOwnership(middleware.PaymentOwnership{Payments: h.paymentRepo}, "id"), h.GetPayment)

		// Processor callbacks; admin-only until a real processor with
		// signed webhooks is wired in.
		api.POST("/:id/complete", middleware.RequireRoles(domain.RoleAdmin), h.CompletePayment)
		api.POST("/:id/fail", middleware.RequireRoles(domain.RoleAdmin), h.FailPayment)
	}

	admin := router.Group("/api/admin/payments")
	admin.Use(middleware.AuthMiddleware(h.tokens), middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.GET("", h.ListAllPayments)
	}
}

type CreatePaymentRequest struct {
	StreamID string  `json:"streamId" binding:"omitempty,max=64"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency" binding:"required,len=3"`
	Type     string  `json:"type" binding:"required,oneof=tip subscription private_show"`
	Message  string  `json:"message" binding:"max=200"`
}

type CompletePaymentRequest struct {
	ProcessorRef string `json:"processorRef" binding:"max=128"`
}

type FailPaymentRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreatePaymentRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	payment, err := h.payments.CreatePayment(
		c.Request.Context(),
		user.ID,
		domain.StreamID(req.StreamID),
		req.Amount,
		req.Currency,
		domain.PaymentType(req.Type),
		req.Message,
	)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "payment created",
		"data":    gin.H{"payment": payment},
	})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.payments.GetPayment(c.Request.Context(), domain.PaymentID(c.Param("id")))
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"payment": payment},
	})
}

func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	offset, limit := pagination(c)
	payments, err := h.payments.ListUserPayments(c.Request.Context(), user.ID, offset, limit)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"payments": payments,
			"offset":   offset,
			"limit":    limit,
		},
	})
}

func (h *PaymentHandler) ListAllPayments(c *gin.Context) {
	offset, limit := pagination(c)
	payments, err := h.payments.ListAllPayments(c.Request.Context(), offset, limit)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data": gin.H{
			"payments": payments,
			"offset":   offset,
			"limit":    limit,
		},
	})
}

func (h *PaymentHandler) CompletePayment(c *gin.Context) {
	var req CompletePaymentRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	payment, err := h.payments.CompletePayment(c.Request.Context(), domain.PaymentID(c.Param("id")), req.ProcessorRef)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "payment completed",
		"data":    gin.H{"payment": payment},
	})
}

func (h *PaymentHandler) FailPayment(c *gin.Context) {
	var req FailPaymentRequest
	if err := c.BindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request format")
		return
	}

	payment, err := h.payments.FailPayment(c.Request.Context(), domain.PaymentID(c.Param("id")), req.Reason)
	if err != nil {
		failDomain(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "payment failed",
		"data":    gin.H{"payment": payment},
	})
}
