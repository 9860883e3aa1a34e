package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/infrastructure/repositories/memory"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownershipRouter(user *domain.User, checker OwnershipChecker) *gin.Engine {
	router := gin.New()
	router.GET("/resource/:id",
		func(c *gin.Context) { c.Set(contextUserKey, user) },
		RequireOwnership(checker, "id"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	return router
}

func getResource(router *gin.Engine, id string) int {
	req := httptest.NewRequest(http.MethodGet, "/resource/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRequireOwnership_StreamOwner(t *testing.T) {
	streams := memory.NewMemoryStreamRepository()
	stream := &domain.Stream{
		ID:          "stream-1",
		Title:       "Show",
		PerformerID: "performer-1",
		Status:      domain.StreamScheduled,
		StreamKey:   "key",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, streams.Create(context.Background(), stream))

	checker := StreamOwnership{Streams: streams}

	owner := &domain.User{ID: "performer-1", Role: domain.RolePerformer}
	assert.Equal(t, http.StatusOK, getResource(ownershipRouter(owner, checker), "stream-1"))

	stranger := &domain.User{ID: "performer-2", Role: domain.RolePerformer}
	assert.Equal(t, http.StatusForbidden, getResource(ownershipRouter(stranger, checker), "stream-1"))
}

func TestRequireOwnership_AdminBypass(t *testing.T) {
	streams := memory.NewMemoryStreamRepository()
	stream := &domain.Stream{
		ID:          "stream-1",
		PerformerID: "performer-1",
		CreatedAt:   time.Now(),
	}
	require.NoError(t, streams.Create(context.Background(), stream))

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	code := getResource(ownershipRouter(admin, StreamOwnership{Streams: streams}), "stream-1")
	assert.Equal(t, http.StatusOK, code)
}

func TestRequireOwnership_MissingResource(t *testing.T) {
	streams := memory.NewMemoryStreamRepository()
	user := &domain.User{ID: "performer-1", Role: domain.RolePerformer}

	code := getResource(ownershipRouter(user, StreamOwnership{Streams: streams}), "ghost")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRequireOwnership_UserResource(t *testing.T) {
	self := &domain.User{ID: "user-1", Role: domain.RoleViewer}

	assert.Equal(t, http.StatusOK, getResource(ownershipRouter(self, UserOwnership{}), "user-1"))
	assert.Equal(t, http.StatusForbidden, getResource(ownershipRouter(self, UserOwnership{}), "user-2"))
}

func TestRequireOwnership_PaymentOwner(t *testing.T) {
	payments := memory.NewMemoryPaymentRepository()
	require.NoError(t, payments.Create(context.Background(), &domain.Payment{
		ID:        "payment-1",
		UserID:    "user-1",
		Amount:    10,
		CreatedAt: time.Now(),
	}))

	checker := PaymentOwnership{Payments: payments}
	payer := &domain.User{ID: "user-1", Role: domain.RoleViewer}
	other := &domain.User{ID: "user-2", Role: domain.RoleViewer}

	assert.Equal(t, http.StatusOK, getResource(ownershipRouter(payer, checker), "payment-1"))
	assert.Equal(t, http.StatusForbidden, getResource(ownershipRouter(other, checker), "payment-1"))
}
