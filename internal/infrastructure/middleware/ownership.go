package middleware

import (
	"context"
	"net/http"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	apperrors "camlive/pkg/errors"

	"github.com/gin-gonic/gin"
)

// OwnershipChecker resolves a resource id to its owning user. Each
// resource kind gets its own checker, selected at compile time where
// routes are wired; there is no runtime registry keyed by resource
// name.
type OwnershipChecker interface {
	Resolve(ctx context.Context, id string) (domain.UserID, error)
}

// StreamOwnership resolves stream ownership through the performer id.
type StreamOwnership struct {
	Streams ports.StreamRepository
}

func (o StreamOwnership) Resolve(ctx context.Context, id string) (domain.UserID, error) {
	stream, err := o.Streams.GetByID(ctx, domain.StreamID(id))
	if err != nil {
		return "", err
	}
	return stream.PerformerID, nil
}

// PaymentOwnership resolves payment ownership through the paying user.
type PaymentOwnership struct {
	Payments ports.PaymentRepository
}

func (o PaymentOwnership) Resolve(ctx context.Context, id string) (domain.UserID, error) {
	payment, err := o.Payments.GetByID(ctx, domain.PaymentID(id))
	if err != nil {
		return "", err
	}
	return payment.UserID, nil
}

// UserOwnership treats a user resource as owned by itself.
type UserOwnership struct{}

func (UserOwnership) Resolve(ctx context.Context, id string) (domain.UserID, error) {
	return domain.UserID(id), nil
}

// RequireOwnership allows the request through when the authenticated
// user owns the resource named by the route parameter, or is an admin.
func RequireOwnership(checker OwnershipChecker, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "unauthorized",
			})
			return
		}

		resourceID := c.Param(idParam)
		if resourceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"status":  "error",
				"message": "resource id not provided",
			})
			return
		}

		if user.Role == domain.RoleAdmin {
			c.Next()
			return
		}

		ownerID, err := checker.Resolve(c.Request.Context(), resourceID)
		if err != nil {
			appErr := apperrors.FromDomain(err)
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"status":  "error",
				"message": appErr.Message,
			})
			return
		}

		if ownerID != user.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "access denied",
			})
			return
		}

		c.Next()
	}
}
