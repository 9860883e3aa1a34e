package ports

import (
	"context"

	"camlive/internal/core/domain"
)

// UserRepository is the credential store. IncrementTokenVersion and
// UpdatePassword must be atomic read-modify-writes per user: two
// concurrent increments both take effect, never a last-write-wins
// overwrite of an absolute value.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id domain.UserID) error
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)

	// IncrementTokenVersion bumps the revocation epoch by exactly 1 and
	// returns the new value.
	IncrementTokenVersion(ctx context.Context, id domain.UserID) (int, error)

	// UpdatePassword writes the new hash and bumps the token version in
	// the same atomic step, returning the new version.
	UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) (int, error)
}

type StreamRepository interface {
	Create(ctx context.Context, stream *domain.Stream) error
	GetByID(ctx context.Context, id domain.StreamID) (*domain.Stream, error)
	GetByStreamKey(ctx context.Context, key string) (*domain.Stream, error)
	Update(ctx context.Context, stream *domain.Stream) error
	Delete(ctx context.Context, id domain.StreamID) error
	List(ctx context.Context, status domain.StreamStatus, offset, limit int) ([]*domain.Stream, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id domain.PaymentID) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	ListByUser(ctx context.Context, userID domain.UserID, offset, limit int) ([]*domain.Payment, error)
	List(ctx context.Context, offset, limit int) ([]*domain.Payment, error)
}
