package services

import (
	"context"
	"errors"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair is the access+refresh pair returned by every lifecycle
// operation that establishes or re-establishes a session.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionService orchestrates login, refresh, logout and password
// change. There is no session object anywhere: a logical session is the
// set of tokens sharing the identity's currently valid token version.
type SessionService interface {
	Register(ctx context.Context, username, email, password string, role domain.UserRole) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) (*TokenPair, error)
	Logout(ctx context.Context, userID domain.UserID) error
}

type sessionService struct {
	users      ports.UserRepository
	tokens     TokenService
	bcryptCost int
}

func NewSessionService(users ports.UserRepository, tokens TokenService, bcryptCost int) SessionService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &sessionService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (s *sessionService) Register(ctx context.Context, username, email, password string, role domain.UserRole) (*domain.User, *TokenPair, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil, err
	}

	if role == "" {
		role = domain.RoleViewer
	}
	if !domain.ValidRole(role) {
		return nil, nil, domain.ErrForbidden
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           domain.UserID(uuid.New().String()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		TokenVersion: 0,
		LastLoginAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login issues a pair at the user's current token version. It never
// changes the version: logging in does not invalidate other devices.
func (s *sessionService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user.LastLoginAt = time.Now()
	user.UpdatedAt = user.LastLoginAt
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair at the same
// version. The previous refresh token stays usable until its own
// expiry: refresh does not rotate the version.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	user, _, err := s.tokens.Validate(ctx, refreshToken, TokenRefresh)
	if err != nil {
		return nil, err
	}
	return s.issuePair(user)
}

// ChangePassword writes the new hash and bumps the token version in a
// single atomic store operation, so every token issued before the
// change dies in the same step that changed the secret. A fresh pair is
// minted at the new version.
func (s *sessionService) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) (*TokenPair, error) {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	version, err := s.users.UpdatePassword(ctx, user.ID, string(hash))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.TokenVersion = version
	return s.issuePair(user)
}

// Logout invalidates every outstanding token for the identity,
// including the one that authenticated this call.
func (s *sessionService) Logout(ctx context.Context, userID domain.UserID) error {
	_, err := s.users.IncrementTokenVersion(ctx, userID)
	return err
}

func (s *sessionService) issuePair(user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
