package services

import (
	"context"
	"testing"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"
	"camlive/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, users ports.UserRepository) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "unused",
		Role:         domain.RoleViewer,
		TokenVersion: 0,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func newTestTokenService(users ports.UserRepository) TokenService {
	return NewTokenService(
		"access-secret", "refresh-secret",
		15*time.Minute, 7*24*time.Hour,
		"camlive", "camlive-api",
		users,
	)
}

func TestTokenService_ValidAccessToken(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	got, claims, err := svc.Validate(context.Background(), token, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, domain.RoleViewer, claims.Role)
	assert.Equal(t, 0, claims.TokenVersion)
}

func TestTokenService_RefreshTokenOmitsRole(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	token, err := svc.IssueRefreshToken(user)
	require.NoError(t, err)

	_, claims, err := svc.Validate(context.Background(), token, TokenRefresh)
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
}

func TestTokenService_KindsAreNotInterchangeable(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	access, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(user)
	require.NoError(t, err)

	_, _, err = svc.Validate(context.Background(), access, TokenRefresh)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)

	_, _, err = svc.Validate(context.Background(), refresh, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestTokenService_ExpiredToken(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := NewTokenService(
		"access-secret", "refresh-secret",
		-time.Minute, -time.Minute,
		"camlive", "camlive-api",
		users,
	)

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	_, _, err = svc.Validate(context.Background(), token, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestTokenService_TamperedToken(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	tampered := token[:len(token)-4] + "AAAA"
	_, _, err = svc.Validate(context.Background(), tampered, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestTokenService_WrongAudience(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	other := NewTokenService(
		"access-secret", "refresh-secret",
		15*time.Minute, 7*24*time.Hour,
		"camlive", "some-other-api",
		users,
	)
	token, err := other.IssueAccessToken(user)
	require.NoError(t, err)

	_, _, err = svc.Validate(context.Background(), token, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestTokenService_RevokedAfterVersionBump(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	_, _, err = svc.Validate(context.Background(), token, TokenAccess)
	require.NoError(t, err)

	_, err = users.IncrementTokenVersion(context.Background(), user.ID)
	require.NoError(t, err)

	_, _, err = svc.Validate(context.Background(), token, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestTokenService_RevocationKillsBothKinds(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	access, err := svc.IssueAccessToken(user)
	require.NoError(t, err)
	refresh, err := svc.IssueRefreshToken(user)
	require.NoError(t, err)

	_, err = users.IncrementTokenVersion(context.Background(), user.ID)
	require.NoError(t, err)

	_, _, err = svc.Validate(context.Background(), access, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, _, err = svc.Validate(context.Background(), refresh, TokenRefresh)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestTokenService_IdentityGone(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	require.NoError(t, users.Delete(context.Background(), user.ID))

	_, _, err = svc.Validate(context.Background(), token, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}

func TestTokenService_ReturnsStoredUserNotClaims(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	user := newTestUser(t, users)
	svc := newTestTokenService(users)

	token, err := svc.IssueAccessToken(user)
	require.NoError(t, err)

	// Promote the user after the token was minted; validation must see
	// the stored role, not the one baked into the claims.
	user.Role = domain.RolePerformer
	require.NoError(t, users.Update(context.Background(), user))

	got, claims, err := svc.Validate(context.Background(), token, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePerformer, got.Role)
	assert.Equal(t, domain.RoleViewer, claims.Role)
}

func TestTokenService_GarbageToken(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	svc := newTestTokenService(users)

	_, _, err := svc.Validate(context.Background(), "not-a-jwt", TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}
