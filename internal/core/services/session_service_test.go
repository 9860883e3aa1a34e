package services

import (
	"context"
	"sync"
	"testing"

	"camlive/internal/core/domain"
	"camlive/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBcryptCost = 4 // minimum cost, keeps the suite fast

func newTestSessionService() (SessionService, TokenService) {
	users := memory.NewMemoryUserRepository()
	tokens := newTestTokenService(users)
	return NewSessionService(users, tokens, testBcryptCost), tokens
}

func registerTestUser(t *testing.T, sessions SessionService) (*domain.User, *TokenPair) {
	t.Helper()

	user, pair, err := sessions.Register(context.Background(), "alice", "alice@example.com", "password123", domain.RoleViewer)
	require.NoError(t, err)
	require.NotNil(t, pair)
	return user, pair
}

func TestSessionService_RegisterAndLogin(t *testing.T) {
	sessions, tokens := newTestSessionService()
	registerTestUser(t, sessions)

	user, pair, err := sessions.Login(context.Background(), "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.LastLoginAt.IsZero())

	got, _, err := tokens.Validate(context.Background(), pair.AccessToken, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestSessionService_RegisterDuplicates(t *testing.T) {
	sessions, _ := newTestSessionService()
	registerTestUser(t, sessions)

	_, _, err := sessions.Register(context.Background(), "bob", "alice@example.com", "password123", domain.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, _, err = sessions.Register(context.Background(), "alice", "bob@example.com", "password123", domain.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestSessionService_LoginWrongPassword(t *testing.T) {
	sessions, _ := newTestSessionService()
	registerTestUser(t, sessions)

	_, _, err := sessions.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Unknown email yields the same error as a bad password.
	_, _, err = sessions.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSessionService_RefreshKeepsOldRefreshTokenAlive(t *testing.T) {
	sessions, tokens := newTestSessionService()
	_, pair := registerTestUser(t, sessions)

	newPair, err := sessions.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	_, _, err = tokens.Validate(context.Background(), newPair.AccessToken, TokenAccess)
	assert.NoError(t, err)

	// Refresh does not rotate the version, so the original refresh
	// token still works.
	_, err = sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
}

func TestSessionService_RefreshRejectsAccessToken(t *testing.T) {
	sessions, _ := newTestSessionService()
	_, pair := registerTestUser(t, sessions)

	_, err := sessions.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestSessionService_LogoutRevokesEverything(t *testing.T) {
	sessions, tokens := newTestSessionService()
	user, pair := registerTestUser(t, sessions)

	require.NoError(t, sessions.Logout(context.Background(), user.ID))

	_, _, err := tokens.Validate(context.Background(), pair.AccessToken, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, err = sessions.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestSessionService_ConcurrentLogoutsBothCount(t *testing.T) {
	users := memory.NewMemoryUserRepository()
	tokens := newTestTokenService(users)
	sessions := NewSessionService(users, tokens, testBcryptCost)

	user, _, err := sessions.Register(context.Background(), "alice", "alice@example.com", "password123", domain.RoleViewer)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sessions.Logout(context.Background(), user.ID))
		}()
	}
	wg.Wait()

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TokenVersion)
}

func TestSessionService_ChangePassword(t *testing.T) {
	sessions, tokens := newTestSessionService()
	user, oldPair := registerTestUser(t, sessions)

	newPair, err := sessions.ChangePassword(context.Background(), user, "password123", "newpassword456")
	require.NoError(t, err)

	// Tokens issued before the change are dead.
	_, _, err = tokens.Validate(context.Background(), oldPair.AccessToken, TokenAccess)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	// The freshly minted pair is valid.
	_, _, err = tokens.Validate(context.Background(), newPair.AccessToken, TokenAccess)
	assert.NoError(t, err)

	// Old password no longer logs in, the new one does.
	_, _, err = sessions.Login(context.Background(), "alice@example.com", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = sessions.Login(context.Background(), "alice@example.com", "newpassword456")
	assert.NoError(t, err)
}

func TestSessionService_ChangePasswordWrongCurrent(t *testing.T) {
	sessions, _ := newTestSessionService()
	user, _ := registerTestUser(t, sessions)

	_, err := sessions.ChangePassword(context.Background(), user, "wrong", "newpassword456")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSessionService_RegisterRejectsUnknownRole(t *testing.T) {
	sessions, _ := newTestSessionService()

	_, _, err := sessions.Register(context.Background(), "mallory", "mallory@example.com", "password123", domain.UserRole("owner"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
