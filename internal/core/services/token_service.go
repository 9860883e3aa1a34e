package services

import (
	"context"
	"errors"
	"time"

	"camlive/internal/core/domain"
	"camlive/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims is the signed claim set carried by both token kinds. Refresh
// tokens omit the role. TokenVersion is the revocation epoch the token
// was minted under; it is the only claim the validator cross-checks
// against the store instead of trusting.
type Claims struct {
	Role         domain.UserRole `json:"role,omitempty"`
	TokenVersion int             `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenService mints and validates access/refresh tokens.
//
// Revocation contract: any state change that must kill all outstanding
// tokens is expressed as an increment of the user's TokenVersion, never
// as token deletion. Validate fetches the identity fresh on every call
// and fails with domain.ErrTokenRevoked when the embedded version no
// longer matches, which is what makes stateless revocation work without
// a blacklist.
type TokenService interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	Validate(ctx context.Context, tokenString string, kind TokenKind) (*domain.User, *Claims, error)
}

type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      string
	users         ports.UserRepository
}

func NewTokenService(
	accessSecret, refreshSecret string,
	accessTTL, refreshTTL time.Duration,
	issuer, audience string,
	users ports.UserRepository,
) TokenService {
	return &tokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		issuer:        issuer,
		audience:      audience,
		users:         users,
	}
}

func (s *tokenService) IssueAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

func (s *tokenService) IssueRefreshToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

func (s *tokenService) secretFor(kind TokenKind) []byte {
	if kind == TokenRefresh {
		return s.refreshSecret
	}
	return s.accessSecret
}

// Validate verifies signature, issuer, audience and expiry, then
// resolves the subject fresh from the store and cross-checks the
// embedded token version. The returned user is the stored one, never
// a reconstruction from claims.
func (s *tokenService) Validate(ctx context.Context, tokenString string, kind TokenKind) (*domain.User, *Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, domain.ErrTokenMalformed
			}
			return s.secretFor(kind), nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, domain.ErrTokenExpired
		}
		return nil, nil, domain.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, nil, domain.ErrTokenMalformed
	}

	user, err := s.users.GetByID(ctx, domain.UserID(claims.Subject))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrIdentityNotFound
		}
		// Store unavailability is a transient infrastructure fault, not
		// a token verdict; surface it unchanged.
		return nil, nil, err
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil, domain.ErrTokenRevoked
	}

	return user, claims, nil
}
