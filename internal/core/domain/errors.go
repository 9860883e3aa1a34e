package domain

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStreamNotFound    = errors.New("stream not found")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token validation outcomes. ErrTokenRevoked is the version-mismatch
	// case: the token was well formed and unexpired but was minted under
	// an older token version than the identity currently carries.
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenRevoked     = errors.New("token revoked")
	ErrIdentityNotFound = errors.New("identity not found")

	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotJoined        = errors.New("room not joined")
	ErrForbidden        = errors.New("forbidden")
)
