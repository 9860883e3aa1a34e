package domain

import "time"

type UserID string

type UserRole string

const (
	RoleViewer    UserRole = "viewer"
	RolePerformer UserRole = "performer"
	RoleAdmin     UserRole = "admin"
)

// ValidRole reports whether role is one of the closed role set.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleViewer, RolePerformer, RoleAdmin:
		return true
	}
	return false
}

// User is an identity as seen by the auth core. TokenVersion is the
// stateless revocation epoch: every issued token embeds the version it
// was minted under, and incrementing the stored value invalidates all
// of them at once. There is no token blacklist.
type User struct {
	ID           UserID    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	DisplayName  string    `json:"display_name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	IsVerified   bool      `json:"is_verified"`
	TokenVersion int       `json:"-"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
