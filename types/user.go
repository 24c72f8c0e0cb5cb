package types

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurposeAuth is the purpose recorded for login/session tokens.
const TokenPurposeAuth = "auth"

// User represents an account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `json:"id" db:"id"`

	// Email is the user's unique email address, used as the login name.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Tokens holds the user's currently valid auth tokens. A user may hold
	// several at once (one per device). Membership in this list is what makes
	// a structurally valid token accepted, so logout works by removing the
	// entry. Never exposed in API responses.
	Tokens []UserToken `json:"-" db:"tokens"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserToken is one entry in a user's active token list.
type UserToken struct {
	// Purpose categorizes the token; currently always "auth".
	Purpose string `json:"purpose"`

	// Token is the signed token string as handed to the client.
	Token string `json:"token"`
}

// PublicUser is the externally visible projection of a User.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Public returns the projection of the user that is safe to serialize.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// HasToken reports whether token is present in the user's active token list.
func (u User) HasToken(token string) bool {
	for _, entry := range u.Tokens {
		if entry.Purpose == TokenPurposeAuth && entry.Token == token {
			return true
		}
	}
	return false
}
