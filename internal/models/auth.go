package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AdminCredential is a stored administrator account. Password holds whatever the
// configured verifier compares against (plaintext, bcrypt or argon2id encoding).
type AdminCredential struct {
	ID       int64  `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
}

// AdminIdentity is the authenticated administrator.
type AdminIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// LoginRequest holds administrator credentials.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse is returned alongside the session cookie.
type LoginResponse struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionInfo answers "am I logged in".
type SessionInfo struct {
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username,omitempty"`
}

// SessionClaims is the signed admin session payload.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
