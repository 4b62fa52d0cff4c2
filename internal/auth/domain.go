// Package auth issues and verifies access tokens. The rest of the system
// never authenticates; it only records the identity this package puts in the
// request context.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials covers unknown logins, wrong passwords and disabled
// users alike, so responses do not leak which one failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken indicates a missing, malformed or expired access token.
var ErrInvalidToken = errors.New("invalid token")

// User is an operator account.
type User struct {
	ID           int64
	Login        string
	Name         string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

// Claims carried inside the access token.
type Claims struct {
	UserID int64  `json:"uid"`
	Login  string `json:"login"`
	jwt.RegisteredClaims
}
