package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lokafin/lokafin/internal/shared"
)

// Service authenticates users and mints access tokens.
type Service struct {
	repo   Repository
	secret []byte
	ttl    time.Duration
	clock  shared.Clock
}

// NewService constructs the auth service.
func NewService(repo Repository, secret string, ttl time.Duration, clock shared.Clock) *Service {
	return &Service{repo: repo, secret: []byte(secret), ttl: ttl, clock: clock}
}

// Authenticate checks login/password and returns the user on success.
func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	user, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !user.Active {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken mints a signed HS256 access token for the user.
func (s *Service) IssueToken(user User) (string, time.Time, error) {
	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: user.ID,
		Login:  user.Login,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Login,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func (s *Service) ParseToken(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword produces a bcrypt hash for user provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
