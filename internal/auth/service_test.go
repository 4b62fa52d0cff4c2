package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lokafin/lokafin/internal/shared"
)

type memoryUserRepo struct {
	users map[string]User
}

func (r *memoryUserRepo) FindByLogin(ctx context.Context, login string) (User, error) {
	u, ok := r.users[login]
	if !ok {
		return User{}, shared.NotFoundf("user %s", login)
	}
	return u, nil
}

func newAuthService(t *testing.T, now time.Time) (*Service, *memoryUserRepo) {
	t.Helper()
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	repo := &memoryUserRepo{users: map[string]User{
		"maria": {ID: 7, Login: "maria", Name: "Maria", PasswordHash: hash, Active: true},
		"gone":  {ID: 8, Login: "gone", PasswordHash: hash, Active: false},
	}}
	return NewService(repo, "test-secret", time.Hour, shared.FixedClock{T: now}), repo
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newAuthService(t, now)

	user, err := svc.Authenticate(ctx, "maria", "s3cret")
	require.NoError(t, err)
	require.Equal(t, int64(7), user.ID)

	_, err = svc.Authenticate(ctx, "maria", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "gone", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newAuthService(t, now)

	token, expiresAt, err := svc.IssueToken(User{ID: 7, Login: "maria"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, "maria", claims.Login)
}

func TestParseTokenRejectsGarbageAndExpiry(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc, _ := newAuthService(t, now)

	_, err := svc.ParseToken("")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.ParseToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)

	token, _, err := svc.IssueToken(User{ID: 7, Login: "maria"})
	require.NoError(t, err)

	// Same secret, clock moved past expiry.
	late, _ := newAuthService(t, now.Add(2*time.Hour))
	_, err = late.ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Different secret.
	repo := &memoryUserRepo{}
	other := NewService(repo, "other-secret", time.Hour, shared.FixedClock{T: now})
	_, err = other.ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
