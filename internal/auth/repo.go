package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/shared"
)

// Repository defines user lookup.
type Repository interface {
	FindByLogin(ctx context.Context, login string) (User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) FindByLogin(ctx context.Context, login string) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, login, name, password_hash, active, created_at FROM users WHERE login = $1`,
		login).Scan(&u.ID, &u.Login, &u.Name, &u.PasswordHash, &u.Active, &u.CreatedAt)
	if err != nil {
		return User{}, shared.MapDBError(err)
	}
	return u, nil
}
