// Package paymentmethods holds the payment method lookup table (transfer,
// boleto, PIX, cash and so on).
package paymentmethods

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lokafin/lokafin/internal/shared"
)

// PaymentMethod is one way money changes hands.
type PaymentMethod struct {
	ID     int64
	Name   string
	Active bool
}

// Repository defines payment method data access.
type Repository interface {
	Get(ctx context.Context, id int64) (PaymentMethod, error)
	List(ctx context.Context, activeOnly bool) ([]PaymentMethod, error)
	Create(ctx context.Context, m PaymentMethod) (int64, error)
	Update(ctx context.Context, m PaymentMethod) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (PaymentMethod, error) {
	var m PaymentMethod
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, active FROM payment_methods WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.Active)
	if err != nil {
		return PaymentMethod{}, shared.MapDBError(err)
	}
	return m, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]PaymentMethod, error) {
	query := `SELECT id, name, active FROM payment_methods`
	if activeOnly {
		query += ` WHERE active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, shared.MapDBError(err)
	}
	defer rows.Close()

	var out []PaymentMethod
	for rows.Next() {
		var m PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Active); err != nil {
			return nil, shared.MapDBError(err)
		}
		out = append(out, m)
	}
	return out, shared.MapDBError(rows.Err())
}

func (r *repository) Create(ctx context.Context, m PaymentMethod) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payment_methods (name, active) VALUES ($1, $2) RETURNING id`,
		m.Name, m.Active).Scan(&id)
	if err != nil {
		return 0, shared.MapDBError(err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, m PaymentMethod) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE payment_methods SET name = $1, active = $2 WHERE id = $3`,
		m.Name, m.Active, m.ID)
	return shared.MapDBError(err)
}

// Service implements payment method management.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (PaymentMethod, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]PaymentMethod, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Create(ctx context.Context, name string) (PaymentMethod, error) {
	if name == "" {
		return PaymentMethod{}, shared.Validationf("payment method name is required")
	}
	m := PaymentMethod{Name: name, Active: true}
	id, err := s.repo.Create(ctx, m)
	if err != nil {
		return PaymentMethod{}, err
	}
	m.ID = id
	return m, nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (PaymentMethod, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return PaymentMethod{}, err
	}
	m.Active = active
	if err := s.repo.Update(ctx, m); err != nil {
		return PaymentMethod{}, err
	}
	return m, nil
}

// Ensure satisfies the settlement and ledger lookup contracts.
func (s *Service) Ensure(ctx context.Context, id int64) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !m.Active {
		return shared.Validationf("payment method %d is inactive", id)
	}
	return nil
}
