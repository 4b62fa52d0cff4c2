package banks

import (
	"context"

	"github.com/lokafin/lokafin/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Bank, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, search string) ([]Bank, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) Create(ctx context.Context, b Bank) (Bank, error) {
	if b.Code == "" || b.Name == "" {
		return Bank{}, shared.Validationf("bank code and name are required")
	}
	id, err := s.repo.Create(ctx, b)
	if err != nil {
		return Bank{}, err
	}
	b.ID = id
	return b, nil
}

// Ensure satisfies the account lookup contract.
func (s *Service) Ensure(ctx context.Context, id int64) error {
	_, err := s.repo.Get(ctx, id)
	return err
}
