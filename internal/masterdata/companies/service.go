package companies

import (
	"context"

	mdshared "github.com/lokafin/lokafin/internal/masterdata/shared"
	"github.com/lokafin/lokafin/internal/shared"
)

type Service struct {
	repo  Repository
	clock shared.Clock
}

func NewService(repo Repository, clock shared.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters mdshared.ListFilters) ([]Company, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Company, error) {
	if in.Name == "" {
		return Company{}, shared.Validationf("company name is required")
	}
	now := s.clock.Now()
	c := Company{
		Name:       in.Name,
		TradeName:  in.TradeName,
		DocumentID: in.DocumentID,
		Active:     true,
		CreatedBy:  in.ActorLogin,
		CreatedAt:  now,
		ModifiedBy: in.ActorLogin,
		ModifiedAt: now,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return Company{}, err
	}
	c.ID = id
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Company, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return Company{}, shared.Validationf("company name is required")
		}
		c.Name = *in.Name
	}
	if in.TradeName != nil {
		c.TradeName = *in.TradeName
	}
	if in.DocumentID != nil {
		c.DocumentID = *in.DocumentID
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.ModifiedBy = in.ActorLogin
	c.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Company{}, err
	}
	return c, nil
}

// Ensure satisfies the settlement lookup contract.
func (s *Service) Ensure(ctx context.Context, id int64) error {
	_, err := s.repo.Get(ctx, id)
	return err
}
