package accounts

import (
	"context"
	"fmt"

	"github.com/lokafin/lokafin/internal/shared"
)

var ErrInvalidType = fmt.Errorf("%w: unknown account type", shared.ErrValidation)

// CompanyDirectory checks that a company exists.
type CompanyDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

// BankDirectory checks that a bank exists.
type BankDirectory interface {
	Ensure(ctx context.Context, id int64) error
}

type Service struct {
	repo      Repository
	clock     shared.Clock
	companies CompanyDirectory
	banks     BankDirectory
}

func NewService(repo Repository, clock shared.Clock, companies CompanyDirectory, banks BankDirectory) *Service {
	return &Service{repo: repo, clock: clock, companies: companies, banks: banks}
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByCompany(ctx context.Context, companyID int64) ([]Account, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if !in.Type.Valid() {
		return Account{}, ErrInvalidType
	}
	if s.companies != nil {
		if err := s.companies.Ensure(ctx, in.CompanyID); err != nil {
			return Account{}, err
		}
	}
	if in.BankID != nil && s.banks != nil {
		if err := s.banks.Ensure(ctx, *in.BankID); err != nil {
			return Account{}, err
		}
	}
	if in.Default {
		if err := s.repo.ClearDefault(ctx, in.CompanyID); err != nil {
			return Account{}, err
		}
	}

	now := s.clock.Now()
	a := Account{
		CompanyID:      in.CompanyID,
		BankID:         in.BankID,
		Agency:         in.Agency,
		Number:         in.Number,
		Type:           in.Type,
		Description:    in.Description,
		OpeningBalance: in.OpeningBalance,
		Default:        in.Default,
		Active:         true,
		CreatedBy:      in.ActorLogin,
		CreatedAt:      now,
		ModifiedBy:     in.ActorLogin,
		ModifiedAt:     now,
	}
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return Account{}, err
	}
	a.ID = id
	return a, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if in.Agency != nil {
		a.Agency = *in.Agency
	}
	if in.Number != nil {
		a.Number = *in.Number
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Active != nil {
		a.Active = *in.Active
	}
	a.ModifiedBy = in.ActorLogin
	a.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// SetDefault makes the account the company's default, clearing any previous
// default first.
func (s *Service) SetDefault(ctx context.Context, id int64, actorLogin string) (Account, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if err := s.repo.ClearDefault(ctx, a.CompanyID); err != nil {
		return Account{}, err
	}
	a.Default = true
	a.ModifiedBy = actorLogin
	a.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// Ensure satisfies the settlement and ledger lookup contracts.
func (s *Service) Ensure(ctx context.Context, id int64) error {
	_, err := s.repo.Get(ctx, id)
	return err
}
