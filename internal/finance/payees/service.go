package payees

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lokafin/lokafin/internal/shared"
)

var (
	ErrInvalidPersonType = fmt.Errorf("%w: unknown person type", shared.ErrValidation)
	ErrAlreadyActive     = fmt.Errorf("%w: payee is already active", shared.ErrConflict)
	ErrAlreadyInactive   = fmt.Errorf("%w: payee is already inactive", shared.ErrConflict)
)

// Service implements payee management.
type Service struct {
	repo  Repository
	clock shared.Clock
	audit *shared.AuditLogger
}

// NewService constructs the payee service.
func NewService(repo Repository, clock shared.Clock, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, clock: clock, audit: audit}
}

// Create registers a payee.
func (s *Service) Create(ctx context.Context, in CreateInput) (Payee, error) {
	if in.Name == "" {
		return Payee{}, shared.Validationf("payee name is required")
	}
	if !in.PersonType.Valid() {
		return Payee{}, ErrInvalidPersonType
	}

	now := s.clock.Now()
	p := Payee{
		Name:       in.Name,
		PersonType: in.PersonType,
		DocumentID: in.DocumentID,
		Email:      in.Email,
		Phone:      in.Phone,
		Note:       in.Note,
		Active:     true,
		CreatedBy:  in.ActorLogin,
		CreatedAt:  now,
		ModifiedBy: in.ActorLogin,
		ModifiedAt: now,
	}
	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return Payee{}, err
	}
	p.ID = id
	s.record(ctx, in.ActorLogin, "create", id)
	return p, nil
}

// Get loads a payee by id.
func (s *Service) Get(ctx context.Context, id int64) (Payee, error) {
	return s.repo.Get(ctx, id)
}

// List returns payees matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Payee, error) {
	return s.repo.List(ctx, filters)
}

// Update mutates payee fields.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Payee, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Payee{}, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return Payee{}, shared.Validationf("payee name is required")
		}
		p.Name = *in.Name
	}
	if in.DocumentID != nil {
		p.DocumentID = *in.DocumentID
	}
	if in.Email != nil {
		p.Email = *in.Email
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.Note != nil {
		p.Note = *in.Note
	}
	p.ModifiedBy = in.ActorLogin
	p.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Payee{}, err
	}
	s.record(ctx, in.ActorLogin, "update", id)
	return p, nil
}

// Deactivate hides the payee from new documents.
func (s *Service) Deactivate(ctx context.Context, id int64, actorLogin string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.Active {
		return ErrAlreadyInactive
	}
	p.Active = false
	p.ModifiedBy = actorLogin
	p.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.record(ctx, actorLogin, "deactivate", id)
	return nil
}

// Reactivate restores a payee.
func (s *Service) Reactivate(ctx context.Context, id int64, actorLogin string) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Active {
		return ErrAlreadyActive
	}
	p.Active = true
	p.ModifiedBy = actorLogin
	p.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	s.record(ctx, actorLogin, "reactivate", id)
	return nil
}

// EnsureActive reports a validation failure unless the payee exists and is
// active. Satisfies the settlement and ledger lookup contracts.
func (s *Service) EnsureActive(ctx context.Context, id int64) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.Active {
		return shared.Validationf("payee %d is inactive", id)
	}
	return nil
}

func (s *Service) record(ctx context.Context, actor, action string, id int64) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorLogin: actor,
		Action:     action,
		Entity:     "payee",
		EntityID:   strconv.FormatInt(id, 10),
		At:         s.clock.Now(),
	})
}
