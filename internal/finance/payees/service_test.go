package payees

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lokafin/lokafin/internal/shared"
)

type memoryPayeeRepo struct {
	payees map[int64]Payee
	nextID int64
}

func newMemoryPayeeRepo() *memoryPayeeRepo {
	return &memoryPayeeRepo{payees: make(map[int64]Payee)}
}

func (r *memoryPayeeRepo) Get(ctx context.Context, id int64) (Payee, error) {
	p, ok := r.payees[id]
	if !ok {
		return Payee{}, shared.NotFoundf("payee %d", id)
	}
	return p, nil
}

func (r *memoryPayeeRepo) List(ctx context.Context, filters ListFilters) ([]Payee, error) {
	var out []Payee
	for _, p := range r.payees {
		if filters.PersonType != "" && p.PersonType != filters.PersonType {
			continue
		}
		if filters.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryPayeeRepo) Create(ctx context.Context, p Payee) (int64, error) {
	r.nextID++
	p.ID = r.nextID
	r.payees[p.ID] = p
	return p.ID, nil
}

func (r *memoryPayeeRepo) Update(ctx context.Context, p Payee) error {
	if _, ok := r.payees[p.ID]; !ok {
		return shared.NotFoundf("payee %d", p.ID)
	}
	r.payees[p.ID] = p
	return nil
}

func newPayeeService(repo *memoryPayeeRepo) *Service {
	clock := shared.FixedClock{T: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}
	return NewService(repo, clock, nil)
}

func TestCreatePayee(t *testing.T) {
	ctx := context.Background()
	svc := newPayeeService(newMemoryPayeeRepo())

	p, err := svc.Create(ctx, CreateInput{
		Name: "Acme Imóveis", PersonType: PersonOrganization, DocumentID: "12345678000190",
		ActorLogin: "tester",
	})
	require.NoError(t, err)
	require.True(t, p.Active)
	require.Equal(t, PersonOrganization, p.PersonType)

	_, err = svc.Create(ctx, CreateInput{Name: "X", PersonType: "ALIEN", ActorLogin: "tester"})
	require.ErrorIs(t, err, ErrInvalidPersonType)

	_, err = svc.Create(ctx, CreateInput{PersonType: PersonIndividual, ActorLogin: "tester"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPayeeLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newPayeeService(newMemoryPayeeRepo())

	p, err := svc.Create(ctx, CreateInput{
		Name: "João", PersonType: PersonIndividual, ActorLogin: "tester",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, p.ID, "tester"))
	require.ErrorIs(t, svc.Deactivate(ctx, p.ID, "tester"), ErrAlreadyInactive)
	require.ErrorIs(t, svc.EnsureActive(ctx, p.ID), shared.ErrValidation)

	require.NoError(t, svc.Reactivate(ctx, p.ID, "tester"))
	require.ErrorIs(t, svc.Reactivate(ctx, p.ID, "tester"), ErrAlreadyActive)
	require.NoError(t, svc.EnsureActive(ctx, p.ID))
}

func TestUpdatePayee(t *testing.T) {
	ctx := context.Background()
	svc := newPayeeService(newMemoryPayeeRepo())

	p, err := svc.Create(ctx, CreateInput{
		Name: "João", PersonType: PersonIndividual, ActorLogin: "tester",
	})
	require.NoError(t, err)

	email := "joao@example.com"
	p, err = svc.Update(ctx, p.ID, UpdateInput{Email: &email, ActorLogin: "tester"})
	require.NoError(t, err)
	require.Equal(t, email, p.Email)
	require.Equal(t, "João", p.Name)

	empty := ""
	_, err = svc.Update(ctx, p.ID, UpdateInput{Name: &empty, ActorLogin: "tester"})
	require.ErrorIs(t, err, shared.ErrValidation)
}
