package categories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lokafin/lokafin/internal/shared"
)

type memoryCategoryRepo struct {
	categories map[int64]Category
	nextID     int64
}

func newMemoryCategoryRepo() *memoryCategoryRepo {
	return &memoryCategoryRepo{categories: make(map[int64]Category)}
}

func (r *memoryCategoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return Category{}, shared.NotFoundf("category %d", id)
	}
	return c, nil
}

func (r *memoryCategoryRepo) List(ctx context.Context, filters ListFilters) ([]Category, error) {
	var out []Category
	for _, c := range r.categories {
		if filters.Kind != "" && c.Kind != filters.Kind {
			continue
		}
		if filters.ActiveOnly && !c.Active {
			continue
		}
		if filters.ParentID != nil && (c.ParentID == nil || *c.ParentID != *filters.ParentID) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryCategoryRepo) CountActiveChildren(ctx context.Context, parentID int64) (int, error) {
	count := 0
	for _, c := range r.categories {
		if c.Active && c.ParentID != nil && *c.ParentID == parentID {
			count++
		}
	}
	return count, nil
}

func (r *memoryCategoryRepo) Create(ctx context.Context, c Category) (int64, error) {
	r.nextID++
	c.ID = r.nextID
	r.categories[c.ID] = c
	return c.ID, nil
}

func (r *memoryCategoryRepo) Update(ctx context.Context, c Category) error {
	if _, ok := r.categories[c.ID]; !ok {
		return shared.NotFoundf("category %d", c.ID)
	}
	r.categories[c.ID] = c
	return nil
}

func newCategoryService(repo *memoryCategoryRepo) *Service {
	clock := shared.FixedClock{T: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}
	return NewService(repo, clock, nil)
}

func mustCreate(t *testing.T, svc *Service, name string, parentID *int64) Category {
	t.Helper()
	c, err := svc.Create(context.Background(), CreateInput{
		Name: name, Kind: KindExpense, ParentID: parentID, ActorLogin: "tester",
	})
	require.NoError(t, err)
	return c
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	c, err := svc.Create(ctx, CreateInput{Name: "Rent", Kind: KindRevenue, ActorLogin: "tester"})
	require.NoError(t, err)
	require.True(t, c.Active)
	require.Equal(t, KindRevenue, c.Kind)

	_, err = svc.Create(ctx, CreateInput{Name: "Bad", Kind: "BOGUS", ActorLogin: "tester"})
	require.ErrorIs(t, err, ErrInvalidKind)

	_, err = svc.Create(ctx, CreateInput{Kind: KindRevenue, ActorLogin: "tester"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateUnderInactiveParent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	parent := mustCreate(t, svc, "Maintenance", nil)
	require.NoError(t, svc.Deactivate(ctx, parent.ID, "tester"))

	_, err := svc.Create(ctx, CreateInput{
		Name: "Plumbing", Kind: KindExpense, ParentID: &parent.ID, ActorLogin: "tester",
	})
	require.ErrorIs(t, err, ErrParentInactive)
}

func TestDeactivateBlockedByActiveChildren(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	parent := mustCreate(t, svc, "Maintenance", nil)
	child := mustCreate(t, svc, "Plumbing", &parent.ID)

	require.ErrorIs(t, svc.Deactivate(ctx, parent.ID, "tester"), ErrHasActiveChildren)

	require.NoError(t, svc.Deactivate(ctx, child.ID, "tester"))
	require.NoError(t, svc.Deactivate(ctx, parent.ID, "tester"))
	require.ErrorIs(t, svc.Deactivate(ctx, parent.ID, "tester"), ErrAlreadyInactive)
}

func TestReactivateRequiresActiveParent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	parent := mustCreate(t, svc, "Maintenance", nil)
	child := mustCreate(t, svc, "Plumbing", &parent.ID)
	require.NoError(t, svc.Deactivate(ctx, child.ID, "tester"))
	require.NoError(t, svc.Deactivate(ctx, parent.ID, "tester"))

	require.ErrorIs(t, svc.Reactivate(ctx, child.ID, "tester"), ErrParentInactive)

	require.NoError(t, svc.Reactivate(ctx, parent.ID, "tester"))
	require.NoError(t, svc.Reactivate(ctx, child.ID, "tester"))
	require.ErrorIs(t, svc.Reactivate(ctx, child.ID, "tester"), ErrAlreadyActive)
}

func TestMoveRejectsSelfParent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	a := mustCreate(t, svc, "A", nil)
	require.ErrorIs(t, svc.Move(ctx, a.ID, &a.ID, "tester"), ErrSelfParent)
}

func TestMoveRejectsCycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", &a.ID)

	// Moving A under its own child B would create a cycle.
	err := svc.Move(ctx, a.ID, &b.ID, "tester")
	require.ErrorIs(t, err, ErrCircularReference)

	// Tree unchanged.
	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
}

func TestMoveRejectsDeepCycle(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", &a.ID)
	c := mustCreate(t, svc, "C", &b.ID)

	require.ErrorIs(t, svc.Move(ctx, a.ID, &c.ID, "tester"), ErrCircularReference)
}

func TestMoveToRootAndBetweenBranches(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", &a.ID)
	other := mustCreate(t, svc, "Other", nil)

	require.NoError(t, svc.Move(ctx, b.ID, &other.ID, "tester"))
	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, other.ID, *got.ParentID)

	require.NoError(t, svc.Move(ctx, b.ID, nil, "tester"))
	got, err = svc.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Nil(t, got.ParentID)
}

func TestMoveRejectsInactiveParent(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	a := mustCreate(t, svc, "A", nil)
	b := mustCreate(t, svc, "B", nil)
	require.NoError(t, svc.Deactivate(ctx, b.ID, "tester"))

	require.ErrorIs(t, svc.Move(ctx, a.ID, &b.ID, "tester"), ErrParentInactive)
}

func TestTree(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	a := mustCreate(t, svc, "A", nil)
	mustCreate(t, svc, "B", &a.ID)
	mustCreate(t, svc, "Root2", nil)

	roots, err := svc.Tree(ctx, false)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	for _, root := range roots {
		if root.ID == a.ID {
			require.Len(t, root.Children, 1)
		}
	}
}

func TestEnsureActive(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepo()
	svc := newCategoryService(repo)

	c := mustCreate(t, svc, "A", nil)
	require.NoError(t, svc.EnsureActive(ctx, c.ID))

	require.NoError(t, svc.Deactivate(ctx, c.ID, "tester"))
	require.ErrorIs(t, svc.EnsureActive(ctx, c.ID), shared.ErrValidation)

	require.ErrorIs(t, svc.EnsureActive(ctx, 999), shared.ErrNotFound)
}
