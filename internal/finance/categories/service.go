package categories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/lokafin/lokafin/internal/shared"
)

var (
	ErrInvalidKind       = fmt.Errorf("%w: unknown category kind", shared.ErrValidation)
	ErrSelfParent        = fmt.Errorf("%w: category cannot be its own parent", shared.ErrConflict)
	ErrCircularReference = fmt.Errorf("%w: move would create a cycle", shared.ErrConflict)
	ErrParentInactive    = fmt.Errorf("%w: parent category is inactive", shared.ErrConflict)
	ErrHasActiveChildren = fmt.Errorf("%w: category has active children", shared.ErrConflict)
	ErrAlreadyActive     = fmt.Errorf("%w: category is already active", shared.ErrConflict)
	ErrAlreadyInactive   = fmt.Errorf("%w: category is already inactive", shared.ErrConflict)
)

// Service implements the category tree rules.
type Service struct {
	repo  Repository
	clock shared.Clock
	audit *shared.AuditLogger
}

// NewService constructs the category service.
func NewService(repo Repository, clock shared.Clock, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, clock: clock, audit: audit}
}

// Create adds a category, optionally under an active parent.
func (s *Service) Create(ctx context.Context, in CreateInput) (Category, error) {
	if in.Name == "" {
		return Category{}, shared.Validationf("category name is required")
	}
	if !in.Kind.Valid() {
		return Category{}, ErrInvalidKind
	}
	if in.ParentID != nil {
		parent, err := s.repo.Get(ctx, *in.ParentID)
		if err != nil {
			return Category{}, err
		}
		if !parent.Active {
			return Category{}, ErrParentInactive
		}
	}

	now := s.clock.Now()
	c := Category{
		Name:       in.Name,
		Kind:       in.Kind,
		ParentID:   in.ParentID,
		Active:     true,
		CreatedBy:  in.ActorLogin,
		CreatedAt:  now,
		ModifiedBy: in.ActorLogin,
		ModifiedAt: now,
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return Category{}, err
	}
	c.ID = id
	s.record(ctx, in.ActorLogin, "create", id)
	return c, nil
}

// Get loads a category by id.
func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	return s.repo.Get(ctx, id)
}

// List returns categories matching the filters.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Category, error) {
	return s.repo.List(ctx, filters)
}

// Tree returns the full category forest with children nested under parents.
func (s *Service) Tree(ctx context.Context, activeOnly bool) ([]*TreeNode, error) {
	all, err := s.repo.List(ctx, ListFilters{ActiveOnly: activeOnly})
	if err != nil {
		return nil, err
	}
	nodes := make(map[int64]*TreeNode, len(all))
	for _, c := range all {
		nodes[c.ID] = &TreeNode{Category: c}
	}
	var roots []*TreeNode
	for _, c := range all {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// Update renames a category.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Category, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return Category{}, shared.Validationf("category name is required")
		}
		c.Name = *in.Name
	}
	c.ModifiedBy = in.ActorLogin
	c.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Category{}, err
	}
	s.record(ctx, in.ActorLogin, "update", id)
	return c, nil
}

// Deactivate hides a category from new postings. Blocked while any active
// child still points at it.
func (s *Service) Deactivate(ctx context.Context, id int64, actorLogin string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !c.Active {
		return ErrAlreadyInactive
	}
	children, err := s.repo.CountActiveChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrHasActiveChildren
	}
	c.Active = false
	c.ModifiedBy = actorLogin
	c.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.record(ctx, actorLogin, "deactivate", id)
	return nil
}

// Reactivate restores a category. Requires the parent, if any, to be active.
func (s *Service) Reactivate(ctx context.Context, id int64, actorLogin string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Active {
		return ErrAlreadyActive
	}
	if c.ParentID != nil {
		parent, err := s.repo.Get(ctx, *c.ParentID)
		if err != nil {
			return err
		}
		if !parent.Active {
			return ErrParentInactive
		}
	}
	c.Active = true
	c.ModifiedBy = actorLogin
	c.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.record(ctx, actorLogin, "reactivate", id)
	return nil
}

// Move re-parents a category. A nil newParentID promotes it to a root.
func (s *Service) Move(ctx context.Context, id int64, newParentID *int64, actorLogin string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if newParentID != nil {
		if *newParentID == id {
			return ErrSelfParent
		}
		parent, err := s.repo.Get(ctx, *newParentID)
		if err != nil {
			return err
		}
		if !parent.Active {
			return ErrParentInactive
		}
		if err := s.checkNoCycle(ctx, id, *newParentID); err != nil {
			return err
		}
	}
	c.ParentID = newParentID
	c.ModifiedBy = actorLogin
	c.ModifiedAt = s.clock.Now()
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.record(ctx, actorLogin, "move", id)
	return nil
}

// checkNoCycle walks the ancestor chain from newParentID upward. Reaching id
// means the new parent is a descendant of id; a repeated node means the
// stored tree is already corrupt, rejected on the same grounds.
func (s *Service) checkNoCycle(ctx context.Context, id, newParentID int64) error {
	visited := map[int64]bool{}
	current := newParentID
	for {
		if current == id {
			return ErrCircularReference
		}
		if visited[current] {
			return ErrCircularReference
		}
		visited[current] = true

		node, err := s.repo.Get(ctx, current)
		if err != nil {
			return err
		}
		if node.ParentID == nil {
			return nil
		}
		current = *node.ParentID
	}
}

// EnsureActive reports a validation failure unless the category exists and is
// active. Satisfies the settlement and ledger lookup contracts.
func (s *Service) EnsureActive(ctx context.Context, id int64) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !c.Active {
		return shared.Validationf("category %d is inactive", id)
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
		Entity:     "category",
		EntityID:   strconv.FormatInt(id, 10),
		At:         s.clock.Now(),
	})
}
