package app

import (
	"context"

	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/expiry"
	"github.com/hammamikhairi/larder/internal/feasibility"
	"github.com/hammamikhairi/larder/internal/shopping"
)

// Overview is everything the status screen shows, computed from one
// snapshot of the pantry.
type Overview struct {
	State       domain.State
	Today       domain.Date
	Expiry      map[string]expiry.Result
	Feasible    []domain.Recipe
	Prioritized []feasibility.Scored
	Missing     []string
}

// Overview loads the pantry and evaluates it.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		State:       st,
		Today:       s.eval.Today(),
		Expiry:      s.eval.EvaluateAll(st.Ingredients),
		Feasible:    s.feas.Feasible(st.Ingredients, st.Recipes),
		Prioritized: s.feas.Prioritized(st.Ingredients, st.Recipes),
		Missing:     shopping.MissingItems(st),
	}, nil
}

// Feasible returns the recipes that can be cooked now.
func (s *Service) Feasible(ctx context.Context) ([]domain.Recipe, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.feas.Feasible(st.Ingredients, st.Recipes), nil
}

// Urgent returns feasible recipes ordered by how soon they spoil.
func (s *Service) Urgent(ctx context.Context) ([]feasibility.Urgent, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.feas.OrderedByUrgency(st.Ingredients, st.Recipes), nil
}

// Prioritized returns feasible recipes with a positive priority score,
// highest first.
func (s *Service) Prioritized(ctx context.Context) ([]feasibility.Scored, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.feas.Prioritized(st.Ingredients, st.Recipes), nil
}

// MissingFor returns the ingredients a recipe still lacks.
func (s *Service) MissingFor(ctx context.Context, recipe string) ([]string, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := st.RecipeIndex(recipe)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	return feasibility.Missing(st.Ingredients, st.Recipes[i]), nil
}

// ShoppingList groups the missing ingredients for a store walk.
func (s *Service) ShoppingList(ctx context.Context) ([]shopping.Group, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return shopping.GroupByCategory(st, s.coldChain), nil
}

// History returns recorded shopping sessions, most recent first.
func (s *Service) History(ctx context.Context) ([]domain.ShoppingSession, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.ShoppingHistory, nil
}
