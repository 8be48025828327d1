// Package app wires the pure pantry computations to a key/value store.
// Each operation loads the persisted document, applies one change and
// writes the result back.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/expiry"
	"github.com/hammamikhairi/larder/internal/feasibility"
	"github.com/hammamikhairi/larder/internal/logger"
	"github.com/hammamikhairi/larder/internal/pantry"
	"github.com/hammamikhairi/larder/internal/schema"
)

// Store keys.
const (
	StateKey      = "larder-state"
	ActiveTripKey = "larder-shopping-active"
)

// Option configures the service.
type Option func(*Service)

// WithWarningDays sets the expiry warning window.
func WithWarningDays(n int) Option {
	return func(s *Service) {
		s.warningDays = n
	}
}

// WithWeights overrides the recipe priority weights.
func WithWeights(w feasibility.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithColdChain sets the category names shopped last.
func WithColdChain(names []string) Option {
	return func(s *Service) {
		s.coldChain = names
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service is the application facade the CLI and the alert supervisor
// talk to. It depends only on the KVStore port.
type Service struct {
	mu          sync.Mutex
	store       domain.KVStore
	log         *logger.Logger
	eval        *expiry.Evaluator
	feas        *feasibility.Engine
	coldChain   []string
	warningDays int
	weights     feasibility.Weights
	now         func() time.Time
}

// New creates a service over store.
func New(store domain.KVStore, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:       store,
		log:         log,
		warningDays: expiry.DefaultWarningDays,
		weights:     feasibility.DefaultWeights(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eval = expiry.New(expiry.WithWarningDays(s.warningDays), expiry.WithClock(s.now))
	s.feas = feasibility.New(s.eval, feasibility.WithWeights(s.weights))
	return s
}

// Evaluator returns the expiry evaluator the service scores with.
func (s *Service) Evaluator() *expiry.Evaluator {
	return s.eval
}

// Feasibility returns the recipe engine the service ranks with.
func (s *Service) Feasibility() *feasibility.Engine {
	return s.feas
}

// ColdChain returns the configured cold-chain category names.
func (s *Service) ColdChain() []string {
	return s.coldChain
}

// Load reads the persisted state. An empty store yields an empty pantry.
func (s *Service) Load(ctx context.Context) (domain.State, error) {
	raw, err := s.store.Get(ctx, StateKey)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Debug("no saved state, starting empty")
		return domain.NewState(), nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("loading state: %w", err)
	}

	st, res, err := schema.Import([]byte(raw))
	if err != nil {
		return domain.State{}, fmt.Errorf("loading state: %w", err)
	}
	for _, w := range res.Warnings {
		s.log.Warn("stored state: %s", w)
	}
	return st, nil
}

// Save persists st as a current-version document.
func (s *Service) Save(ctx context.Context, st domain.State) error {
	data, err := schema.Marshal(st, s.now())
	if err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	if err := s.store.Set(ctx, StateKey, string(data)); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}
	return nil
}

// update runs one load-change-save cycle under the service lock.
func (s *Service) update(ctx context.Context, op string, fn func(domain.State) (domain.State, error)) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	next, err := fn(st)
	if err != nil {
		return st, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Save(ctx, next); err != nil {
		return st, err
	}
	s.log.Debug("%s applied", op)
	return next, nil
}

// pure adapts an infallible pantry edit for update.
func pure(fn func(domain.State) domain.State) func(domain.State) (domain.State, error) {
	return func(st domain.State) (domain.State, error) {
		return fn(st), nil
	}
}

// Import replaces the pantry with an exported document. A structurally
// broken document leaves the stored state untouched.
func (s *Service) Import(ctx context.Context, data []byte) (schema.Result, error) {
	st, res, err := schema.Import(data)
	if err != nil {
		return res, fmt.Errorf("importing: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Save(ctx, st); err != nil {
		return res, err
	}
	s.log.Info("imported %s document: %d ingredients, %d recipes, %d warnings",
		res.Version, len(st.Ingredients), len(st.Recipes), len(res.Warnings))
	return res, nil
}

// Export renders the stored pantry as a current-version document.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return schema.Marshal(st, s.now())
}

// AddIngredient registers a new ingredient.
func (s *Service) AddIngredient(ctx context.Context, name, category string, ing domain.Ingredient) (domain.State, error) {
	return s.update(ctx, "adding ingredient", func(st domain.State) (domain.State, error) {
		return pantry.AddIngredient(st, name, category, ing)
	})
}

// RemoveIngredient deletes an ingredient and reports what went with it.
func (s *Service) RemoveIngredient(ctx context.Context, name string) (pantry.Impact, error) {
	var imp pantry.Impact
	_, err := s.update(ctx, "removing ingredient", func(st domain.State) (domain.State, error) {
		if _, ok := st.Ingredients[name]; !ok {
			return st, fmt.Errorf("ingredient %q: %w", name, domain.ErrNotFound)
		}
		imp = pantry.IngredientDeletionImpact(st, name)
		return pantry.RemoveIngredient(st, name), nil
	})
	return imp, err
}

// ToggleStock flips an ingredient's stock flag.
func (s *Service) ToggleStock(ctx context.Context, name string) (domain.State, error) {
	return s.update(ctx, "toggling stock", pure(func(st domain.State) domain.State {
		return pantry.ToggleStock(st, name)
	}))
}

// SetExpiry sets or clears an expiry date.
func (s *Service) SetExpiry(ctx context.Context, name string, date *domain.Date) (domain.State, error) {
	return s.update(ctx, "setting expiry", pure(func(st domain.State) domain.State {
		return pantry.SetExpiry(st, name, date)
	}))
}

// Consume records partial use of an ingredient.
func (s *Service) Consume(ctx context.Context, name string, parts int) (domain.State, error) {
	return s.update(ctx, "consuming", pure(func(st domain.State) domain.State {
		return pantry.Consume(st, name, parts)
	}))
}

// AddCategory appends a category.
func (s *Service) AddCategory(ctx context.Context, name string) (domain.State, error) {
	return s.update(ctx, "adding category", func(st domain.State) (domain.State, error) {
		return pantry.AddCategory(st, name)
	})
}

// RemoveCategory deletes a category with its ingredients.
func (s *Service) RemoveCategory(ctx context.Context, name string) (pantry.Impact, error) {
	var imp pantry.Impact
	_, err := s.update(ctx, "removing category", func(st domain.State) (domain.State, error) {
		if st.CategoryIndex(name) < 0 {
			return st, fmt.Errorf("category %q: %w", name, domain.ErrNotFound)
		}
		imp = pantry.CategoryDeletionImpact(st, name)
		return pantry.RemoveCategory(st, name), nil
	})
	return imp, err
}

// SetFresh tags or untags a category.
func (s *Service) SetFresh(ctx context.Context, category string, fresh bool) (domain.State, error) {
	return s.update(ctx, "setting fresh", pure(func(st domain.State) domain.State {
		return pantry.SetFresh(st, category, fresh)
	}))
}

// AddRecipe appends a recipe.
func (s *Service) AddRecipe(ctx context.Context, r domain.Recipe) (domain.State, error) {
	return s.update(ctx, "adding recipe", func(st domain.State) (domain.State, error) {
		return pantry.AddRecipe(st, r)
	})
}

// RemoveRecipe deletes a recipe.
func (s *Service) RemoveRecipe(ctx context.Context, name string) (domain.State, error) {
	return s.update(ctx, "removing recipe", func(st domain.State) (domain.State, error) {
		if st.RecipeIndex(name) < 0 {
			return st, fmt.Errorf("recipe %q: %w", name, domain.ErrNotFound)
		}
		return pantry.RemoveRecipe(st, name), nil
	})
}

// ClearHistory forgets recorded shopping sessions.
func (s *Service) ClearHistory(ctx context.Context) (domain.State, error) {
	return s.update(ctx, "clearing history", pure(pantry.ClearHistory))
}

// IngredientImpact previews RemoveIngredient.
func (s *Service) IngredientImpact(ctx context.Context, name string) (pantry.Impact, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return pantry.Impact{}, err
	}
	return pantry.IngredientDeletionImpact(st, name), nil
}

// CategoryImpact previews RemoveCategory.
func (s *Service) CategoryImpact(ctx context.Context, name string) (pantry.Impact, error) {
	st, err := s.Load(ctx)
	if err != nil {
		return pantry.Impact{}, err
	}
	return pantry.CategoryDeletionImpact(st, name), nil
}
