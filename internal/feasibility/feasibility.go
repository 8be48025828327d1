// Package feasibility decides which recipes can be cooked from the current
// stock and ranks them by how urgently their ingredients need using up.
package feasibility

import (
	"math"
	"slices"
	"sort"

	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/expiry"
)

// Default scoring weights. They were picked by hand, not tuned.
const (
	DefaultExpiredPenalty    = 100.0
	DefaultSoonWeight        = 10.0
	DefaultConsumptionWeight = 5.0
)

// Weights parameterises PriorityScore.
type Weights struct {
	// ExpiredPenalty is added once per expired ingredient. It must stay
	// above SoonWeight times the warning window.
	ExpiredPenalty float64
	// SoonWeight is multiplied by (window - daysLeft).
	SoonWeight float64
	// ConsumptionWeight is multiplied by (1 - remaining/parts).
	ConsumptionWeight float64
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return Weights{
		ExpiredPenalty:    DefaultExpiredPenalty,
		SoonWeight:        DefaultSoonWeight,
		ConsumptionWeight: DefaultConsumptionWeight,
	}
}

// Option configures the engine.
type Option func(*Engine)

// WithWeights overrides the scoring weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) {
		e.weights = w
	}
}

// Engine recomputes everything from scratch on each call; inputs are small
// enough that nothing is cached.
type Engine struct {
	eval    *expiry.Evaluator
	weights Weights
}

// New creates an engine that reads freshness from eval.
func New(eval *expiry.Evaluator, opts ...Option) *Engine {
	e := &Engine{eval: eval, weights: DefaultWeights()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scored pairs a recipe with its priority score.
type Scored struct {
	Recipe domain.Recipe
	Score  float64
}

// Urgent pairs a recipe with the fewest days left among its tracked
// ingredients. Tracked is false when no ingredient has an expiry date.
type Urgent struct {
	Recipe   domain.Recipe
	DaysLeft int
	Tracked  bool
}

// CanCook reports whether every ingredient of r exists and is in stock.
// A recipe without ingredients cannot be cooked.
func CanCook(ingredients map[string]domain.Ingredient, r domain.Recipe) bool {
	if len(r.Ingredients) == 0 {
		return false
	}
	for _, name := range r.Ingredients {
		ing, ok := ingredients[name]
		if !ok || !ing.InStock {
			return false
		}
	}
	return true
}

// Missing returns the ingredients of r that block cooking it, in recipe
// order.
func Missing(ingredients map[string]domain.Ingredient, r domain.Recipe) []string {
	var out []string
	for _, name := range r.Ingredients {
		if ing, ok := ingredients[name]; !ok || !ing.InStock {
			out = append(out, name)
		}
	}
	return out
}

// Feasible returns the cookable recipes in input order.
func (e *Engine) Feasible(ingredients map[string]domain.Ingredient, recipes []domain.Recipe) []domain.Recipe {
	out := make([]domain.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if CanCook(ingredients, r) {
			out = append(out, r)
		}
	}
	return out
}

// OrderedByUrgency returns the feasible recipes sorted by the soonest
// expiry among their ingredients. Recipes with no tracked ingredient come
// last; ties keep input order.
func (e *Engine) OrderedByUrgency(ingredients map[string]domain.Ingredient, recipes []domain.Recipe) []Urgent {
	results := e.eval.EvaluateAll(ingredients)

	out := make([]Urgent, 0, len(recipes))
	for _, r := range e.Feasible(ingredients, recipes) {
		u := Urgent{Recipe: r, DaysLeft: math.MaxInt}
		for _, name := range r.Ingredients {
			res := results[name]
			if res.Status.Tracked() && res.DaysLeft < u.DaysLeft {
				u.DaysLeft = res.DaysLeft
				u.Tracked = true
			}
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysLeft < out[j].DaysLeft
	})
	return out
}

// PriorityScore sums the urgency contributions of r's ingredients.
// Unknown and out-of-stock ingredients contribute nothing.
func (e *Engine) PriorityScore(ingredients map[string]domain.Ingredient, r domain.Recipe) float64 {
	return e.score(ingredients, e.eval.EvaluateAll(ingredients), r)
}

func (e *Engine) score(ingredients map[string]domain.Ingredient, results map[string]expiry.Result, r domain.Recipe) float64 {
	window := float64(e.eval.WarningDays())

	var score float64
	for _, name := range dedupe(r.Ingredients) {
		ing, ok := ingredients[name]
		if !ok || !ing.InStock {
			continue
		}
		switch res := results[name]; res.Status {
		case expiry.StatusExpired:
			score += e.weights.ExpiredPenalty
		case expiry.StatusSoon:
			score += e.weights.SoonWeight * (window - float64(res.DaysLeft))
		}
		if ratio, tracked := ing.ConsumedRatio(); tracked && ratio < 1 {
			score += e.weights.ConsumptionWeight * (1 - ratio)
		}
	}
	return score
}

// Prioritized returns the feasible recipes with a positive score, highest
// first. Ties keep input order.
func (e *Engine) Prioritized(ingredients map[string]domain.Ingredient, recipes []domain.Recipe) []Scored {
	results := e.eval.EvaluateAll(ingredients)

	var out []Scored
	for _, r := range e.Feasible(ingredients, recipes) {
		if s := e.score(ingredients, results, r); s > 0 {
			out = append(out, Scored{Recipe: r, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return slices.Clip(out)
}
