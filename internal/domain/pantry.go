// Package domain defines the core types and interfaces for the pantry.
// All other packages depend on domain; domain depends on nothing but the
// decimal type used for money.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is a stocked (or wanted) item. Its identity is the name it is
// keyed under in State.Ingredients.
type Ingredient struct {
	InStock bool
	Price   decimal.Decimal
	Parts   int // how many portions one purchase yields, always >= 1

	// ExpiryDate is nil when the item is not expiry-tracked.
	ExpiryDate *Date
	// RemainingParts is nil when partial consumption is not tracked.
	// When set it lies in [0, Parts].
	RemainingParts *int
}

// Clone returns a copy that shares no pointers with i.
func (i Ingredient) Clone() Ingredient {
	out := i
	if i.ExpiryDate != nil {
		d := *i.ExpiryDate
		out.ExpiryDate = &d
	}
	if i.RemainingParts != nil {
		n := *i.RemainingParts
		out.RemainingParts = &n
	}
	return out
}

// ConsumedRatio returns RemainingParts/Parts. The second result is false
// when consumption is not tracked.
func (i Ingredient) ConsumedRatio() (float64, bool) {
	if i.RemainingParts == nil || i.Parts < 1 {
		return 0, false
	}
	return float64(*i.RemainingParts) / float64(i.Parts), true
}

// Category groups ingredient names. Membership, not ownership: the
// ingredient itself lives in State.Ingredients.
type Category struct {
	Name  string
	Items []string
}

// Recipe is a named set of required ingredients.
type Recipe struct {
	Name        string
	Category    string
	Ingredients []string
}

// ShoppingSession is an immutable record of a finished shopping trip.
type ShoppingSession struct {
	ID        string
	Timestamp time.Time
	Items     []string
	Total     decimal.Decimal
}

// State is the canonical aggregate every core computation reads. It is
// owned by the caller; core functions never mutate a State they are
// given and always hand back a fresh one.
type State struct {
	Ingredients      map[string]Ingredient
	Categories       []Category
	Recipes          []Recipe
	ShoppingHistory  []ShoppingSession // most recent first
	RecipeCategories []string
	FreshCategories  []string
}

// NewState returns an empty state with every collection allocated.
func NewState() State {
	return State{
		Ingredients:      map[string]Ingredient{},
		Categories:       []Category{},
		Recipes:          []Recipe{},
		ShoppingHistory:  []ShoppingSession{},
		RecipeCategories: []string{},
		FreshCategories:  []string{},
	}
}

// Clone deep-copies s.
func (s State) Clone() State {
	out := State{
		Ingredients:      make(map[string]Ingredient, len(s.Ingredients)),
		Categories:       make([]Category, len(s.Categories)),
		Recipes:          make([]Recipe, len(s.Recipes)),
		ShoppingHistory:  make([]ShoppingSession, len(s.ShoppingHistory)),
		RecipeCategories: cloneStrings(s.RecipeCategories),
		FreshCategories:  cloneStrings(s.FreshCategories),
	}
	for name, ing := range s.Ingredients {
		out.Ingredients[name] = ing.Clone()
	}
	for i, c := range s.Categories {
		out.Categories[i] = Category{Name: c.Name, Items: cloneStrings(c.Items)}
	}
	for i, r := range s.Recipes {
		out.Recipes[i] = Recipe{Name: r.Name, Category: r.Category, Ingredients: cloneStrings(r.Ingredients)}
	}
	for i, h := range s.ShoppingHistory {
		h.Items = cloneStrings(h.Items)
		out.ShoppingHistory[i] = h
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}

// CategoryOf returns the category an ingredient belongs to.
func (s State) CategoryOf(ingredient string) (string, bool) {
	for _, c := range s.Categories {
		if slices.Contains(c.Items, ingredient) {
			return c.Name, true
		}
	}
	return "", false
}

// CategoryIndex returns the position of a category, or -1.
func (s State) CategoryIndex(name string) int {
	return slices.IndexFunc(s.Categories, func(c Category) bool { return c.Name == name })
}

// RecipeIndex returns the position of a recipe, or -1.
func (s State) RecipeIndex(name string) int {
	return slices.IndexFunc(s.Recipes, func(r Recipe) bool { return r.Name == name })
}

// IsFresh reports whether a category carries the fresh tag.
func (s State) IsFresh(category string) bool {
	return slices.Contains(s.FreshCategories, category)
}

// Uncategorized returns, sorted, the ingredient names no category lists.
func (s State) Uncategorized() []string {
	listed := make(map[string]bool, len(s.Ingredients))
	for _, c := range s.Categories {
		for _, n := range c.Items {
			listed[n] = true
		}
	}
	var out []string
	for name := range s.Ingredients {
		if !listed[name] {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// IngredientNames returns every ingredient name in display order:
// categories first, in order, then the uncategorized names sorted.
// Dangling category entries are skipped.
func (s State) IngredientNames() []string {
	out := make([]string, 0, len(s.Ingredients))
	seen := make(map[string]bool, len(s.Ingredients))
	for _, c := range s.Categories {
		for _, n := range c.Items {
			if _, ok := s.Ingredients[n]; ok && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return append(out, s.Uncategorized()...)
}
