// Package pantry holds the inventory edits the host applies to a State.
// Every operation takes a State by value and returns a new one; the
// input is never modified. Edits that name something that no longer
// exists are no-ops.
package pantry

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hammamikhairi/larder/internal/domain"
)

// AddIngredient registers a new ingredient, filed under category when
// category is non-empty.
func AddIngredient(s domain.State, name, category string, ing domain.Ingredient) (domain.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, fmt.Errorf("ingredient name is empty: %w", domain.ErrInvalidInput)
	}
	if _, ok := s.Ingredients[name]; ok {
		return s, fmt.Errorf("ingredient %q: %w", name, domain.ErrAlreadyExists)
	}
	ci := -1
	if category != "" {
		if ci = s.CategoryIndex(category); ci < 0 {
			return s, fmt.Errorf("category %q: %w", category, domain.ErrUnknownCategory)
		}
	}
	if ing.Parts < 1 {
		ing.Parts = 1
	}
	if ing.Price.IsNegative() {
		return s, fmt.Errorf("ingredient %q has a negative price: %w", name, domain.ErrInvalidInput)
	}
	if ing.RemainingParts != nil && (*ing.RemainingParts < 0 || *ing.RemainingParts > ing.Parts) {
		return s, fmt.Errorf("remaining parts %d outside [0, %d]: %w", *ing.RemainingParts, ing.Parts, domain.ErrInvalidInput)
	}

	out := s.Clone()
	out.Ingredients[name] = ing.Clone()
	if ci >= 0 {
		out.Categories[ci].Items = append(out.Categories[ci].Items, name)
	}
	return out, nil
}

// RemoveIngredient deletes an ingredient and every reference to it.
// Recipes left without ingredients are dropped.
func RemoveIngredient(s domain.State, name string) domain.State {
	if _, ok := s.Ingredients[name]; !ok {
		return s.Clone()
	}
	return removeIngredients(s.Clone(), []string{name})
}

func removeIngredients(s domain.State, names []string) domain.State {
	gone := func(n string) bool { return slices.Contains(names, n) }

	for _, n := range names {
		delete(s.Ingredients, n)
	}
	for i := range s.Categories {
		s.Categories[i].Items = slices.DeleteFunc(s.Categories[i].Items, gone)
	}
	recipes := s.Recipes[:0]
	for _, r := range s.Recipes {
		r.Ingredients = slices.DeleteFunc(r.Ingredients, gone)
		if len(r.Ingredients) > 0 {
			recipes = append(recipes, r)
		}
	}
	s.Recipes = recipes
	return s
}

// ToggleStock flips an ingredient's in-stock flag. Restocking a tracked
// ingredient refills it.
func ToggleStock(s domain.State, name string) domain.State {
	out := s.Clone()
	ing, ok := out.Ingredients[name]
	if !ok {
		return out
	}
	ing.InStock = !ing.InStock
	if ing.InStock && ing.RemainingParts != nil {
		n := ing.Parts
		ing.RemainingParts = &n
	}
	out.Ingredients[name] = ing
	return out
}

// SetExpiry sets or, with a nil date, clears an ingredient's expiry date.
func SetExpiry(s domain.State, name string, date *domain.Date) domain.State {
	out := s.Clone()
	ing, ok := out.Ingredients[name]
	if !ok {
		return out
	}
	ing.ExpiryDate = nil
	if date != nil && date.Valid() {
		d := *date
		ing.ExpiryDate = &d
	}
	out.Ingredients[name] = ing
	return out
}

// Consume records that parts portions of an in-stock ingredient were
// used. Tracking starts on the first call; using the last portion marks
// the ingredient out of stock.
func Consume(s domain.State, name string, parts int) domain.State {
	out := s.Clone()
	ing, ok := out.Ingredients[name]
	if !ok || !ing.InStock || parts < 1 {
		return out
	}
	left := ing.Parts
	if ing.RemainingParts != nil {
		left = *ing.RemainingParts
	}
	left = max(left-parts, 0)
	ing.RemainingParts = &left
	if left == 0 {
		ing.InStock = false
	}
	out.Ingredients[name] = ing
	return out
}

// AddCategory appends an empty category.
func AddCategory(s domain.State, name string) (domain.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, fmt.Errorf("category name is empty: %w", domain.ErrInvalidInput)
	}
	if s.CategoryIndex(name) >= 0 {
		return s, fmt.Errorf("category %q: %w", name, domain.ErrAlreadyExists)
	}
	out := s.Clone()
	out.Categories = append(out.Categories, domain.Category{Name: name, Items: []string{}})
	return out, nil
}

// RemoveCategory deletes a category together with the ingredients it
// holds, cascading like RemoveIngredient.
func RemoveCategory(s domain.State, name string) domain.State {
	out := s.Clone()
	ci := out.CategoryIndex(name)
	if ci < 0 {
		return out
	}
	items := out.Categories[ci].Items
	out.Categories = slices.Delete(out.Categories, ci, ci+1)
	out.FreshCategories = slices.DeleteFunc(out.FreshCategories, func(c string) bool { return c == name })
	return removeIngredients(out, items)
}

// SetFresh tags or untags a category as fresh produce.
func SetFresh(s domain.State, category string, fresh bool) domain.State {
	out := s.Clone()
	if out.CategoryIndex(category) < 0 || out.IsFresh(category) == fresh {
		return out
	}
	if fresh {
		out.FreshCategories = append(out.FreshCategories, category)
	} else {
		out.FreshCategories = slices.DeleteFunc(out.FreshCategories, func(c string) bool { return c == category })
	}
	return out
}

// AddRecipe appends a recipe. Every ingredient must exist; duplicates
// are collapsed. A new recipe category is registered on first use.
func AddRecipe(s domain.State, r domain.Recipe) (domain.State, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return s, fmt.Errorf("recipe name is empty: %w", domain.ErrInvalidInput)
	}
	if s.RecipeIndex(r.Name) >= 0 {
		return s, fmt.Errorf("recipe %q: %w", r.Name, domain.ErrAlreadyExists)
	}
	ings := make([]string, 0, len(r.Ingredients))
	for _, n := range r.Ingredients {
		if _, ok := s.Ingredients[n]; !ok {
			return s, fmt.Errorf("recipe %q needs %q: %w", r.Name, n, domain.ErrUnknownIngredient)
		}
		if !slices.Contains(ings, n) {
			ings = append(ings, n)
		}
	}
	if len(ings) == 0 {
		return s, fmt.Errorf("recipe %q has no ingredients: %w", r.Name, domain.ErrInvalidInput)
	}

	out := s.Clone()
	out.Recipes = append(out.Recipes, domain.Recipe{Name: r.Name, Category: r.Category, Ingredients: ings})
	if r.Category != "" && !slices.Contains(out.RecipeCategories, r.Category) {
		out.RecipeCategories = append(out.RecipeCategories, r.Category)
	}
	return out, nil
}

// RemoveRecipe deletes a recipe by name.
func RemoveRecipe(s domain.State, name string) domain.State {
	out := s.Clone()
	if i := out.RecipeIndex(name); i >= 0 {
		out.Recipes = slices.Delete(out.Recipes, i, i+1)
	}
	return out
}

// ClearHistory forgets every recorded shopping session.
func ClearHistory(s domain.State) domain.State {
	out := s.Clone()
	out.ShoppingHistory = []domain.ShoppingSession{}
	return out
}
