package pantry

import (
	"slices"

	"github.com/hammamikhairi/larder/internal/domain"
)

// Impact describes what a deletion would take with it, so the caller can
// decide whether to ask for confirmation.
type Impact struct {
	// Ingredients that would be deleted.
	Ingredients []string
	// Recipes that would be deleted because nothing would be left in them.
	Recipes []string
	// Recipes that would survive with fewer ingredients.
	Trimmed []string
}

// Destructive reports whether the deletion touches any ingredient or
// recipe.
func (i Impact) Destructive() bool {
	return len(i.Ingredients) > 0 || len(i.Recipes) > 0 || len(i.Trimmed) > 0
}

// IngredientDeletionImpact reports what RemoveIngredient(s, name) would
// remove. Unknown names have no impact.
func IngredientDeletionImpact(s domain.State, name string) Impact {
	if _, ok := s.Ingredients[name]; !ok {
		return Impact{}
	}
	return impactOf(s, []string{name})
}

// CategoryDeletionImpact reports what RemoveCategory(s, name) would
// remove.
func CategoryDeletionImpact(s domain.State, name string) Impact {
	ci := s.CategoryIndex(name)
	if ci < 0 {
		return Impact{}
	}
	var names []string
	for _, n := range s.Categories[ci].Items {
		if _, ok := s.Ingredients[n]; ok {
			names = append(names, n)
		}
	}
	return impactOf(s, names)
}

func impactOf(s domain.State, names []string) Impact {
	imp := Impact{Ingredients: slices.Clone(names)}
	for _, r := range s.Recipes {
		left := 0
		hit := false
		for _, n := range r.Ingredients {
			if slices.Contains(names, n) {
				hit = true
			} else {
				left++
			}
		}
		switch {
		case hit && left == 0:
			imp.Recipes = append(imp.Recipes, r.Name)
		case hit:
			imp.Trimmed = append(imp.Trimmed, r.Name)
		}
	}
	return imp
}
