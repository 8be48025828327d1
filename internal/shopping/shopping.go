// Package shopping builds the shopping list from out-of-stock ingredients
// and reconciles a finished trip back into the pantry.
package shopping

import (
	"slices"
	"strings"

	"github.com/hammamikhairi/larder/internal/domain"
)

// Group is the missing items of one category. Category is empty for
// ingredients that belong to no category.
type Group struct {
	Category  string
	Items     []string
	ColdChain bool
}

// MissingItems returns every out-of-stock ingredient name, in category
// order, followed by uncategorized names sorted.
func MissingItems(s domain.State) []string {
	var out []string
	for _, name := range s.IngredientNames() {
		if !s.Ingredients[name].InStock {
			out = append(out, name)
		}
	}
	return out
}

// IsColdChain reports whether category matches one of the cold-chain
// names, ignoring case.
func IsColdChain(category string, coldChain []string) bool {
	return slices.ContainsFunc(coldChain, func(c string) bool {
		return strings.EqualFold(strings.TrimSpace(c), category)
	})
}

// GroupByCategory partitions the missing items by category. Cold-chain
// groups are moved to the end so they are picked up last; every other
// group keeps its category order. Empty groups are omitted.
func GroupByCategory(s domain.State, coldChain []string) []Group {
	var warm, cold []Group
	seen := make(map[string]bool)

	for _, c := range s.Categories {
		g := Group{Category: c.Name, ColdChain: IsColdChain(c.Name, coldChain)}
		for _, name := range c.Items {
			ing, ok := s.Ingredients[name]
			if !ok || ing.InStock || seen[name] {
				continue
			}
			seen[name] = true
			g.Items = append(g.Items, name)
		}
		if len(g.Items) == 0 {
			continue
		}
		if g.ColdChain {
			cold = append(cold, g)
		} else {
			warm = append(warm, g)
		}
	}

	var loose Group
	for _, name := range s.Uncategorized() {
		if !s.Ingredients[name].InStock {
			loose.Items = append(loose.Items, name)
		}
	}
	if len(loose.Items) > 0 {
		warm = append(warm, loose)
	}
	return append(warm, cold...)
}
