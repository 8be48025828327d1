package schema

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/larder/internal/domain"
)

// document is the version-neutral intermediate the upgrade chain works
// on. Nil slices mean "absent from the source document".
type document struct {
	ingredients      map[string]domain.Ingredient
	categories       []domain.Category
	recipes          []domain.Recipe
	history          []domain.ShoppingSession
	recipeCategories []string
	freshCategories  []string
}

// Sanitize turns a decoded document into canonical state. It validates
// first and refuses a document with structural errors; value-level
// anomalies are repaired with the same defaults the warnings announce,
// dangling references are dropped silently, and older versions are
// upgraded to the current shape.
func Sanitize(doc any) (domain.State, Result, error) {
	res := Validate(doc)
	if !res.Valid {
		return domain.State{}, res, &ValidationError{Issues: res.Errors}
	}
	schema, _ := Lookup(res.Version)
	root, _ := asObject(doc)

	d := &document{}
	d.ingredients = readIngredients(root, schema)
	d.categories = readCategories(root, d.ingredients)
	d.recipes = readRecipes(root, d.ingredients)
	d.history = readHistory(root)
	d.recipeCategories = readOptionalStrings(root, fieldRecipeCategories)
	d.freshCategories = readOptionalStrings(root, fieldFreshCategories)

	upgradeFrom(schema.Version, d)

	return d.state(), res, nil
}

func (d *document) state() domain.State {
	s := domain.NewState()
	s.Ingredients = d.ingredients
	s.Categories = d.categories
	s.Recipes = d.recipes
	s.ShoppingHistory = d.history
	s.RecipeCategories = dedupe(d.recipeCategories)

	for _, name := range dedupe(d.freshCategories) {
		if s.CategoryIndex(name) >= 0 {
			s.FreshCategories = append(s.FreshCategories, name)
		}
	}
	return s
}

func readIngredients(root fields, schema Schema) map[string]domain.Ingredient {
	raw, _ := root.Get(fieldIngredients)
	obj, _ := asObject(raw)

	out := make(map[string]domain.Ingredient, len(obj.Keys()))
	for _, name := range obj.Keys() {
		val, _ := obj.Get(name)
		f, _ := asObject(val)
		out[name] = readIngredient(f, schema)
	}
	return out
}

func readIngredient(f fields, schema Schema) domain.Ingredient {
	var ing domain.Ingredient

	inStock, _ := f.Get("inStock")
	ing.InStock, _ = coerceBool(inStock)

	price, _ := f.Get("price")
	if p, ok := coercePrice(price); ok {
		ing.Price = p
	} else {
		ing.Price = decimal.Zero
	}

	parts, _ := f.Get("parts")
	ing.Parts, _ = coerceParts(parts)

	if raw, present := f.Get("expiryDate"); !absent(raw, present) {
		if d, ok := coerceDate(raw); ok {
			ing.ExpiryDate = &d
		}
	}
	if raw, present := f.Get("remainingParts"); schema.RemainingParts && !absent(raw, present) {
		if n, ok := coerceRemaining(raw, ing.Parts); ok {
			ing.RemainingParts = &n
		}
	}
	return ing
}

// readCategories keeps only names that exist, and each ingredient only in
// the first category that lists it.
func readCategories(root fields, ingredients map[string]domain.Ingredient) []domain.Category {
	raw, _ := root.Get(fieldCategories)
	obj, _ := asObject(raw)

	placed := make(map[string]bool, len(ingredients))
	out := make([]domain.Category, 0, len(obj.Keys()))
	for _, name := range obj.Keys() {
		val, _ := obj.Get(name)
		items, _ := asStrings(val)

		c := domain.Category{Name: name, Items: []string{}}
		for _, item := range items {
			if _, ok := ingredients[item]; ok && !placed[item] {
				placed[item] = true
				c.Items = append(c.Items, item)
			}
		}
		out = append(out, c)
	}
	return out
}

// readRecipes keeps only existing ingredients and drops recipes left
// with none.
func readRecipes(root fields, ingredients map[string]domain.Ingredient) []domain.Recipe {
	raw, _ := root.Get(fieldRecipes)
	arr, _ := asArray(raw)

	out := make([]domain.Recipe, 0, len(arr))
	for _, entry := range arr {
		f, _ := asObject(entry)
		name, _ := recipeField(f, "nom", "name")
		cat, _ := recipeField(f, "categorie", "category")
		ings, _ := f.Get("ingredients")
		names, _ := asStrings(ings)

		r := domain.Recipe{Name: name.(string), Category: cat.(string), Ingredients: []string{}}
		for _, n := range dedupe(names) {
			if _, ok := ingredients[n]; ok {
				r.Ingredients = append(r.Ingredients, n)
			}
		}
		if len(r.Ingredients) > 0 {
			out = append(out, r)
		}
	}
	return out
}

func readHistory(root fields) []domain.ShoppingSession {
	raw, _ := root.Get(fieldHistory)
	arr, _ := asArray(raw)

	out := make([]domain.ShoppingSession, 0, len(arr))
	for _, entry := range arr {
		f, _ := asObject(entry)
		id, _ := f.Get("id")
		date, _ := f.Get("date")
		items, _ := f.Get("items")
		total, _ := f.Get("total")

		names, _ := asStrings(items)
		ts, _ := parseTimestamp(date.(string))
		sum, _ := coerceDecimal(total)
		out = append(out, domain.ShoppingSession{
			ID:        id.(string),
			Timestamp: ts,
			Items:     names,
			Total:     sum,
		})
	}
	return out
}

// readOptionalStrings returns nil when the field is absent or malformed,
// leaving the upgrade chain to rebuild it.
func readOptionalStrings(root fields, field string) []string {
	raw, present := root.Get(field)
	if !present {
		return nil
	}
	out, ok := asStrings(raw)
	if !ok {
		return nil
	}
	return out
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
