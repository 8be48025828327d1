package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hammamikhairi/larder/internal/domain"
)

// Package is the current-version export document.
type Package struct {
	Version          string          `json:"version"`
	ExportedAt       string          `json:"exportedAt"`
	Ingredients      IngredientSet   `json:"ingredients"`
	Categories       CategorySet     `json:"categories"`
	Recipes          []RecipeRecord  `json:"recettes"`
	ShoppingHistory  []SessionRecord `json:"shoppingHistory"`
	RecipeCategories []string        `json:"recipeCategories"`
	FreshCategories  []string        `json:"freshCategories"`
}

// IngredientRecord is one ingredient as written to the document.
type IngredientRecord struct {
	InStock        bool        `json:"inStock"`
	Price          json.Number `json:"price"`
	Parts          int         `json:"parts"`
	ExpiryDate     string      `json:"expiryDate,omitempty"`
	RemainingParts *int        `json:"remainingParts,omitempty"`
}

// NamedIngredient is an IngredientRecord with its key.
type NamedIngredient struct {
	Name string
	IngredientRecord
}

// IngredientSet marshals as a JSON object in slice order.
type IngredientSet []NamedIngredient

// MarshalJSON writes the ingredients as an ordered object.
func (s IngredientSet) MarshalJSON() ([]byte, error) {
	return orderedObject(len(s), func(i int) (string, any) {
		return s[i].Name, s[i].IngredientRecord
	})
}

// CategorySet marshals as a JSON object in slice order.
type CategorySet []domain.Category

// MarshalJSON writes the categories as an ordered object.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	return orderedObject(len(s), func(i int) (string, any) {
		items := s[i].Items
		if items == nil {
			items = []string{}
		}
		return s[i].Name, items
	})
}

func orderedObject(n int, entry func(int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		key, val := entry(i)
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", key, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecipeRecord is one recipe as written to the document.
type RecipeRecord struct {
	Name        string   `json:"nom"`
	Category    string   `json:"categorie"`
	Ingredients []string `json:"ingredients"`
}

// SessionRecord is one shopping session as written to the document.
type SessionRecord struct {
	ID    string      `json:"id"`
	Date  string      `json:"date"`
	Items []string    `json:"items"`
	Total json.Number `json:"total"`
}

// Build converts canonical state to the current document version. It is
// the inverse of Sanitize.
func Build(s domain.State, exportedAt time.Time) Package {
	pkg := Package{
		Version:          CurrentVersion,
		ExportedAt:       exportedAt.UTC().Format(time.RFC3339),
		Ingredients:      make(IngredientSet, 0, len(s.Ingredients)),
		Categories:       make(CategorySet, 0, len(s.Categories)),
		Recipes:          make([]RecipeRecord, 0, len(s.Recipes)),
		ShoppingHistory:  make([]SessionRecord, 0, len(s.ShoppingHistory)),
		RecipeCategories: orEmpty(s.RecipeCategories),
		FreshCategories:  orEmpty(s.FreshCategories),
	}

	for _, name := range s.IngredientNames() {
		ing := s.Ingredients[name]
		rec := IngredientRecord{
			InStock: ing.InStock,
			Price:   json.Number(ing.Price.String()),
			Parts:   ing.Parts,
		}
		if ing.ExpiryDate != nil {
			rec.ExpiryDate = ing.ExpiryDate.String()
		}
		if ing.RemainingParts != nil {
			n := *ing.RemainingParts
			rec.RemainingParts = &n
		}
		pkg.Ingredients = append(pkg.Ingredients, NamedIngredient{Name: name, IngredientRecord: rec})
	}
	pkg.Categories = append(pkg.Categories, s.Categories...)

	for _, r := range s.Recipes {
		pkg.Recipes = append(pkg.Recipes, RecipeRecord{
			Name:        r.Name,
			Category:    r.Category,
			Ingredients: orEmpty(r.Ingredients),
		})
	}
	for _, h := range s.ShoppingHistory {
		pkg.ShoppingHistory = append(pkg.ShoppingHistory, SessionRecord{
			ID:    h.ID,
			Date:  h.Timestamp.Format(time.RFC3339Nano),
			Items: orEmpty(h.Items),
			Total: json.Number(h.Total.String()),
		})
	}
	return pkg
}

// Marshal builds and encodes the export document.
func Marshal(s domain.State, exportedAt time.Time) ([]byte, error) {
	data, err := json.MarshalIndent(Build(s, exportedAt), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Import parses, validates and sanitizes a raw document. Nothing is
// returned but the report when the document is structurally broken.
func Import(data []byte) (domain.State, Result, error) {
	doc, err := Parse(data)
	if err != nil {
		res := Result{Errors: []Issue{{Message: err.Error()}}}
		return domain.State{}, res, &ValidationError{Issues: res.Errors}
	}
	return Sanitize(doc)
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
