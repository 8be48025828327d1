// Package schema validates, migrates and builds the portable export
// document. Every known document version is described by a Schema;
// older documents are brought to the current shape by walking the
// upgrade chain one version at a time.
package schema

import "slices"

// Known document versions, oldest first.
const (
	Version100 = "1.0.0"
	Version110 = "1.1.0"
	Version120 = "1.2.0"
	Version130 = "1.3.0"

	CurrentVersion = Version130
)

// Top-level document fields.
const (
	fieldVersion          = "version"
	fieldExportedAt       = "exportedAt"
	fieldIngredients      = "ingredients"
	fieldCategories       = "categories"
	fieldRecipes          = "recettes"
	fieldHistory          = "shoppingHistory"
	fieldRecipeCategories = "recipeCategories"
	fieldFreshCategories  = "freshCategories"
)

// Schema describes what a document of one version is guaranteed to hold.
type Schema struct {
	Version string
	// RequiredArrays are top-level string arrays that must be present.
	RequiredArrays []string
	// RemainingParts reports whether ingredients may track partial
	// consumption.
	RemainingParts bool
	// upgrade fills in what the next version requires. Nil on the last.
	upgrade func(*document)
}

var chain = []Schema{
	{
		Version: Version100,
		upgrade: func(*document) {},
	},
	{
		Version:        Version110,
		RemainingParts: true,
		upgrade:        backfillRecipeCategories,
	},
	{
		Version:        Version120,
		RequiredArrays: []string{fieldRecipeCategories},
		RemainingParts: true,
		upgrade:        backfillFreshCategories,
	},
	{
		Version:        Version130,
		RequiredArrays: []string{fieldRecipeCategories, fieldFreshCategories},
		RemainingParts: true,
	},
}

// Versions returns every known version, oldest first.
func Versions() []string {
	out := make([]string, len(chain))
	for i, s := range chain {
		out[i] = s.Version
	}
	return out
}

// Lookup returns the schema of a version.
func Lookup(version string) (Schema, bool) {
	i := slices.IndexFunc(chain, func(s Schema) bool { return s.Version == version })
	if i < 0 {
		return Schema{}, false
	}
	return chain[i], true
}

// Requires reports whether a top-level array is mandatory in this version.
func (s Schema) Requires(field string) bool {
	return slices.Contains(s.RequiredArrays, field)
}

// upgradeFrom walks doc from its version to the current one.
func upgradeFrom(version string, doc *document) {
	start := slices.IndexFunc(chain, func(s Schema) bool { return s.Version == version })
	if start < 0 {
		return
	}
	for _, s := range chain[start:] {
		if s.upgrade != nil {
			s.upgrade(doc)
		}
	}
}

// backfillRecipeCategories derives the recipe category list from the
// recipes when an older document does not carry one.
func backfillRecipeCategories(doc *document) {
	if doc.recipeCategories != nil {
		return
	}
	doc.recipeCategories = []string{}
	for _, r := range doc.recipes {
		if r.Category != "" && !slices.Contains(doc.recipeCategories, r.Category) {
			doc.recipeCategories = append(doc.recipeCategories, r.Category)
		}
	}
}

func backfillFreshCategories(doc *document) {
	if doc.freshCategories == nil {
		doc.freshCategories = []string{}
	}
}
