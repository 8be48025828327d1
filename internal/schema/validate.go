package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/hammamikhairi/larder/internal/domain"
)

// Issue is one validation finding. Path points at the offending value,
// e.g. "ingredients.Milk.price".
type Issue struct {
	Path    string
	Message string
}

// String renders the issue as "path: message".
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// Result is the outcome of Validate. Errors reject the document;
// Warnings are repaired by Sanitize and only reported.
type Result struct {
	Valid    bool
	Version  string
	Errors   []Issue
	Warnings []Issue
}

// ValidationError carries the structural errors of a rejected document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.String()
	}
	return fmt.Sprintf("invalid document (%d errors): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Unwrap lets callers match with errors.Is(err, domain.ErrInvalidDocument).
func (e *ValidationError) Unwrap() error {
	return domain.ErrInvalidDocument
}

type validator struct {
	schema Schema
	res    Result
}

func (v *validator) fail(path, format string, args ...any) {
	v.res.Errors = append(v.res.Errors, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) warn(path, format string, args ...any) {
	v.res.Warnings = append(v.res.Warnings, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func join(parts ...string) string {
	return strings.Join(parts, ".")
}

// Validate checks an untrusted decoded document against the schema of
// the version it declares. A missing version means 1.0.0.
func Validate(doc any) Result {
	root, ok := asObject(doc)
	if !ok {
		return Result{Errors: []Issue{{Path: "", Message: "document must be a JSON object"}}}
	}

	v := &validator{}
	v.res.Version = Version100
	if raw, present := root.Get(fieldVersion); present && raw != nil {
		s, ok := raw.(string)
		switch {
		case !ok:
			v.fail(fieldVersion, "must be a string")
		case strings.TrimSpace(s) == "":
		default:
			v.res.Version = strings.TrimSpace(s)
		}
	}
	schema, known := Lookup(v.res.Version)
	if !known {
		v.fail(fieldVersion, "unsupported version %q (known: %s)", v.res.Version, strings.Join(Versions(), ", "))
		schema = chain[0]
	}
	v.schema = schema

	v.ingredients(root)
	v.categories(root)
	v.recipes(root)
	v.history(root)
	v.gatedArrays(root)

	v.res.Valid = len(v.res.Errors) == 0
	return v.res
}

func (v *validator) ingredients(root fields) {
	raw, _ := root.Get(fieldIngredients)
	obj, ok := asObject(raw)
	if !ok {
		v.fail(fieldIngredients, "must be an object")
		return
	}
	for _, name := range obj.Keys() {
		val, _ := obj.Get(name)
		ing, ok := asObject(val)
		if !ok {
			v.fail(join(fieldIngredients, name), "must be an object")
			continue
		}
		v.ingredient(join(fieldIngredients, name), ing)
	}
}

func (v *validator) ingredient(path string, ing fields) {
	inStock, _ := ing.Get("inStock")
	if _, ok := coerceBool(inStock); !ok {
		v.warn(join(path, "inStock"), "not a boolean, defaulting to false")
	}
	price, _ := ing.Get("price")
	if _, ok := coercePrice(price); !ok {
		v.warn(join(path, "price"), "not a non-negative number, defaulting to 0")
	}
	rawParts, _ := ing.Get("parts")
	parts, ok := coerceParts(rawParts)
	if !ok {
		v.warn(join(path, "parts"), "not a number >= 1, defaulting to 1")
	}
	if raw, present := ing.Get("expiryDate"); !absent(raw, present) {
		if _, ok := coerceDate(raw); !ok {
			v.warn(join(path, "expiryDate"), "not a YYYY-MM-DD date, dropped")
		}
	}
	if raw, present := ing.Get("remainingParts"); !absent(raw, present) {
		switch {
		case !v.schema.RemainingParts:
			v.warn(join(path, "remainingParts"), "not supported before %s, dropped", Version110)
		default:
			if _, ok := coerceRemaining(raw, parts); !ok {
				v.warn(join(path, "remainingParts"), "not an integer in [0, %d], dropped", parts)
			}
		}
	}
}

func (v *validator) categories(root fields) {
	raw, _ := root.Get(fieldCategories)
	obj, ok := asObject(raw)
	if !ok {
		v.fail(fieldCategories, "must be an object")
		return
	}
	for _, name := range obj.Keys() {
		val, _ := obj.Get(name)
		if _, ok := asStrings(val); !ok {
			v.fail(join(fieldCategories, name), "must be an array of strings")
		}
	}
}

// recipeField reads the first of several accepted spellings.
func recipeField(r fields, names ...string) (any, bool) {
	for _, n := range names {
		if val, ok := r.Get(n); ok {
			return val, true
		}
	}
	return nil, false
}

func (v *validator) recipes(root fields) {
	raw, _ := root.Get(fieldRecipes)
	arr, ok := asArray(raw)
	if !ok {
		v.fail(fieldRecipes, "must be an array")
		return
	}
	for i, entry := range arr {
		path := fmt.Sprintf("%s[%d]", fieldRecipes, i)
		r, ok := asObject(entry)
		if !ok {
			v.fail(path, "must be an object")
			continue
		}
		if name, _ := recipeField(r, "nom", "name"); !isString(name) {
			v.fail(join(path, "name"), "must be a string")
		}
		if cat, _ := recipeField(r, "categorie", "category"); !isString(cat) {
			v.fail(join(path, "category"), "must be a string")
		}
		ings, _ := r.Get("ingredients")
		if _, ok := asStrings(ings); !ok {
			v.fail(join(path, "ingredients"), "must be an array of strings")
		}
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func (v *validator) history(root fields) {
	raw, _ := root.Get(fieldHistory)
	arr, ok := asArray(raw)
	if !ok {
		v.fail(fieldHistory, "must be an array")
		return
	}
	for i, entry := range arr {
		path := fmt.Sprintf("%s[%d]", fieldHistory, i)
		h, ok := asObject(entry)
		if !ok {
			v.fail(path, "must be an object")
			continue
		}
		if id, _ := h.Get("id"); !isString(id) {
			v.fail(join(path, "id"), "must be a string")
		}
		date, _ := h.Get("date")
		if !isString(date) {
			v.fail(join(path, "date"), "must be a string")
		} else if _, ok := parseTimestamp(date.(string)); !ok {
			v.warn(join(path, "date"), "not an ISO-8601 timestamp, kept as zero time")
		}
		items, _ := h.Get("items")
		if _, ok := asStrings(items); !ok {
			v.fail(join(path, "items"), "must be an array of strings")
		}
		if total, _ := h.Get("total"); !isNumeric(total) {
			v.fail(join(path, "total"), "must be a number or numeric string within range")
		}
	}
}

func (v *validator) gatedArrays(root fields) {
	for _, field := range []string{fieldRecipeCategories, fieldFreshCategories} {
		raw, present := root.Get(field)
		required := v.schema.Requires(field)
		if !present || raw == nil {
			if required {
				v.fail(field, "is required from version %s", introducedIn(field))
			}
			continue
		}
		if _, ok := asStrings(raw); !ok {
			if required {
				v.fail(field, "must be an array of strings")
			} else {
				v.warn(field, "not an array of strings, rebuilt")
			}
		}
	}
}

// introducedIn returns the first version that requires field.
func introducedIn(field string) string {
	for _, s := range chain {
		if s.Requires(field) {
			return s.Version
		}
	}
	return CurrentVersion
}

// parseTimestamp accepts RFC 3339 with or without fractional seconds, and
// a bare date.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if d, ok := domain.ParseDate(s); ok {
		return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
