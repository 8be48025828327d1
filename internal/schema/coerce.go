package schema

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/larder/internal/domain"
)

// The coerce helpers back both the soft checks in Validate and the
// repairs in Sanitize, so a warning is raised exactly when a default is
// applied.

func coerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// Numbers outside these bounds are treated as malformed. Without them a
// value like 1e30000000 takes seconds to truncate and megabytes to write.
const (
	maxScale     = 18
	maxMagnitude = 30
	maxNumberLen = 64
)

var (
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)
)

func coerceDecimal(v any) (decimal.Decimal, bool) {
	d, ok := parseDecimal(v)
	if !ok || !inRange(d) {
		return decimal.Zero, false
	}
	return d, true
}

// inRange bounds both the fractional digits and the integer digits of d.
func inRange(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	return exp >= -maxScale && exp+int64(d.NumDigits()) <= maxMagnitude
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		if len(n) > maxNumberLen {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(string(n))
		return d, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" || len(s) > maxNumberLen {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case decimal.Decimal:
		return n, true
	}
	return decimal.Zero, false
}

// coercePrice accepts any non-negative number.
func coercePrice(v any) (decimal.Decimal, bool) {
	d, ok := coerceDecimal(v)
	if !ok || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// coerceInt accepts numbers and numeric strings, truncating fractions.
func coerceInt(v any) (int, bool) {
	d, ok := coerceDecimal(v)
	if !ok {
		return 0, false
	}
	d = d.Truncate(0)
	if d.LessThan(minInt32) || d.GreaterThan(maxInt32) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// coerceParts accepts integers >= 1.
func coerceParts(v any) (int, bool) {
	n, ok := coerceInt(v)
	if !ok || n < 1 {
		return 1, false
	}
	return n, true
}

// absent reports whether an optional field should be treated as unset.
func absent(v any, present bool) bool {
	if !present || v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// coerceDate parses a YYYY-MM-DD string.
func coerceDate(v any) (domain.Date, bool) {
	s, ok := v.(string)
	if !ok {
		return domain.Date{}, false
	}
	return domain.ParseDate(strings.TrimSpace(s))
}

// coerceRemaining accepts an integer in [0, parts].
func coerceRemaining(v any, parts int) (int, bool) {
	d, ok := coerceDecimal(v)
	if !ok || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	n, ok := coerceInt(v)
	if !ok || n < 0 || n > parts {
		return 0, false
	}
	return n, true
}

// isNumeric reports whether v is a number or a numeric string.
func isNumeric(v any) bool {
	_, ok := coerceDecimal(v)
	return ok
}
