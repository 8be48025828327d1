package schema

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in     any
		want   int
		wantOK bool
	}{
		{json.Number("4"), 4, true},
		{json.Number("4.9"), 4, true},
		{"-3", -3, true},
		{json.Number("2147483647"), math.MaxInt32, true},
		{json.Number("-2147483648"), math.MinInt32, true},
		{json.Number("2147483648"), 0, false},
		{json.Number("-2147483649"), 0, false},
		{json.Number("18446744073709551621"), 0, false},
		{json.Number("-18446744073709551621"), 0, false},
		{"1e30000000", 0, false},
		{1e300, 0, false},
		{"four", 0, false},
	}
	for _, tt := range tests {
		got, ok := coerceInt(tt.in)
		assert.Equal(t, tt.wantOK, ok, "coerceInt(%v)", tt.in)
		assert.Equal(t, tt.want, got, "coerceInt(%v)", tt.in)
	}
}

func TestCoerceDecimalBounds(t *testing.T) {
	tests := []struct {
		in     any
		wantOK bool
	}{
		{json.Number("1.20"), true},
		{json.Number("0"), true},
		{"0.000000000000000001", true},
		{"999999999999999999999999999999", true},
		{"1000000000000000000000000000000", false},
		{"0.0000000000000000001", false},
		{"1e30000000", false},
		{"1e-30000000", false},
		{"0e30000000", false},
		{json.Number("1" + strings.Repeat("0", 100000)), false},
		{2.5, true},
		{math.Inf(1), false},
	}
	for _, tt := range tests {
		_, ok := coerceDecimal(tt.in)
		assert.Equal(t, tt.wantOK, ok, "coerceDecimal(%v)", tt.in)
	}
}
