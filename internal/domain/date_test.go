package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2026-03-14", Date{2026, time.March, 14}, true},
		{"2024-02-29", Date{2024, time.February, 29}, true},
		{"2025-02-29", Date{}, false},
		{"2026-13-01", Date{}, false},
		{"2026-3-14", Date{}, false},
		{"14/03/2026", Date{}, false},
		{"2026-03-14T00:00:00Z", Date{}, false},
		{"", Date{}, false},
		{"abcd-ef-gh", Date{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok=%v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := Date{2026, time.March, 28}

	if got := d.AddDays(5).String(); got != "2026-04-02" {
		t.Fatalf("AddDays across month: got %s", got)
	}
	if got := d.DaysUntil(d.AddDays(-3)); got != -3 {
		t.Fatalf("DaysUntil past: got %d", got)
	}
	if got := d.DaysUntil(Date{2027, time.March, 28}); got != 365 {
		t.Fatalf("DaysUntil next year: got %d", got)
	}
	if !d.Before(d.AddDays(1)) || d.Before(d) {
		t.Fatal("Before is not strict")
	}
	if (Date{}).Valid() {
		t.Fatal("zero date must be invalid")
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	instant := time.Date(2026, time.June, 30, 20, 0, 0, 0, time.UTC)

	if got := DateOf(instant.In(loc)).String(); got != "2026-07-01" {
		t.Fatalf("expected local day 2026-07-01, got %s", got)
	}
}
