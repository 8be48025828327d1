package expiry

import (
	"testing"
	"time"

	"github.com/hammamikhairi/larder/internal/domain"
)

var fixedNow = time.Date(2026, time.May, 10, 23, 30, 0, 0, time.UTC)

func newTestEvaluator(opts ...Option) *Evaluator {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}
	return New(append(base, opts...)...)
}

func dateIn(days int) *domain.Date {
	d := domain.DateOf(fixedNow).AddDays(days)
	return &d
}

func TestEvaluate(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name     string
		ing      domain.Ingredient
		want     Status
		wantDays int
	}{
		{"out of stock ignores expiry", domain.Ingredient{InStock: false, ExpiryDate: dateIn(-10)}, StatusOut, 0},
		{"out of stock without expiry", domain.Ingredient{InStock: false}, StatusOut, 0},
		{"no expiry date", domain.Ingredient{InStock: true}, StatusNone, 0},
		{"invalid expiry date", domain.Ingredient{InStock: true, ExpiryDate: &domain.Date{}}, StatusNone, 0},
		{"yesterday", domain.Ingredient{InStock: true, ExpiryDate: dateIn(-1)}, StatusExpired, -1},
		{"today", domain.Ingredient{InStock: true, ExpiryDate: dateIn(0)}, StatusSoon, 0},
		{"tomorrow", domain.Ingredient{InStock: true, ExpiryDate: dateIn(1)}, StatusSoon, 1},
		{"window edge", domain.Ingredient{InStock: true, ExpiryDate: dateIn(3)}, StatusSoon, 3},
		{"beyond window", domain.Ingredient{InStock: true, ExpiryDate: dateIn(4)}, StatusOK, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(tt.ing)
			if got.Status != tt.want {
				t.Fatalf("status = %s, want %s", got.Status, tt.want)
			}
			if got.Status.Tracked() && got.DaysLeft != tt.wantDays {
				t.Fatalf("daysLeft = %d, want %d", got.DaysLeft, tt.wantDays)
			}
		})
	}
}

func TestEvaluateWarningWindow(t *testing.T) {
	e := newTestEvaluator(WithWarningDays(7))
	if got := e.Evaluate(domain.Ingredient{InStock: true, ExpiryDate: dateIn(6)}); got.Status != StatusSoon {
		t.Fatalf("expected soon within 7-day window, got %s", got.Status)
	}

	zero := newTestEvaluator(WithWarningDays(0))
	if got := zero.Evaluate(domain.Ingredient{InStock: true, ExpiryDate: dateIn(1)}); got.Status != StatusOK {
		t.Fatalf("expected ok with 0-day window, got %s", got.Status)
	}
}

func TestEvaluateCalendarDayGranularity(t *testing.T) {
	// 23:30 in UTC is already the next day in UTC+2: the expiry that was
	// "tomorrow" in UTC is "today" there.
	loc := time.FixedZone("UTC+2", 2*3600)
	e := newTestEvaluator(WithLocation(loc))

	tomorrowUTC := dateIn(1)
	got := e.Evaluate(domain.Ingredient{InStock: true, ExpiryDate: tomorrowUTC})
	if got.Status != StatusSoon || got.DaysLeft != 0 {
		t.Fatalf("expected soon/0 in UTC+2, got %s/%d", got.Status, got.DaysLeft)
	}
}

func TestEvaluateAllPinsToday(t *testing.T) {
	calls := 0
	e := New(WithLocation(time.UTC), WithClock(func() time.Time {
		calls++
		return fixedNow.Add(time.Duration(calls) * time.Hour)
	}))

	res := e.EvaluateAll(map[string]domain.Ingredient{
		"milk":  {InStock: true, ExpiryDate: dateIn(1)},
		"bread": {InStock: true, ExpiryDate: dateIn(1)},
		"salt":  {InStock: false},
	})
	if calls != 1 {
		t.Fatalf("expected clock to be read once, got %d", calls)
	}
	if res["milk"] != res["bread"] {
		t.Fatalf("same expiry evaluated differently: %+v vs %+v", res["milk"], res["bread"])
	}
	if res["salt"].Status != StatusOut {
		t.Fatalf("expected out, got %s", res["salt"].Status)
	}
}

func TestNilOptionsKeepDefaults(t *testing.T) {
	e := New(WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC), WithLocation(nil))
	if got, want := e.Today(), domain.DateOf(fixedNow); got != want {
		t.Fatalf("today = %s, want %s", got, want)
	}

	e = New(WithClock(nil), WithLocation(nil))
	if got := e.Today(); got == (domain.Date{}) {
		t.Fatal("today should fall back to the wall clock")
	}
}
