// Package expiry computes how fresh a stocked ingredient is.
package expiry

import (
	"time"

	"github.com/hammamikhairi/larder/internal/domain"
)

// DefaultWarningDays is the inclusive window in which an item counts as
// expiring soon.
const DefaultWarningDays = 3

// Status is the freshness of an ingredient.
type Status int

// Statuses in priority order: the first that applies wins.
const (
	StatusOut Status = iota
	StatusNone
	StatusExpired
	StatusSoon
	StatusOK
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusOut:
		return "out"
	case StatusNone:
		return "none"
	case StatusExpired:
		return "expired"
	case StatusSoon:
		return "soon"
	case StatusOK:
		return "ok"
	default:
		return "unknown"
	}
}

// Tracked reports whether the status came from an expiry date.
func (s Status) Tracked() bool {
	return s == StatusExpired || s == StatusSoon || s == StatusOK
}

// Result is the outcome of evaluating one ingredient. DaysLeft is only
// meaningful when Status.Tracked() is true.
type Result struct {
	Status   Status
	DaysLeft int
}

// Option configures the evaluator.
type Option func(*Evaluator)

// WithWarningDays sets the "soon" window. Negative values are ignored.
func WithWarningDays(n int) Option {
	return func(e *Evaluator) {
		if n >= 0 {
			e.warningDays = n
		}
	}
}

// WithClock replaces time.Now. Nil is ignored.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone "today" is computed in. Nil is ignored.
func WithLocation(loc *time.Location) Option {
	return func(e *Evaluator) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Evaluator turns stock flags and expiry dates into a Status. It holds no
// state besides its configuration and is safe for concurrent use.
type Evaluator struct {
	warningDays int
	now         func() time.Time
	loc         *time.Location
}

// New creates an evaluator with the default 3-day window.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		warningDays: DefaultWarningDays,
		now:         time.Now,
		loc:         time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WarningDays returns the configured window.
func (e *Evaluator) WarningDays() int {
	return e.warningDays
}

// Today returns the current calendar day in the evaluator's location.
func (e *Evaluator) Today() domain.Date {
	return domain.DateOf(e.now().In(e.loc))
}

// Evaluate computes the freshness of a single ingredient. It never fails:
// an invalid expiry date is treated as no date at all.
func (e *Evaluator) Evaluate(ing domain.Ingredient) Result {
	if !ing.InStock {
		return Result{Status: StatusOut}
	}
	if ing.ExpiryDate == nil || !ing.ExpiryDate.Valid() {
		return Result{Status: StatusNone}
	}

	today := e.Today()
	days := today.DaysUntil(*ing.ExpiryDate)
	if today.Before(*ing.ExpiryDate) && days < 1 {
		days = 1
	}

	switch {
	case days < 0:
		return Result{Status: StatusExpired, DaysLeft: days}
	case days <= e.warningDays:
		return Result{Status: StatusSoon, DaysLeft: days}
	default:
		return Result{Status: StatusOK, DaysLeft: days}
	}
}

// EvaluateAll evaluates every ingredient of a map against the same "today".
func (e *Evaluator) EvaluateAll(ingredients map[string]domain.Ingredient) map[string]Result {
	pinned := *e
	at := e.now()
	pinned.now = func() time.Time { return at }

	out := make(map[string]Result, len(ingredients))
	for name, ing := range ingredients {
		out[name] = pinned.Evaluate(ing)
	}
	return out
}
