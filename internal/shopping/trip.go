package shopping

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/larder/internal/domain"
)

// Phase is the lifecycle position of a shopping trip.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseCompleted
	PhaseCancelled
)

// String returns a human-readable phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// newSessionID returns a time-ordered id for a finished trip.
var newSessionID = func() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Trip is an in-progress shopping selection. It is a value: every
// transition returns a new Trip and leaves the receiver untouched.
// Transitions that do not apply to the current phase are no-ops.
type Trip struct {
	phase    Phase
	selected []string
}

// NewTrip returns an idle trip.
func NewTrip() Trip {
	return Trip{phase: PhaseIdle}
}

// Phase returns the current phase: idle or active.
func (t Trip) Phase() Phase {
	return t.phase
}

// Active reports whether items can be toggled.
func (t Trip) Active() bool {
	return t.phase == PhaseActive
}

// Start moves an idle trip to active. A previously persisted selection can
// be passed in to resume it; duplicates are collapsed.
func (t Trip) Start(resume []string) Trip {
	if t.phase == PhaseActive {
		return t
	}
	next := Trip{phase: PhaseActive, selected: []string{}}
	for _, name := range resume {
		if !slices.Contains(next.selected, name) {
			next.selected = append(next.selected, name)
		}
	}
	return next
}

// Toggle flips name in or out of the selection. Only items on the
// shopping list can be picked: names that are not in the pantry (deleted
// mid-trip) or already in stock are ignored. A selected name can always
// be put back.
func (t Trip) Toggle(s domain.State, name string) Trip {
	if t.phase != PhaseActive {
		return t
	}
	if i := slices.Index(t.selected, name); i >= 0 {
		return Trip{phase: PhaseActive, selected: slices.Delete(slices.Clone(t.selected), i, i+1)}
	}
	if ing, ok := s.Ingredients[name]; !ok || ing.InStock {
		return t
	}
	return Trip{phase: PhaseActive, selected: append(slices.Clone(t.selected), name)}
}

// Selected returns a copy of the selection in pick order.
func (t Trip) Selected() []string {
	return slices.Clone(t.selected)
}

// IsSelected reports whether name is in the selection.
func (t Trip) IsSelected(name string) bool {
	return slices.Contains(t.selected, name)
}

// picked returns the selected names that are still missing from the
// pantry. A resumed selection may name items restocked in the meantime.
func (t Trip) picked(s domain.State) []string {
	var out []string
	for _, name := range t.selected {
		if ing, ok := s.Ingredients[name]; ok && !ing.InStock {
			out = append(out, name)
		}
	}
	return out
}

// Subtotal sums the prices of the selected ingredients.
func (t Trip) Subtotal(s domain.State) decimal.Decimal {
	total := decimal.Zero
	for _, name := range t.picked(s) {
		total = total.Add(s.Ingredients[name].Price)
	}
	return total
}

// Progress is the share of missing items already selected, in [0, 1].
// It is 0 when nothing is missing.
func (t Trip) Progress(s domain.State) float64 {
	missing := MissingItems(s)
	if len(missing) == 0 {
		return 0
	}
	done := 0
	for _, name := range missing {
		if t.IsSelected(name) {
			done++
		}
	}
	return float64(done) / float64(len(missing))
}

// Receipt is the outcome of finishing a trip.
type Receipt struct {
	// Outcome is PhaseCompleted when a session was recorded and PhaseIdle
	// when the trip was empty or not active.
	Outcome Phase
	State   domain.State
	Session *domain.ShoppingSession
}

// Finish closes the trip. An empty selection records nothing. Otherwise
// every selected ingredient is marked in stock (and, if its consumption
// is tracked, refilled), a session totalling their prices to the cent is
// prepended to the history, and the trip returns to idle.
func (t Trip) Finish(s domain.State, now time.Time) (Trip, Receipt) {
	if t.phase != PhaseActive {
		return t, Receipt{Outcome: PhaseIdle, State: s}
	}
	picked := t.picked(s)
	if len(picked) == 0 {
		return NewTrip(), Receipt{Outcome: PhaseIdle, State: s}
	}

	next := s.Clone()
	total := decimal.Zero
	for _, name := range picked {
		ing := next.Ingredients[name]
		total = total.Add(ing.Price)
		ing.InStock = true
		if ing.RemainingParts != nil {
			full := ing.Parts
			ing.RemainingParts = &full
		}
		next.Ingredients[name] = ing
	}

	session := domain.ShoppingSession{
		ID:        newSessionID(),
		Timestamp: now,
		Items:     picked,
		Total:     total.Round(2),
	}
	next.ShoppingHistory = append([]domain.ShoppingSession{session}, next.ShoppingHistory...)

	return NewTrip(), Receipt{Outcome: PhaseCompleted, State: next, Session: &session}
}

// Cancel drops the selection and returns to idle. Stock and history are
// untouched.
func (t Trip) Cancel() (Trip, Phase) {
	if t.phase != PhaseActive {
		return t, PhaseIdle
	}
	return NewTrip(), PhaseCancelled
}
