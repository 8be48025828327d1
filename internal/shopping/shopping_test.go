package shopping

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/larder/internal/domain"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testState() domain.State {
	s := domain.NewState()
	s.Ingredients = map[string]domain.Ingredient{
		"milk":   {InStock: false, Price: price("1.19"), Parts: 1},
		"peas":   {InStock: false, Price: price("2.35"), Parts: 1},
		"rice":   {InStock: true, Price: price("3.00"), Parts: 4},
		"apples": {InStock: false, Price: price("0.333"), Parts: 1},
		"yogurt": {InStock: false, Price: price("2.50"), Parts: 4, RemainingParts: intPtr(0)},
		"salt":   {InStock: false, Price: price("0.80"), Parts: 1},
	}
	s.Categories = []domain.Category{
		{Name: "Dairy", Items: []string{"milk", "yogurt"}},
		{Name: "Frozen", Items: []string{"peas"}},
		{Name: "Pantry", Items: []string{"rice", "ghost"}},
		{Name: "Produce", Items: []string{"apples"}},
	}
	return s
}

func intPtr(n int) *int { return &n }

func TestMissingItems(t *testing.T) {
	got := MissingItems(testState())
	want := []string{"milk", "yogurt", "peas", "apples", "salt"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByCategory(t *testing.T) {
	got := GroupByCategory(testState(), []string{"frozen", "Dairy"})
	want := []Group{
		{Category: "Produce", Items: []string{"apples"}},
		{Category: "", Items: []string{"salt"}},
		{Category: "Dairy", Items: []string{"milk", "yogurt"}, ColdChain: true},
		{Category: "Frozen", Items: []string{"peas"}, ColdChain: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupByCategoryNoColdChain(t *testing.T) {
	got := GroupByCategory(testState(), nil)
	var order []string
	for _, g := range got {
		order = append(order, g.Category)
	}
	if diff := cmp.Diff([]string{"Dairy", "Frozen", "Produce", ""}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTripLifecycle(t *testing.T) {
	s := testState()
	trip := NewTrip()

	if trip.Toggle(s, "milk").IsSelected("milk") {
		t.Fatal("toggle must be a no-op while idle")
	}

	trip = trip.Start(nil)
	if trip.Phase() != PhaseActive {
		t.Fatalf("expected active, got %s", trip.Phase())
	}

	before := trip
	trip = trip.Toggle(s, "milk").Toggle(s, "apples").Toggle(s, "peas").Toggle(s, "peas")
	if before.IsSelected("milk") {
		t.Fatal("toggle mutated the previous trip value")
	}
	if diff := cmp.Diff([]string{"milk", "apples"}, trip.Selected()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}

	trip = trip.Toggle(s, "deleted-meanwhile")
	if len(trip.Selected()) != 2 {
		t.Fatal("unknown ingredient must be ignored")
	}

	if got := trip.Subtotal(s); !got.Equal(price("1.523")) {
		t.Fatalf("subtotal = %s", got)
	}
	if got := trip.Progress(s); got != 2.0/5.0 {
		t.Fatalf("progress = %v", got)
	}
}

func TestProgressNothingMissing(t *testing.T) {
	s := domain.NewState()
	s.Ingredients["rice"] = domain.Ingredient{InStock: true, Parts: 1}
	if got := NewTrip().Start(nil).Progress(s); got != 0 {
		t.Fatalf("expected 0 progress, got %v", got)
	}
}

func TestFinishEmptySelection(t *testing.T) {
	s := testState()
	trip, receipt := NewTrip().Start(nil).Finish(s, time.Now())

	if trip.Phase() != PhaseIdle {
		t.Fatalf("expected idle, got %s", trip.Phase())
	}
	if receipt.Outcome != PhaseIdle || receipt.Session != nil {
		t.Fatalf("empty trip must not record a session: %+v", receipt)
	}
	if len(receipt.State.ShoppingHistory) != 0 {
		t.Fatal("history changed")
	}
}

func TestFinishRecordsSession(t *testing.T) {
	s := testState()
	s.ShoppingHistory = []domain.ShoppingSession{{ID: "older", Items: []string{"rice"}, Total: price("3")}}
	at := time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC)

	trip := NewTrip().Start(nil).Toggle(s, "milk").Toggle(s, "apples").Toggle(s, "yogurt")
	trip, receipt := trip.Finish(s, at)

	if trip.Phase() != PhaseIdle || receipt.Outcome != PhaseCompleted {
		t.Fatalf("unexpected phases: trip=%s outcome=%s", trip.Phase(), receipt.Outcome)
	}
	next := receipt.State
	if len(next.ShoppingHistory) != 2 || next.ShoppingHistory[1].ID != "older" {
		t.Fatalf("session was not prepended: %+v", next.ShoppingHistory)
	}

	got := next.ShoppingHistory[0]
	if got.ID == "" || !got.Timestamp.Equal(at) {
		t.Fatalf("bad session header: %+v", got)
	}
	if !got.Total.Equal(price("4.02")) {
		t.Fatalf("total = %s, want 4.02", got.Total)
	}
	if diff := cmp.Diff([]string{"milk", "apples", "yogurt"}, got.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	for _, name := range got.Items {
		if !next.Ingredients[name].InStock {
			t.Fatalf("%s should be in stock", name)
		}
	}
	if *next.Ingredients["yogurt"].RemainingParts != 4 {
		t.Fatal("tracked consumption should be refilled")
	}

	// The input state is untouched.
	if s.Ingredients["milk"].InStock || len(s.ShoppingHistory) != 1 {
		t.Fatal("finish mutated its input")
	}
}

func TestFinishSkipsDeletedIngredients(t *testing.T) {
	s := testState()
	trip := NewTrip().Start([]string{"milk", "milk", "gone"})
	if diff := cmp.Diff([]string{"milk", "gone"}, trip.Selected()); diff != "" {
		t.Fatalf("resume mismatch (-want +got):\n%s", diff)
	}

	_, receipt := trip.Finish(s, time.Now())
	if diff := cmp.Diff([]string{"milk"}, receipt.Session.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestCancel(t *testing.T) {
	s := testState()
	trip := NewTrip().Start(nil).Toggle(s, "milk")

	trip, outcome := trip.Cancel()
	if outcome != PhaseCancelled || trip.Phase() != PhaseIdle {
		t.Fatalf("unexpected cancel result: %s/%s", outcome, trip.Phase())
	}
	if len(trip.Selected()) != 0 {
		t.Fatal("selection survived cancel")
	}

	_, outcome = NewTrip().Cancel()
	if outcome != PhaseIdle {
		t.Fatalf("cancelling an idle trip should be a no-op, got %s", outcome)
	}
}

func TestTripIgnoresStockedItems(t *testing.T) {
	s := domain.NewState()
	s.Ingredients = map[string]domain.Ingredient{
		"Milk": {InStock: false, Price: price("2"), Parts: 1},
		"Rice": {InStock: true, Price: price("5"), Parts: 1},
	}

	trip := NewTrip().Start(nil).Toggle(s, "Milk").Toggle(s, "Rice")
	if diff := cmp.Diff([]string{"Milk"}, trip.Selected()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
	if got := trip.Subtotal(s); !got.Equal(price("2")) {
		t.Fatalf("subtotal = %s, want 2", got)
	}
	if got := trip.Progress(s); got != 1 {
		t.Fatalf("progress = %v, want 1", got)
	}

	_, receipt := trip.Finish(s, time.Now())
	if diff := cmp.Diff([]string{"Milk"}, receipt.Session.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if !receipt.Session.Total.Equal(price("2")) {
		t.Fatalf("total = %s, want 2", receipt.Session.Total)
	}
}

func TestResumedSelectionSkipsRestockedItems(t *testing.T) {
	s := domain.NewState()
	s.Ingredients = map[string]domain.Ingredient{
		"Milk": {InStock: false, Price: price("2"), Parts: 1},
		"Rice": {InStock: true, Price: price("5"), Parts: 1},
	}

	trip := NewTrip().Start([]string{"Milk", "Rice"})
	if got := trip.Subtotal(s); !got.Equal(price("2")) {
		t.Fatalf("subtotal = %s, want 2", got)
	}
	_, receipt := trip.Finish(s, time.Now())
	if diff := cmp.Diff([]string{"Milk"}, receipt.Session.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	// A stale pick can still be put back.
	trip = trip.Toggle(s, "Rice")
	if diff := cmp.Diff([]string{"Milk"}, trip.Selected()); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}
