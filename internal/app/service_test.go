package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/logger"
	"github.com/hammamikhairi/larder/internal/shopping"
	"github.com/hammamikhairi/larder/internal/storage"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *storage.MemoryStore, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	svc := New(store, log,
		WithClock(func() time.Time { return fixedNow }),
		WithColdChain([]string{"Dairy"}),
	)
	return svc, store, context.Background()
}

func seed(t *testing.T, svc *Service, ctx context.Context) {
	t.Helper()
	steps := []func() error{
		func() error { _, err := svc.AddCategory(ctx, "Dairy"); return err },
		func() error { _, err := svc.AddCategory(ctx, "Produce"); return err },
		func() error {
			exp := domain.Date{Year: 2026, Month: time.May, Day: 11}
			_, err := svc.AddIngredient(ctx, "Milk", "Dairy", domain.Ingredient{InStock: true, Price: decimal.RequireFromString("1.20"), Parts: 1, ExpiryDate: &exp})
			return err
		},
		func() error {
			_, err := svc.AddIngredient(ctx, "Spinach", "Produce", domain.Ingredient{InStock: false, Price: decimal.RequireFromString("2.05"), Parts: 2})
			return err
		},
		func() error {
			_, err := svc.AddIngredient(ctx, "Flour", "", domain.Ingredient{InStock: true, Price: decimal.RequireFromString("0.95"), Parts: 4})
			return err
		},
		func() error {
			_, err := svc.AddRecipe(ctx, domain.Recipe{Name: "Crepes", Category: "Dessert", Ingredients: []string{"Flour", "Milk"}})
			return err
		},
		func() error {
			_, err := svc.AddRecipe(ctx, domain.Recipe{Name: "Quiche", Category: "Dinner", Ingredients: []string{"Flour", "Spinach", "Milk"}})
			return err
		},
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("seed step %d: %v", i, err)
		}
	}
}

func TestLoadEmptyStore(t *testing.T) {
	svc, _, ctx := setupService(t)
	st, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(domain.NewState(), st); diff != "" {
		t.Fatalf("expected empty state (-want +got):\n%s", diff)
	}
}

func TestEditsPersist(t *testing.T) {
	svc, store, ctx := setupService(t)
	seed(t, svc, ctx)

	raw, err := store.Get(ctx, StateKey)
	if err != nil {
		t.Fatalf("state not persisted: %v", err)
	}
	if !strings.Contains(raw, `"version": "1.3.0"`) {
		t.Errorf("persisted document is not current-version:\n%s", raw)
	}

	st, err := svc.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(st.Ingredients) != 3 || len(st.Recipes) != 2 {
		t.Fatalf("unexpected state: %d ingredients, %d recipes", len(st.Ingredients), len(st.Recipes))
	}
	if diff := cmp.Diff([]string{"Dessert", "Dinner"}, st.RecipeCategories); diff != "" {
		t.Errorf("recipe categories (-want +got):\n%s", diff)
	}
}

func TestEditErrors(t *testing.T) {
	svc, _, ctx := setupService(t)
	seed(t, svc, ctx)

	if _, err := svc.AddIngredient(ctx, "Milk", "", domain.Ingredient{}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := svc.AddRecipe(ctx, domain.Recipe{Name: "Cake", Ingredients: []string{"Sugar"}}); !errors.Is(err, domain.ErrUnknownIngredient) {
		t.Errorf("expected ErrUnknownIngredient, got %v", err)
	}
	if _, err := svc.RemoveIngredient(ctx, "Sugar"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.RemoveRecipe(ctx, "Cake"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestQueries(t *testing.T) {
	svc, _, ctx := setupService(t)
	seed(t, svc, ctx)

	ov, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.Feasible) != 1 || ov.Feasible[0].Name != "Crepes" {
		t.Errorf("feasible = %v, want [Crepes]", ov.Feasible)
	}
	if got := ov.Expiry["Milk"]; got.DaysLeft != 1 {
		t.Errorf("milk days left = %d, want 1", got.DaysLeft)
	}
	if diff := cmp.Diff([]string{"Spinach"}, ov.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}

	prio, err := svc.Prioritized(ctx)
	if err != nil {
		t.Fatalf("prioritized: %v", err)
	}
	if len(prio) != 1 || prio[0].Score != 20 {
		t.Errorf("prioritized = %+v, want Crepes scoring 20", prio)
	}

	missing, err := svc.MissingFor(ctx, "Quiche")
	if err != nil {
		t.Fatalf("missing for: %v", err)
	}
	if diff := cmp.Diff([]string{"Spinach"}, missing); diff != "" {
		t.Errorf("missing for quiche (-want +got):\n%s", diff)
	}
	if _, err := svc.MissingFor(ctx, "Soup"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveCategoryReportsImpact(t *testing.T) {
	svc, _, ctx := setupService(t)
	seed(t, svc, ctx)

	preview, err := svc.CategoryImpact(ctx, "Dairy")
	if err != nil {
		t.Fatalf("impact: %v", err)
	}
	imp, err := svc.RemoveCategory(ctx, "Dairy")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if diff := cmp.Diff(preview, imp); diff != "" {
		t.Errorf("preview differs from applied impact (-preview +applied):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Crepes", "Quiche"}, imp.Trimmed); diff != "" {
		t.Errorf("trimmed (-want +got):\n%s", diff)
	}
}

func TestTripLifecycle(t *testing.T) {
	svc, store, ctx := setupService(t)
	seed(t, svc, ctx)

	if _, err := svc.ToggleItem(ctx, "Spinach"); !errors.Is(err, domain.ErrTripNotActive) {
		t.Fatalf("expected ErrTripNotActive, got %v", err)
	}

	view, err := svc.StartTrip(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !view.Trip.Active() {
		t.Fatal("trip should be active")
	}

	if _, err := svc.ToggleItem(ctx, "Spinach"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	raw, err := store.Get(ctx, ActiveTripKey)
	if err != nil || raw != `["Spinach"]` {
		t.Fatalf("selection not persisted: %q, %v", raw, err)
	}

	// A restart resumes the persisted selection.
	resumed, err := svc.StartTrip(ctx)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed.Trip.IsSelected("Spinach") {
		t.Fatal("resumed trip lost its selection")
	}

	receipt, err := svc.FinishTrip(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if receipt.Outcome != shopping.PhaseCompleted {
		t.Fatalf("outcome = %v, want completed", receipt.Outcome)
	}
	if !receipt.Session.Total.Equal(decimal.RequireFromString("2.05")) {
		t.Errorf("total = %s, want 2.05", receipt.Session.Total)
	}
	if _, err := store.Get(ctx, ActiveTripKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("trip key should be removed, got %v", err)
	}

	hist, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 || !hist[0].Timestamp.Equal(fixedNow) {
		t.Fatalf("history = %+v", hist)
	}
	st, _ := svc.Load(ctx)
	if !st.Ingredients["Spinach"].InStock {
		t.Error("spinach should be restocked")
	}
}

func TestFinishEmptyTripRecordsNothing(t *testing.T) {
	svc, store, ctx := setupService(t)
	seed(t, svc, ctx)

	if _, err := svc.StartTrip(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	receipt, err := svc.FinishTrip(ctx)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if receipt.Outcome != shopping.PhaseIdle || receipt.Session != nil {
		t.Fatalf("expected idle outcome without session, got %+v", receipt)
	}
	if _, err := store.Get(ctx, ActiveTripKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("trip key should be removed, got %v", err)
	}
	if hist, _ := svc.History(ctx); len(hist) != 0 {
		t.Errorf("history should stay empty, got %d", len(hist))
	}
}

func TestCancelTrip(t *testing.T) {
	svc, store, ctx := setupService(t)
	seed(t, svc, ctx)

	if err := svc.CancelTrip(ctx); !errors.Is(err, domain.ErrTripNotActive) {
		t.Fatalf("expected ErrTripNotActive, got %v", err)
	}
	if _, err := svc.StartTrip(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.ToggleItem(ctx, "Spinach"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := svc.CancelTrip(ctx); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := store.Get(ctx, ActiveTripKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("trip key should be removed, got %v", err)
	}
	st, _ := svc.Load(ctx)
	if st.Ingredients["Spinach"].InStock {
		t.Error("cancel must not restock")
	}
}

func TestImportExport(t *testing.T) {
	svc, _, ctx := setupService(t)
	seed(t, svc, ctx)

	data, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want, _ := svc.Load(ctx)

	other, _, _ := setupService(t)
	res, err := other.Import(ctx, data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	got, err := other.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("import mismatch (-want +got):\n%s", diff)
	}
}

func TestImportRejectsBrokenDocument(t *testing.T) {
	svc, store, ctx := setupService(t)
	seed(t, svc, ctx)
	before, _ := store.Get(ctx, StateKey)

	res, err := svc.Import(ctx, []byte(`{"ingredients": [], "categories": {}, "recettes": [], "shoppingHistory": []}`))
	if !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
	if len(res.Errors) == 0 {
		t.Error("expected itemized errors")
	}
	if after, _ := store.Get(ctx, StateKey); after != before {
		t.Error("stored state changed after a rejected import")
	}
}

func TestLoadCorruptState(t *testing.T) {
	svc, store, ctx := setupService(t)
	if err := store.Set(ctx, StateKey, "not json"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Load(ctx); !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got %v", err)
	}
}

// stuckTripStore refuses to delete the active trip.
type stuckTripStore struct {
	*storage.MemoryStore
}

func (s stuckTripStore) Delete(ctx context.Context, key string) error {
	if key == ActiveTripKey {
		return errors.New("connection reset")
	}
	return s.MemoryStore.Delete(ctx, key)
}

func TestFinishTripRecordsOnceWhenClearFails(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := stuckTripStore{storage.NewMemoryStore(log)}
	svc := New(store, log, WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()
	seed(t, svc, ctx)

	if _, err := svc.StartTrip(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.ToggleItem(ctx, "Spinach"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	receipt, err := svc.FinishTrip(ctx)
	if err != nil {
		t.Fatalf("finish should succeed once the session is saved: %v", err)
	}
	if receipt.Outcome != shopping.PhaseCompleted {
		t.Fatalf("outcome = %v, want completed", receipt.Outcome)
	}

	// The trip is still active, but finishing it again records nothing.
	receipt, err = svc.FinishTrip(ctx)
	if err == nil {
		t.Fatal("second finish should report the stuck trip key")
	}
	if receipt.Outcome != shopping.PhaseIdle || receipt.Session != nil {
		t.Fatalf("second finish must not record a session: %+v", receipt)
	}
	if hist, _ := svc.History(ctx); len(hist) != 1 {
		t.Fatalf("history = %d sessions, want 1", len(hist))
	}
}
