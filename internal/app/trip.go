package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/shopping"
)

// TripView is an active trip together with the pantry it runs against.
type TripView struct {
	Trip   shopping.Trip
	State  domain.State
	Groups []shopping.Group
}

// loadTrip restores the persisted selection. No key means no trip.
func (s *Service) loadTrip(ctx context.Context) (shopping.Trip, error) {
	raw, err := s.store.Get(ctx, ActiveTripKey)
	if errors.Is(err, domain.ErrNotFound) {
		return shopping.NewTrip(), nil
	}
	if err != nil {
		return shopping.Trip{}, fmt.Errorf("loading trip: %w", err)
	}
	var selected []string
	if err := json.Unmarshal([]byte(raw), &selected); err != nil {
		s.log.Warn("discarding unreadable trip selection: %v", err)
		return shopping.NewTrip().Start(nil), nil
	}
	return shopping.NewTrip().Start(selected), nil
}

func (s *Service) saveTrip(ctx context.Context, t shopping.Trip) error {
	data, err := json.Marshal(t.Selected())
	if err != nil {
		return fmt.Errorf("saving trip: %w", err)
	}
	if err := s.store.Set(ctx, ActiveTripKey, string(data)); err != nil {
		return fmt.Errorf("saving trip: %w", err)
	}
	return nil
}

func (s *Service) clearTrip(ctx context.Context) error {
	if err := s.store.Delete(ctx, ActiveTripKey); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("clearing trip: %w", err)
	}
	return nil
}

func (s *Service) view(st domain.State, t shopping.Trip) TripView {
	return TripView{Trip: t, State: st, Groups: shopping.GroupByCategory(st, s.coldChain)}
}

// Trip returns the current trip. It is idle when none was started.
func (s *Service) Trip(ctx context.Context) (TripView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return TripView{}, err
	}
	t, err := s.loadTrip(ctx)
	if err != nil {
		return TripView{}, err
	}
	return s.view(st, t), nil
}

// StartTrip begins a trip, or resumes the one already in progress.
func (s *Service) StartTrip(ctx context.Context) (TripView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return TripView{}, err
	}
	t, err := s.loadTrip(ctx)
	if err != nil {
		return TripView{}, err
	}
	if !t.Active() {
		t = t.Start(nil)
		if err := s.saveTrip(ctx, t); err != nil {
			return TripView{}, err
		}
		s.log.Info("shopping trip started, %d items missing", len(shopping.MissingItems(st)))
	}
	return s.view(st, t), nil
}

// ToggleItem flips an item in the active trip's selection.
func (s *Service) ToggleItem(ctx context.Context, name string) (TripView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return TripView{}, err
	}
	t, err := s.loadTrip(ctx)
	if err != nil {
		return TripView{}, err
	}
	if !t.Active() {
		return TripView{}, domain.ErrTripNotActive
	}
	t = t.Toggle(st, name)
	if err := s.saveTrip(ctx, t); err != nil {
		return TripView{}, err
	}
	return s.view(st, t), nil
}

// FinishTrip closes the active trip. A non-empty selection restocks the
// picked items and records a session; either way the trip is cleared.
// Once the session is saved, a failure to clear the trip is only logged:
// the stale selection names restocked items, so finishing it again
// records nothing.
func (s *Service) FinishTrip(ctx context.Context) (shopping.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load(ctx)
	if err != nil {
		return shopping.Receipt{}, err
	}
	t, err := s.loadTrip(ctx)
	if err != nil {
		return shopping.Receipt{}, err
	}
	if !t.Active() {
		return shopping.Receipt{}, domain.ErrTripNotActive
	}

	_, receipt := t.Finish(st, s.now())
	if receipt.Outcome != shopping.PhaseCompleted {
		return receipt, s.clearTrip(ctx)
	}

	if err := s.Save(ctx, receipt.State); err != nil {
		return shopping.Receipt{}, err
	}
	s.log.Info("shopping trip %s recorded: %d items, total %s",
		receipt.Session.ID, len(receipt.Session.Items), receipt.Session.Total.StringFixed(2))
	if err := s.clearTrip(ctx); err != nil {
		s.log.Warn("trip %s recorded but still marked active: %v", receipt.Session.ID, err)
	}
	return receipt, nil
}

// CancelTrip drops the active trip without touching the pantry.
func (s *Service) CancelTrip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.loadTrip(ctx)
	if err != nil {
		return err
	}
	if !t.Active() {
		return domain.ErrTripNotActive
	}
	if _, phase := t.Cancel(); phase == shopping.PhaseCancelled {
		s.log.Info("shopping trip cancelled")
	}
	return s.clearTrip(ctx)
}
