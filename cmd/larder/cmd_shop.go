package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/larder/internal/display"
	"github.com/hammamikhairi/larder/internal/domain"
)

func newShopCmd(l *larder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shop",
		Short: "Shopping list and trips",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the shopping list, with the trip selection if one is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := l.svc.Trip(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.ShoppingList(v.State, v.Groups, v.Trip))
			return nil
		},
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Start a shopping trip, or resume the active one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := l.svc.StartTrip(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.ShoppingList(v.State, v.Groups, v.Trip))
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle ITEM...",
		Short: "Tick items off, or untick them, in the active trip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				v, err := l.svc.ToggleItem(cmd.Context(), name)
				if err != nil {
					return tripHint(err)
				}
				if err := known(v.State, name); err != nil {
					return err
				}
				switch {
				case v.Trip.IsSelected(name):
					done(cmd, "picked %s", name)
				case v.State.Ingredients[name].InStock:
					printf(cmd, "%s is already in stock\n", name)
				default:
					printf(cmd, "put back %s\n", name)
				}
			}
			return nil
		},
	}

	finish := &cobra.Command{
		Use:   "finish",
		Short: "Finish the trip: restock the picked items and record the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := l.svc.FinishTrip(cmd.Context())
			if err != nil {
				return tripHint(err)
			}
			printf(cmd, "%s\n", display.Receipt(r))
			return nil
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel",
		Short: "Drop the active trip without restocking anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := l.svc.CancelTrip(cmd.Context()); err != nil {
				return tripHint(err)
			}
			done(cmd, "trip cancelled")
			return nil
		},
	}

	interactive := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"go"},
		Short:   "Walk the shopping list as an interactive checklist",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := l.svc.StartTrip(cmd.Context())
			if err != nil {
				return err
			}
			m, err := display.RunTrip(cmd.Context(), l.svc, v)
			if err != nil {
				return err
			}
			switch m.Outcome() {
			case display.TripFinished:
				printf(cmd, "%s\n", display.Receipt(m.Receipt()))
			case display.TripCancelled:
				done(cmd, "trip cancelled")
			default:
				printf(cmd, "trip saved, resume with `larder shop interactive`\n")
			}
			return nil
		},
	}

	var clearAll bool
	history := &cobra.Command{
		Use:   "history",
		Short: "Past shopping trips, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				if _, err := l.svc.ClearHistory(cmd.Context()); err != nil {
					return err
				}
				done(cmd, "history cleared")
				return nil
			}
			sessions, err := l.svc.History(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.History(sessions))
			return nil
		},
	}
	history.Flags().BoolVar(&clearAll, "clear", false, "forget every recorded trip")

	cmd.AddCommand(list, start, toggle, finish, cancel, interactive, history)
	return cmd
}

// tripHint turns the inactive-trip error into something actionable.
func tripHint(err error) error {
	if errors.Is(err, domain.ErrTripNotActive) {
		return fmt.Errorf("%w, run `larder shop start` first", err)
	}
	return err
}
