package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/larder/internal/display"
	"github.com/hammamikhairi/larder/internal/domain"
)

func newStatusCmd(l *larder) *cobra.Command {
	var banner bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show stock, expiry and what to cook or buy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return l.runStatus(cmd, banner)
		},
	}
	cmd.Flags().BoolVar(&banner, "banner", false, "print the banner first")
	return cmd
}

func (l *larder) runStatus(cmd *cobra.Command, banner bool) error {
	ov, err := l.svc.Overview(cmd.Context())
	if err != nil {
		return err
	}
	if banner {
		printf(cmd, "%s\n", display.RenderBanner())
	}
	printf(cmd, "%s\n", display.Status(ov))
	return nil
}

// parseExpiry accepts YYYY-MM-DD, or "none" to clear the date.
func parseExpiry(s string) (*domain.Date, error) {
	if s == "" || s == "none" {
		return nil, nil
	}
	d, ok := domain.ParseDate(s)
	if !ok {
		return nil, fmt.Errorf("%w: expiry date %q is not YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return &d, nil
}

// known reports an edit that targeted an ingredient the pantry does not
// have. Such edits leave the state as it was.
func known(st domain.State, name string) error {
	if _, ok := st.Ingredients[name]; !ok {
		return fmt.Errorf("ingredient %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func newIngredientCmd(l *larder) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingredient",
		Aliases: []string{"ing"},
		Short:   "Add, remove and update pantry ingredients",
	}

	var (
		category  string
		price     string
		parts     int
		expiry    string
		missing   bool
		remaining int
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an ingredient",
		Example: `  larder ingredient add Milk --category Dairy --price 1.20 --expiry 2026-05-12
  larder ingredient add Eggs --parts 6 --remaining 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("%w: price %q: %v", domain.ErrInvalidInput, price, err)
			}
			date, err := parseExpiry(expiry)
			if err != nil {
				return err
			}
			ing := domain.Ingredient{InStock: !missing, Price: p, Parts: parts, ExpiryDate: date}
			if cmd.Flags().Changed("remaining") {
				ing.RemainingParts = &remaining
			}
			if _, err := l.svc.AddIngredient(cmd.Context(), args[0], category, ing); err != nil {
				return err
			}
			done(cmd, "added %s", args[0])
			return nil
		},
	}
	add.Flags().StringVar(&category, "category", "", "category to file it under (must exist)")
	add.Flags().StringVar(&price, "price", "0", "price of one purchase")
	add.Flags().IntVar(&parts, "parts", 1, "portions one purchase yields")
	add.Flags().StringVar(&expiry, "expiry", "", "best-before date, YYYY-MM-DD")
	add.Flags().BoolVar(&missing, "missing", false, "add it as out of stock")
	add.Flags().IntVar(&remaining, "remaining", 0, "portions left, enables consumption tracking")

	var yes bool
	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove an ingredient and the recipes that would be left empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, err := l.svc.IngredientImpact(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			// Only ask when recipes are affected.
			imp.Ingredients = nil
			if !confirm(cmd, args[0], imp, yes) {
				return nil
			}
			if _, err := l.svc.RemoveIngredient(cmd.Context(), args[0]); err != nil {
				return err
			}
			done(cmd, "removed %s", args[0])
			return nil
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask before cascading deletes")

	toggle := &cobra.Command{
		Use:   "toggle NAME",
		Short: "Flip an ingredient between in stock and out of stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := l.svc.ToggleStock(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := known(st, args[0]); err != nil {
				return err
			}
			state := "out of stock"
			if st.Ingredients[args[0]].InStock {
				state = "in stock"
			}
			done(cmd, "%s is %s", args[0], state)
			return nil
		},
	}

	setExpiry := &cobra.Command{
		Use:   "expiry NAME DATE|none",
		Short: "Set or clear an ingredient's best-before date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseExpiry(args[1])
			if err != nil {
				return err
			}
			st, err := l.svc.SetExpiry(cmd.Context(), args[0], date)
			if err != nil {
				return err
			}
			if err := known(st, args[0]); err != nil {
				return err
			}
			if date == nil {
				done(cmd, "%s no longer tracks expiry", args[0])
			} else {
				done(cmd, "%s expires %s", args[0], date)
			}
			return nil
		},
	}

	consume := &cobra.Command{
		Use:   "consume NAME [PARTS]",
		Short: "Use up portions of an ingredient",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 2 {
				v, err := strconv.Atoi(args[1])
				if err != nil || v < 1 {
					return fmt.Errorf("%w: parts must be a positive number", domain.ErrInvalidInput)
				}
				n = v
			}
			st, err := l.svc.Consume(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			if err := known(st, args[0]); err != nil {
				return err
			}
			ing := st.Ingredients[args[0]]
			switch {
			case !ing.InStock:
				done(cmd, "%s is used up", args[0])
			case ing.RemainingParts != nil:
				done(cmd, "%s: %d of %d parts left", args[0], *ing.RemainingParts, ing.Parts)
			default:
				done(cmd, "consumed %s", args[0])
			}
			return nil
		},
	}

	cmd.AddCommand(add, rm, toggle, setExpiry, consume)
	return cmd
}

func newCategoryCmd(l *larder) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage ingredient categories",
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := l.svc.AddCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			done(cmd, "added category %s", args[0])
			return nil
		},
	}

	var yes bool
	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove a category together with its ingredients",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imp, err := l.svc.CategoryImpact(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !confirm(cmd, "category "+args[0], imp, yes) {
				return nil
			}
			if _, err := l.svc.RemoveCategory(cmd.Context(), args[0]); err != nil {
				return err
			}
			done(cmd, "removed category %s", args[0])
			return nil
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask before cascading deletes")

	var off bool
	fresh := &cobra.Command{
		Use:   "fresh NAME",
		Short: "Mark a category as fresh produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := l.svc.SetFresh(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			if off {
				done(cmd, "%s is no longer fresh", args[0])
			} else {
				done(cmd, "%s is fresh", args[0])
			}
			return nil
		},
	}
	fresh.Flags().BoolVar(&off, "off", false, "remove the fresh mark instead")

	list := &cobra.Command{
		Use:   "list",
		Short: "List ingredients by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := l.svc.Overview(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.Ingredients(ov.State, ov.Expiry))
			return nil
		},
	}

	cmd.AddCommand(add, rm, fresh, list)
	return cmd
}
