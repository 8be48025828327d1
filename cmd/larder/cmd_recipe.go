package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/larder/internal/display"
	"github.com/hammamikhairi/larder/internal/domain"
)

func newRecipeCmd(l *larder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Manage recipes and find out what to cook",
	}

	var category string
	add := &cobra.Command{
		Use:     "add NAME INGREDIENT...",
		Short:   "Add a recipe from pantry ingredients",
		Example: `  larder recipe add Crepes Milk Eggs Flour --category Dessert`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Recipe{Name: args[0], Category: category, Ingredients: args[1:]}
			if _, err := l.svc.AddRecipe(cmd.Context(), r); err != nil {
				return err
			}
			done(cmd, "added recipe %s", args[0])
			return nil
		},
	}
	add.Flags().StringVar(&category, "category", "", "recipe category, e.g. Dessert")

	rm := &cobra.Command{
		Use:   "rm NAME",
		Short: "Remove a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := l.svc.RemoveRecipe(cmd.Context(), args[0]); err != nil {
				return err
			}
			done(cmd, "removed recipe %s", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recipes with what each one still needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := l.svc.Load(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.Recipes(st))
			return nil
		},
	}

	feasible := &cobra.Command{
		Use:   "feasible",
		Short: "Recipes you can cook right now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := l.svc.Feasible(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.RecipeNames("Cookable now", rs))
			return nil
		},
	}

	urgent := &cobra.Command{
		Use:   "urgent",
		Short: "Cookable recipes, soonest to spoil first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			us, err := l.svc.Urgent(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.Urgency(us, l.cfg.WarningDays))
			return nil
		},
	}

	priority := &cobra.Command{
		Use:   "priority",
		Short: "Cookable recipes ranked by how much food they save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := l.svc.Prioritized(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s", display.Priority(ps))
			return nil
		},
	}

	missing := &cobra.Command{
		Use:   "missing NAME",
		Short: "What a recipe still needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := l.svc.MissingFor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(names) == 0 {
				done(cmd, "%s can be cooked now", args[0])
				return nil
			}
			printf(cmd, "%s needs %s\n", args[0], strings.Join(names, ", "))
			return nil
		},
	}

	cmd.AddCommand(add, rm, list, feasible, urgent, priority, missing)
	return cmd
}
