package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/larder/internal/alert"
	"github.com/hammamikhairi/larder/internal/display"
	"github.com/hammamikhairi/larder/internal/domain"
)

func newImportCmd(l *larder) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: `Replace the pantry with an exported document ("-" reads stdin)`,
		Long: `Import validates the document first. Structural problems reject it and
leave the pantry untouched; recoverable ones are repaired and listed as
warnings. Older document versions are upgraded on the way in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			res, err := l.svc.Import(cmd.Context(), data)
			if err == nil || errors.Is(err, domain.ErrInvalidDocument) {
				printf(cmd, "%s", display.ImportReport(res))
			}
			return err
		},
	}
}

func newExportCmd(l *larder) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write the pantry as a JSON document (stdout by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := l.svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 || args[0] == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			done(cmd, "exported to %s", args[0])
			return nil
		},
	}
}

func newWatchCmd(l *larder) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep running and warn about food that is about to spoil",
		Long: `Watch checks expiry dates on an interval and prints a notice for every
stocked ingredient that is expired or inside the warning window, followed
by the recipe that best uses them up. Each ingredient is reported again
only after the cooldown, and a few times at most.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := l.log.With("alert")
			notifier := alert.NewCLINotifier(log, func(format string, a ...any) {
				printf(cmd, format+"\n", a...)
			})
			sup := alert.New(l.svc, l.svc.Evaluator(), notifier, log,
				alert.WithTickInterval(l.cfg.AlertInterval()),
				alert.WithNotifyCooldown(l.cfg.AlertCooldown()),
				alert.WithSuggestions(l.svc.Feasibility()),
			)

			if once {
				if sup.Check(cmd.Context()) == 0 {
					printf(cmd, "nothing is about to spoil\n")
				}
				return nil
			}

			printf(cmd, "watching the pantry every %s, Ctrl+C to stop\n", l.cfg.AlertInterval())
			sup.Start(cmd.Context())
			<-cmd.Context().Done()
			sup.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "check once and exit")
	return cmd
}
