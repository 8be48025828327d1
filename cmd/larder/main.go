// Larder keeps track of a household pantry: what is in stock, what is
// about to spoil, what can be cooked and what to buy.
//
// Usage:
//
//	larder [command] [-v] [--quiet] [--store backend]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/larder/internal/app"
	"github.com/hammamikhairi/larder/internal/config"
	"github.com/hammamikhairi/larder/internal/feasibility"
	"github.com/hammamikhairi/larder/internal/logger"
	"github.com/hammamikhairi/larder/internal/storage"
)

// larder holds the global flags and the wiring built from them. It is
// created once per invocation so tests can run commands side by side.
type larder struct {
	// Global flags
	configPath string
	backend    string
	storePath  string
	logFile    string
	verbose    bool
	quiet      bool

	cfg     *config.Config
	log     *logger.Logger
	store   storage.Store
	svc     *app.Service
	closers []io.Closer
}

func newRootCmd(l *larder) *cobra.Command {
	root := &cobra.Command{
		Use:   "larder",
		Short: "Pantry, recipes and shopping from the terminal",
		Long: `larder tracks what is in your pantry and when it expires, tells you
which recipes you can cook right now (and which ones use up food before
it spoils), and walks you through the shopping trip for the rest.

Run without arguments to show the pantry overview.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return l.setup(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return l.runStatus(cmd, true)
		},
	}

	root.PersistentFlags().StringVarP(&l.configPath, "config", "c", config.DefaultPath, "config file")
	root.PersistentFlags().StringVar(&l.backend, "store", "", "store backend: memory, file, sqlite, postgres or redis")
	root.PersistentFlags().StringVar(&l.storePath, "store-path", "", "database or JSON file for the file and sqlite backends")
	root.PersistentFlags().StringVar(&l.logFile, "log-file", "", `file to write logs to (use "stderr" to log to console)`)
	root.PersistentFlags().BoolVarP(&l.verbose, "verbose", "v", false, "enable verbose/debug logging")
	root.PersistentFlags().BoolVar(&l.quiet, "quiet", false, "disable all logging")

	root.AddCommand(
		newStatusCmd(l),
		newIngredientCmd(l),
		newCategoryCmd(l),
		newRecipeCmd(l),
		newShopCmd(l),
		newImportCmd(l),
		newExportCmd(l),
		newWatchCmd(l),
	)
	return root
}

// setup loads configuration, opens the log and the store, and builds the
// service. Flags win over the environment, which wins over the file.
func (l *larder) setup(ctx context.Context) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(l.configPath)
	if err != nil {
		return err
	}
	if l.backend != "" {
		cfg.Store.Backend = l.backend
	}
	if l.storePath != "" {
		cfg.Store.Path = l.storePath
	}
	if l.logFile != "" {
		cfg.Logging.File = l.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	l.cfg = cfg

	level := cfg.LogLevel()
	if l.verbose {
		level = logger.LevelVerbose
	}
	if l.quiet {
		level = logger.LevelOff
	}
	l.log = logger.New(level, l.openLog(cfg.Logging.File))

	store, err := storage.Open(ctx, cfg.Store, l.log.With("store"))
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	l.store = store
	l.closers = append(l.closers, store)

	l.svc = app.New(store, l.log.With("app"),
		app.WithWarningDays(cfg.WarningDays),
		app.WithColdChain(cfg.ColdChain),
		app.WithWeights(feasibility.Weights{
			ExpiredPenalty:    cfg.Weights.Expired,
			SoonWeight:        cfg.Weights.Soon,
			ConsumptionWeight: cfg.Weights.Consumption,
		}),
	)
	return nil
}

// openLog directs logs to a file by default so command output stays
// clean. Failing to open it falls back to stderr.
func (l *larder) openLog(path string) io.Writer {
	var out io.Writer = os.Stderr
	if path == "" || path == "stderr" {
		return out
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return out
	}
	l.closers = append(l.closers, f)

	// Drivers that use the standard log package write here too.
	stdlog.SetOutput(f)
	stdlog.SetFlags(stdlog.Ltime)
	return f
}

func (l *larder) close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}

// run executes one command line against fresh wiring.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	l := &larder{}
	defer l.close()

	root := newRootCmd(l)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
