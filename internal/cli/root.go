package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/mailcheck/internal/checklist"
	"github.com/idilsaglam/mailcheck/internal/config"
	"github.com/idilsaglam/mailcheck/internal/store/sqlitestore"
	"github.com/idilsaglam/mailcheck/internal/tui"
	"github.com/idilsaglam/mailcheck/internal/ui"
)

// App carries root flag values and the resolved configuration.
type App struct {
	ConfigPath string
	DBPath     string
	SeedPath   string
	Theme      string
	LogLevel   string
	Color      bool
	NoColor    bool

	cfg *config.Config
}

// exitError carries an exit code; silent errors were already shown to the user.
type exitError struct {
	code   int
	err    error
	silent bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

// Run executes the command tree and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string) int {
	return run(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	ui.SetOutput(out, errOut)
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			ui.Fail(ee.Error())
		}
		return ee.code
	}
	ui.Fail(err.Error())
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		fmt.Fprintln(errOut)
		_ = root.Usage()
		return 2
	}
	return 1
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "mailcheck",
		Short:         "Email checklist: track which addresses are unused, in use, used or left over",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive checklist
  mailcheck

  # Scriptable commands
  mailcheck ls
  mailcheck show 3 --format json
  mailcheck add someone@example.com --status using --number 12
  mailcheck status 3 used
  mailcheck rm 2 5
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.loadConfig(cmd)
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: 2, err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigPath, "config", "", "Path to mailcheck.toml (default: next to the executable)")
	pf.StringVar(&app.DBPath, "db", "", "Path to the SQLite database")
	pf.StringVar(&app.SeedPath, "seed", "", "Checklist document imported when the database is empty")
	pf.StringVar(&app.Theme, "theme", "", "Output theme (classic|neon|mono)")
	pf.StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	pf.BoolVar(&app.Color, "color", false, "Force coloured output")
	pf.BoolVar(&app.NoColor, "no-color", false, "Disable coloured output")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newNumberCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newExportCmd(app))
	return cmd
}

func (app *App) loadConfig(cmd *cobra.Command) error {
	baseDir, err := config.ExecutableDir()
	if err != nil {
		return err
	}
	cfg, err := config.Load(app.ConfigPath, baseDir)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = app.DBPath
	}
	if flags.Changed("seed") {
		cfg.SeedPath = app.SeedPath
	}
	if flags.Changed("theme") {
		cfg.Theme = app.Theme
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if err := cfg.Finalize(); err != nil {
		return usageErr("config: %v", err)
	}
	if app.Color && app.NoColor {
		return usageErr("--color and --no-color are mutually exclusive")
	}
	ui.SetTheme(cfg.Theme)
	ui.SetColorForcing(app.Color, app.NoColor || ui.Current().Name == "mono")
	app.cfg = cfg
	return nil
}

func (app *App) logger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           app.cfg.Level(),
		Prefix:          "mailcheck",
		ReportTimestamp: true,
	})
}

func runTUI(ctx context.Context, app *App) error {
	f, err := os.OpenFile(app.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	logger := app.logger(f)

	st, err := sqlitestore.Open(ctx, app.cfg.DBPath)
	if err != nil {
		logger.Error("open store", "path", app.cfg.DBPath, "err", err)
		return err
	}
	logger.Debug("store opened", "path", app.cfg.DBPath)
	return tui.Run(ctx, st, checklist.Options{SeedPath: app.cfg.SeedPath, Logger: logger})
}
