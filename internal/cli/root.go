// Package cli wires the plan command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plan-cli/internal/config"
	"plan-cli/internal/format"
	"plan-cli/internal/logging"
	"plan-cli/internal/model"
	"plan-cli/internal/store"
	"plan-cli/internal/tui"
)

type App struct {
	ConfigPath string
	DBPath     string
	Format     string
	PrettyJSON bool
	Verbose    bool

	cfg    config.Config
	loaded bool
}

const watchDebounce = 200 * time.Millisecond

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "plan",
		Short:        "Plan: a local-first outline editor",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Edit the outline interactively
  plan

  # Scriptable commands
  plan add "Write report" --description "due friday"
  plan list --format text
  plan export --rich > backup.json
  plan import 'notes/**/*.md'
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("PLAN_CONFIG", ""), "Path to config.toml (default: user config dir)")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("PLAN_DB", ""), "Path to the plan database (overrides db_path)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PLAN_FORMAT", "json"), "Output format (json|yaml|text|markdown)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	cfg, err := loadConfig(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Interactive: true, Verbose: app.Verbose})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, cfg.DBPath, store.WithLogger(log.Named("store")))
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()

	items, err := st.Load(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	log.Info("editor starting", zap.String("db", st.Path()), zap.Int("items", len(items)))
	return tui.RunWithWatcher(ctx, tui.Options{
		Items:  items,
		Loader: st,
		Sink:   st,
		Config: cfg,
		Logger: log,
	}, st.Path(), watchDebounce)
}

func loadConfig(app *App) (config.Config, error) {
	if app.loaded {
		return app.cfg, nil
	}
	path, err := configPath(app)
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return config.Config{}, err
	}
	if p := strings.TrimSpace(app.DBPath); p != "" {
		cfg.DBPath = p
	}
	app.cfg, app.loaded = cfg, true
	return cfg, nil
}

func configPath(app *App) (string, error) {
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// withStore opens the configured store for a non-interactive command.
func withStore(cmd *cobra.Command, app *App, fn func(ctx context.Context, st *store.Store, cfg config.Config) error) error {
	cfg, err := loadConfig(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Verbose: app.Verbose})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(ctx, cfg.DBPath, store.WithLogger(log.Named("store")))
	if err != nil {
		return writeErr(cmd, err)
	}
	defer st.Close()
	if err := fn(ctx, st, cfg); err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

// writeItems keeps the {"data": ...} envelope for machine formats.
func writeItems(cmd *cobra.Command, app *App, items []model.PlanItem) error {
	switch app.Format {
	case "text", "txt", "markdown", "md":
		return format.WriteItems(cmd.OutOrStdout(), items, app.Format, app.PrettyJSON)
	}
	if items == nil {
		items = []model.PlanItem{}
	}
	return writeOut(cmd, app, map[string]any{"data": items})
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
