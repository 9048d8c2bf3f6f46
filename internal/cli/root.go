package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"alphaquant-console/internal/api"
	"alphaquant-console/internal/config"
	"alphaquant-console/internal/gate"
	"alphaquant-console/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-08-24"
)

// snapshotMaxAge bounds how long cached resource snapshots are kept.
const snapshotMaxAge = 7 * 24 * time.Hour

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Client    *api.Client
	Store     store.DataStore
	Gate      *gate.Gate
}

// NewRootCmd creates the root command for the CLI. configDir is the
// directory the config was loaded from; the local store lives next to
// it, so a --config override relocates both.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger, configDir string) *cobra.Command {
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}

	client, err := api.New(api.Config{
		BaseURL: cfg.Server.URL,
		Timeout: cfg.Server.Timeout,
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Backend client not configured, remote commands will fail")
	} else {
		app.Client = client
		app.Gate = gate.New(client, logger)
	}

	dbPath := filepath.Join(configDir, "console.db")
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journal and cache are unavailable")
	} else {
		app.Store = dataStore
		if n, err := dataStore.PruneSnapshots(context.Background(), snapshotMaxAge); err == nil && n > 0 {
			logger.Debug().Int64("pruned", n).Msg("Pruned expired cache snapshots")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "alphaquant",
		Short: "AlphaQuant - interactive trading console",
		Long: `AlphaQuant is a terminal client for the AlphaQuant trading backend.

It keeps account, position and chart views synchronized by polling,
funnels every order through the behavioral risk gate, and controls the
backend's background strategy.

Use 'alphaquant console' for the interactive full-screen mode, or the
individual commands for one-shot use.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/alphaquant)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConsoleCmd(app))
	addAccountCommands(rootCmd, app)
	addMarketCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addAlgoCommands(rootCmd, app)
	addBehaviorCommands(rootCmd, app)
	addSettingsCommands(rootCmd, app)
	addExportCommands(rootCmd, app)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("AlphaQuant Console v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

// requireClient guards commands that need a configured backend.
func (app *App) requireClient(output *Output) bool {
	if app.Client == nil {
		output.Error("Backend not configured. Set server.url in %s/config.toml or ALPHAQUANT_SERVER_URL.", app.ConfigDir)
		return false
	}
	return true
}
