// Package cli provides the command-line interface for the signal dashboard.
package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"signal-dashboard/internal/config"
	"signal-dashboard/internal/dashboard"
	"signal-dashboard/internal/logging"
	"signal-dashboard/internal/store"
)

// Version information, overridden at link time.
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.VisitStore
	Service *dashboard.Service
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "signals",
		Short: "Signal dashboard - trade outcomes from a signals file",
		Long: `Signal dashboard reads a JSON document of per-symbol trading signals,
turns every entry level into a trade with a lifecycle status and profit
figures, and reports per-symbol and per-level summaries.

It never places or executes trades.

Use 'signals serve' to browse the same reports over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/signal-dashboard)")
	rootCmd.PersistentFlags().String("file", "", "signals file (overrides data.signals_file)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addReportCommands(rootCmd, app)
	addExportCommands(rootCmd, app)
	addServeCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

// init loads configuration and wires the logger, visit store and service.
func (a *App) init(cmd *cobra.Command) error {
	configDir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		cfg.Data.SignalsFile = file
	}
	a.Config = cfg
	a.Logger = logging.NewLoggerWithConfig(cfg.Logging())

	// Handle debug flag
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	var visits store.VisitStore
	if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0755); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to create store directory, visits will not be recorded")
	} else if s, err := store.NewSQLiteStore(cfg.Store.DBPath); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to initialize store, visits will not be recorded")
	} else {
		visits = s
		a.Logger.Debug().Str("path", cfg.Store.DBPath).Msg("SQLite store initialized")
	}
	a.Store = visits

	a.Service = dashboard.NewService(cfg, a.Logger, visits)
	return nil
}

// Close releases the visit store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	err := a.Store.Close()
	a.Store = nil
	return err
}

// money returns the configured currency formatter.
func (a *App) money() Money {
	return Money{Currency: a.Config.Report.Currency, Grouping: Grouping(a.Config.Report.Grouping)}
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
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
				output.Printf("Signal Dashboard v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Path()})
			} else {
				output.Println(app.Config.Path())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Data")
	output.Printf("  Signals file:  %s\n", cfg.Data.SignalsFile)
	output.Println()

	output.Bold("Report")
	output.Printf("  Currency:      %s\n", cfg.Report.Currency)
	output.Printf("  Grouping:      %s\n", cfg.Report.Grouping)
	output.Printf("  Date format:   %s\n", cfg.Report.DateFormat)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:       %s\n", cfg.Server.Addr)
	output.Printf("  Chart theme:   %s\n", cfg.Server.ChartTheme)
	output.Println()

	output.Bold("Store")
	output.Printf("  Database:      %s\n", cfg.Store.DBPath)
	output.Printf("  Track visits:  %v\n", cfg.Store.TrackVisits)
	output.Println()

	output.Bold("Git")
	output.Printf("  Repository:    %s\n", cfg.Git.RepoDir)
	output.Printf("  Max entries:   %d\n", cfg.Git.MaxEntries)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:         %s\n", cfg.Log.Level)
	output.Printf("  Console:       %v\n", cfg.Log.Console)
	output.Printf("  File:          %v (%s)\n", cfg.Log.File, cfg.Log.FilePath)
}
