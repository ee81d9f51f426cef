package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"swing-trader/internal/config"
	"swing-trader/internal/logging"
	"swing-trader/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-06-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "swing-trader.db")
	if decisionStore, err := store.NewSQLiteStore(dbPath); err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journaling unavailable")
	} else {
		app.Store = decisionStore
		logger.Debug().Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "swing-trader",
		Short: "Signal decision pipeline for swing and long-term equity trades",
		Long: `swing-trader runs candle data through a signal decision pipeline:
market structure detection, multi-timeframe analysis, position sizing and a
rule-based decision engine that approves or rejects each trade candidate.

Use 'swing-trader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/swing-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newDecideCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

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
				output.Printf("swing-trader v%s\n", Version)
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
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Analysis")
	output.Printf("  Style:                %s\n", cfg.Analysis.Style)
	output.Println()

	output.Bold("Structure Validator")
	output.Printf("  Require BOS:          %v\n", cfg.Structure.RequireBOS)
	output.Printf("  Require CHOCH:        %v\n", cfg.Structure.RequireCHOCH)
	output.Printf("  Require Order Blocks: %v\n", cfg.Structure.RequireOrderBlocks)
	output.Printf("  Require FVGs:         %v\n", cfg.Structure.RequireFVGs)
	output.Printf("  Require Mitigation:   %v\n", cfg.Structure.RequireMitigation)
	output.Printf("  Min Score:            %.1f\n", cfg.Structure.MinScore)
	output.Printf("  Lookback:             %d\n", cfg.Structure.Lookback)
	output.Println()

	output.Bold("Position Sizing")
	output.Printf("  Risk Per Trade:       %.2f\n", cfg.Sizing.RiskPerTradeAmount)
	output.Printf("  Max Exposure:         %.2f\n", cfg.Sizing.MaxPositionExposureAmount)
	output.Println()

	output.Bold("Decision Engine")
	output.Printf("  Enabled:              %v\n", cfg.Decision.Enabled)
	output.Printf("  Min Risk Reward:      %.2f\n", cfg.Decision.MinRiskReward)
	output.Printf("  Min Confidence:       %.1f\n", cfg.Decision.MinConfidence)
	output.Printf("  Max Volatility:       %.1f%%\n", cfg.Decision.MaxVolatilityPct)
	output.Printf("  Max Positions/Symbol: %d\n", cfg.Decision.MaxPositionsPerSymbol)
	output.Printf("  Max Daily Risk:       %.1f%%\n", cfg.Decision.MaxDailyRiskPct)
	return nil
}
