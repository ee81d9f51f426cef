package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swing-trader/internal/intent"
	"swing-trader/internal/logging"
	"swing-trader/internal/models"
	"swing-trader/internal/pipeline"
	"swing-trader/internal/portfolio"
	"swing-trader/internal/store"
)

func newDecideCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide <symbol>",
		Short: "Run a trade candidate through the full decision pipeline",
		Long: `Run a symbol through the complete pipeline: multi-timeframe analysis,
structure validation, position sizing and the decision engine. The trade plan
can be given explicitly with --entry/--stop/--target, or derived from the
analysis entry recommendations when omitted. The outcome is journaled.`,
		Example: `  swing-trader decide RELIANCE --daily day.csv --entry 2850 --stop 2790 --target 2990
  swing-trader decide INFY --daily day.csv --weekly week.csv
  swing-trader decide TCS --daily day.csv --equity 1000000 --capital 300000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			symbol := strings.ToUpper(args[0])
			candles, err := loadCandleFlags(ctx, cmd, app, symbol)
			if err != nil {
				output.Error("Failed to load candle data: %v", err)
				return err
			}
			if len(candles) == 0 {
				output.Error("No candle data supplied or cached. Use --daily, --weekly, --hourly or --m15.")
				return errMissingCandles
			}

			req := pipeline.Request{
				Symbol:    symbol,
				Candles:   candles,
				Plan:      planFromFlags(cmd, symbol),
				Portfolio: portfolioFromFlags(cmd, symbol),
				System:    systemFromFlags(cmd),
			}

			report, err := pipeline.New(app.Config, app.Logger).Run(ctx, req)
			if err != nil {
				output.Error("Pipeline failed: %v", err)
				return err
			}

			if app.Store != nil && report.Outcome != nil {
				journalOutcome(ctx, app, report)
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			printReport(output, report)
			return nil
		},
	}

	for _, tf := range timeframeFlags {
		cmd.Flags().String(tf.flag, "", "CSV file with "+string(tf.tf)+" candles")
	}

	cmd.Flags().Float64("entry", 0, "planned entry price")
	cmd.Flags().Float64("stop", 0, "planned stop-loss price")
	cmd.Flags().Float64("target", 0, "planned target price")
	cmd.Flags().String("bias", "long", "trade bias (long, short)")

	cmd.Flags().Float64("equity", 0, "total account equity")
	cmd.Flags().Float64("capital", 0, "available capital for this timeframe")
	cmd.Flags().Int("open-positions", 0, "open positions already held in this symbol")
	cmd.Flags().Float64("risk-used", 0, "risk amount already committed today")
	cmd.Flags().Float64("drawdown", 0, "current drawdown from peak equity, percent")
	cmd.Flags().Int("losses", 0, "current consecutive losing-trade count")

	return cmd
}

// planFromFlags builds an explicit trade plan, or nil when no entry was given
// so the pipeline derives one from the analysis.
func planFromFlags(cmd *cobra.Command, symbol string) *intent.TradePlan {
	entry, _ := cmd.Flags().GetFloat64("entry")
	if entry <= 0 {
		return nil
	}
	stop, _ := cmd.Flags().GetFloat64("stop")
	target, _ := cmd.Flags().GetFloat64("target")

	bias := models.BiasLong
	if b, _ := cmd.Flags().GetString("bias"); b == "short" {
		bias = models.BiasShort
	}

	return &intent.TradePlan{
		Symbol:   symbol,
		Bias:     bias,
		Entry:    entry,
		StopLoss: stop,
		Target:   target,
	}
}

func portfolioFromFlags(cmd *cobra.Command, symbol string) portfolio.Portfolio {
	equity, _ := cmd.Flags().GetFloat64("equity")
	capital, _ := cmd.Flags().GetFloat64("capital")
	if equity <= 0 && capital <= 0 {
		return nil
	}

	openPositions, _ := cmd.Flags().GetInt("open-positions")
	riskUsed, _ := cmd.Flags().GetFloat64("risk-used")

	return &portfolio.Snapshot{
		Equity:         equity,
		SwingCapital:   capital,
		GeneralCapital: capital,
		TodaysRisk:     riskUsed,
		Positions:      map[string]int{symbol: openPositions},
	}
}

func systemFromFlags(cmd *cobra.Command) portfolio.SystemContext {
	drawdown, _ := cmd.Flags().GetFloat64("drawdown")
	losses, _ := cmd.Flags().GetInt("losses")
	if drawdown == 0 && losses == 0 {
		return nil
	}
	return &portfolio.ContextSnapshot{Drawdown: drawdown, Losses: losses}
}

func journalOutcome(ctx context.Context, app *App, report *pipeline.Report) {
	rec := &store.DecisionRecord{
		Timestamp:    report.Outcome.EvaluatedAt,
		Symbol:       report.Symbol,
		Approved:     report.Outcome.Approved,
		Stage:        report.Outcome.Stage,
		Reason:       report.Outcome.Reason,
		DecisionPath: report.Outcome.DecisionPath,
	}
	if report.Recommendation != nil {
		rec.Entry = report.Recommendation.Entry
		rec.Stop = report.Recommendation.Stop
		rec.Quantity = report.Recommendation.Quantity
		rec.RiskAmount = report.Recommendation.RiskAmount
		rec.Confidence = report.Recommendation.Confidence
		rec.ExpectedRR = report.Recommendation.ExpectedRR
	}
	if err := app.Store.SaveDecision(ctx, rec); err != nil {
		app.Logger.Warn().Err(err).Msg("Failed to journal decision")
	}
	logging.LogDecision(app.Logger, report.Symbol, rec.Approved, rec.Stage, rec.Reason)
}

func printReport(output *Output, report *pipeline.Report) {
	if report.Analysis != nil {
		output.Println(report.Analysis.FormatResult())
	}
	if report.Verdict != nil {
		printVerdict(output, report.Verdict)
		output.Println()
	}

	if report.SkipReason != "" {
		output.Warning("Pipeline stopped: %s", report.SkipReason)
		return
	}

	if report.Sizing != nil {
		output.Bold("Position Sizing")
		output.Printf("  Quantity:         %d\n", report.Sizing.Quantity)
		output.Printf("  Capital Required: %.2f\n", report.Sizing.CapitalRequired)
		output.Printf("  Risk Amount:      %.2f\n", report.Sizing.RiskAmount)
		if report.Sizing.RiskPercentage > 0 {
			output.Printf("  Risk of Equity:   %.2f%%\n", report.Sizing.RiskPercentage)
		}
		output.Println()
	}

	if report.Outcome != nil {
		output.Bold("Decision")
		if report.Outcome.Approved {
			output.Success("  APPROVED (%s)", report.Outcome.Stage)
		} else {
			output.Error("  REJECTED at %s: %s", report.Outcome.Stage, report.Outcome.Reason)
		}
		output.Dim("  Path: %s", strings.Join(report.Outcome.DecisionPath, " -> "))
	}
}
