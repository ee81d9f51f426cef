package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swing-trader/internal/analysis/mtf"
	"swing-trader/internal/analysis/structure"
	"swing-trader/internal/feed"
	"swing-trader/internal/models"
)

var errMissingCandles = errors.New("no candle data supplied")

// timeframeFlags maps CSV-file flags onto analyzer timeframes.
var timeframeFlags = []struct {
	flag     string
	tf       mtf.Timeframe
	interval models.Interval
}{
	{"m15", mtf.Timeframe15Min, models.Interval15Min},
	{"hourly", mtf.Timeframe1Hour, models.Interval1Hour},
	{"daily", mtf.Timeframe1Day, models.IntervalDay},
	{"weekly", mtf.Timeframe1Week, models.IntervalWeek},
}

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <symbol>",
		Short: "Multi-timeframe analysis and structure validation for a symbol",
		Long: `Run candle data through multi-timeframe analysis and the market
structure validator. Candle data is read from CSV files, one per timeframe
(header: timestamp,open,high,low,close,volume). Loaded series are cached
locally; later runs may omit the files for timeframes already cached.`,
		Example: `  swing-trader analyze RELIANCE --daily reliance_day.csv
  swing-trader analyze INFY --daily day.csv --weekly week.csv --hourly hour.csv
  swing-trader analyze TCS --daily day.csv --direction bearish`,
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

			analyzer := mtf.NewAnalyzer(mtf.Style(app.Config.Analysis.Style))
			result, err := analyzer.Analyze(ctx, symbol, candles)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			direction := models.Bullish
			if d, _ := cmd.Flags().GetString("direction"); d == "bearish" {
				direction = models.Bearish
			}

			var verdict *structure.Verdict
			if daily, ok := candles[mtf.Timeframe1Day]; ok {
				verdict = structure.NewValidator(app.Config.Structure).Validate(daily, direction)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"analysis": result,
					"verdict":  verdict,
				})
			}

			output.Println(result.FormatResult())
			if verdict != nil {
				printVerdict(output, verdict)
			}
			return nil
		},
	}

	for _, tf := range timeframeFlags {
		cmd.Flags().String(tf.flag, "", "CSV file with "+string(tf.tf)+" candles")
	}
	cmd.Flags().String("direction", "bullish", "structure direction to validate (bullish, bearish)")

	return cmd
}

// loadCandleFlags reads every supplied timeframe CSV and refreshes the candle
// cache with it. Timeframes without a file fall back to previously cached
// candles, so repeat runs only need the files that changed.
func loadCandleFlags(ctx context.Context, cmd *cobra.Command, app *App, symbol string) (map[mtf.Timeframe][]models.Candle, error) {
	candles := make(map[mtf.Timeframe][]models.Candle)
	for _, tf := range timeframeFlags {
		path, _ := cmd.Flags().GetString(tf.flag)
		if path == "" {
			if cached := cachedCandles(ctx, app, symbol, tf.tf); len(cached) > 0 {
				candles[tf.tf] = cached
			}
			continue
		}
		series, err := feed.LoadFile(path, symbol, tf.interval)
		if err != nil {
			return nil, err
		}
		candles[tf.tf] = series.Candles

		if app.Store != nil {
			if err := app.Store.SaveCandles(ctx, symbol, string(tf.tf), series.Candles); err != nil {
				app.Logger.Warn().Err(err).Str("timeframe", string(tf.tf)).Msg("Failed to cache candles")
			}
		}
	}
	return candles, nil
}

// cachedCandles pulls the full cached history for one timeframe. Cache
// problems degrade to "no data" rather than failing the command.
func cachedCandles(ctx context.Context, app *App, symbol string, tf mtf.Timeframe) []models.Candle {
	if app.Store == nil {
		return nil
	}
	candles, err := app.Store.GetCandles(ctx, symbol, string(tf), time.Time{}, time.Now())
	if err != nil {
		app.Logger.Warn().Err(err).Str("timeframe", string(tf)).Msg("Failed to read candle cache")
		return nil
	}
	return candles
}

func printVerdict(output *Output, verdict *structure.Verdict) {
	output.Bold("Structure Verdict")
	if verdict.Valid {
		output.Success("  Valid (score %.1f)", verdict.Score)
	} else {
		output.Warning("  Invalid (score %.1f)", verdict.Score)
	}
	for _, reason := range verdict.Reasons {
		output.Dim("  - %s", reason)
	}
}
