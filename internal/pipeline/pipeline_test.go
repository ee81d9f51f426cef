package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/analysis/mtf"
	"swing-trader/internal/config"
	"swing-trader/internal/intent"
	"swing-trader/internal/models"
	"swing-trader/internal/portfolio"
)

var testBase = time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)

func trendingCandles(n int, start, stepPct float64) []models.Candle {
	candles := make([]models.Candle, n)
	price := start
	for i := range candles {
		next := price * (1 + stepPct/100)
		candles[i] = models.Candle{
			Timestamp: testBase.AddDate(0, 0, i),
			Open:      price,
			High:      math.Max(price, next) * 1.004,
			Low:       math.Min(price, next) * 0.996,
			Close:     next,
			Volume:    10000,
		}
		price = next
	}
	return candles
}

// permissiveConfig lets a structurally unremarkable series travel the whole
// pipeline so the stage wiring itself is under test.
func permissiveConfig() *config.Config {
	cfg := config.Default()
	cfg.Structure.MinScore = 0
	cfg.Decision.MinRiskReward = 0
	cfg.Decision.MinConfidence = 0
	cfg.Decision.MaxVolatilityPct = 100
	return cfg
}

func testPlan() *intent.TradePlan {
	return &intent.TradePlan{
		Symbol:   "RELIANCE",
		Bias:     models.BiasLong,
		Entry:    100,
		StopLoss: 95,
		Target:   112,
	}
}

func TestRun_MissingDailyCandles(t *testing.T) {
	p := New(permissiveConfig(), zerolog.Nop())
	req := Request{
		Symbol:  "RELIANCE",
		Candles: map[mtf.Timeframe][]models.Candle{mtf.Timeframe1Hour: trendingCandles(60, 100, 0.1)},
	}
	if _, err := p.Run(context.Background(), req); err == nil {
		t.Error("expected an error without daily candles")
	}
}

func TestRun_ShortSeriesStopsAtStructure(t *testing.T) {
	cfg := permissiveConfig()
	cfg.Structure.MinScore = 50
	p := New(cfg, zerolog.Nop())

	req := Request{
		Symbol:  "RELIANCE",
		Candles: map[mtf.Timeframe][]models.Candle{mtf.Timeframe1Day: trendingCandles(49, 100, 0.5)},
		Plan:    testPlan(),
	}
	report, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Verdict == nil || report.Verdict.Valid {
		t.Errorf("Verdict = %+v, want an invalid verdict on 49 candles", report.Verdict)
	}
	if report.SkipReason == "" {
		t.Error("want a skip reason when structure rejects")
	}
	if report.Intent != nil || report.Outcome != nil {
		t.Error("later stages must not run after a structure rejection")
	}
}

func TestRun_FullFlowWithPlan(t *testing.T) {
	p := New(permissiveConfig(), zerolog.Nop())

	req := Request{
		Symbol: "RELIANCE",
		Candles: map[mtf.Timeframe][]models.Candle{
			mtf.Timeframe1Day: trendingCandles(120, 100, 0.5),
		},
		Plan:      testPlan(),
		Portfolio: &portfolio.Snapshot{Equity: 1000000, SwingCapital: 500000},
	}

	report, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.SkipReason != "" {
		t.Fatalf("SkipReason = %q, want the full flow to run", report.SkipReason)
	}
	if report.Analysis == nil || report.Verdict == nil || report.Intent == nil || report.Sizing == nil {
		t.Fatal("all stages should have produced output")
	}
	if report.Recommendation == nil || report.Outcome == nil {
		t.Fatal("recommendation and outcome should be set")
	}
	if report.Recommendation.InstrumentID != "RELIANCE" {
		t.Errorf("InstrumentID = %s, want RELIANCE", report.Recommendation.InstrumentID)
	}
	if got := report.Sizing.RiskAmount; got != report.Sizing.RiskPerShare*float64(report.Sizing.Quantity) {
		t.Errorf("sizing invariant broken: %v != %v * %d", got, report.Sizing.RiskPerShare, report.Sizing.Quantity)
	}
	if report.Recommendation.Quantity != report.Sizing.Quantity {
		t.Errorf("recommendation quantity %d != sized quantity %d", report.Recommendation.Quantity, report.Sizing.Quantity)
	}
}

func TestRun_UnusablePlanSkips(t *testing.T) {
	p := New(permissiveConfig(), zerolog.Nop())

	plan := testPlan()
	plan.StopLoss = 0
	req := Request{
		Symbol:  "RELIANCE",
		Candles: map[mtf.Timeframe][]models.Candle{mtf.Timeframe1Day: trendingCandles(120, 100, 0.5)},
		Plan:    plan,
	}

	report, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Intent != nil {
		t.Errorf("Intent = %+v, want nil for a stopless plan", report.Intent)
	}
	if report.SkipReason == "" {
		t.Error("want a skip reason for an unusable plan")
	}
}

func TestCapitalBucket(t *testing.T) {
	swing := New(permissiveConfig(), zerolog.Nop())
	if got := swing.capitalBucket(); got != portfolio.TimeframeSwing {
		t.Errorf("capitalBucket = %s, want swing", got)
	}

	cfg := permissiveConfig()
	cfg.Analysis.Style = "longterm"
	long := New(cfg, zerolog.Nop())
	if got := long.capitalBucket(); got != portfolio.TimeframeLongTerm {
		t.Errorf("capitalBucket = %s, want longterm", got)
	}
}
