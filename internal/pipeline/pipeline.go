// Package pipeline wires the full signal decision flow: multi-timeframe
// analysis, structure validation, intent normalization, position sizing and
// the decision engine. Each stage can stop the flow; the report records how
// far a signal travelled and why it stopped.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/analysis/indicators"
	"swing-trader/internal/analysis/mtf"
	"swing-trader/internal/analysis/structure"
	"swing-trader/internal/config"
	"swing-trader/internal/decision"
	"swing-trader/internal/intent"
	"swing-trader/internal/logging"
	"swing-trader/internal/models"
	"swing-trader/internal/portfolio"
	"swing-trader/internal/sizing"
)

// Pipeline runs the end-to-end signal decision flow.
type Pipeline struct {
	cfg       *config.Config
	validator *structure.Validator
	analyzer  *mtf.Analyzer
	sizer     *sizing.Sizer
	engine    *decision.Engine
	logger    zerolog.Logger
}

// New builds a pipeline from configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		validator: structure.NewValidator(cfg.Structure),
		analyzer:  mtf.NewAnalyzer(mtf.Style(cfg.Analysis.Style)),
		sizer:     sizing.NewSizer(cfg.Sizing, logger),
		engine:    decision.NewEngine(cfg.Decision, logger),
		logger:    logger,
	}
}

// Request carries everything one pipeline run needs. Plan is optional: when
// absent, the pipeline derives one from the analysis entry recommendations.
type Request struct {
	Symbol    string
	Candles   map[mtf.Timeframe][]models.Candle
	Plan      *intent.TradePlan
	Portfolio portfolio.Portfolio
	System    portfolio.SystemContext
}

// Report records the outcome of each stage. A stage left nil was not reached;
// SkipReason says why the flow stopped early.
type Report struct {
	Symbol         string
	Analysis       *mtf.Result
	Verdict        *structure.Verdict
	Intent         *models.TradeIntent
	Sizing         *models.SizingResult
	Recommendation *models.TradeRecommendation
	Outcome        *decision.Outcome
	SkipReason     string
}

// Run executes the pipeline for one symbol.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	logger := logging.WithSymbol(p.logger, req.Symbol)
	report := &Report{Symbol: req.Symbol}

	daily, ok := req.Candles[mtf.Timeframe1Day]
	if !ok || len(daily) == 0 {
		return nil, fmt.Errorf("daily candles are required for %s", req.Symbol)
	}

	analysis, err := p.analyzer.Analyze(ctx, req.Symbol, req.Candles)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", req.Symbol, err)
	}
	report.Analysis = analysis

	direction := models.Bullish
	if req.Plan != nil && req.Plan.Bias == models.BiasShort {
		direction = models.Bearish
	}

	report.Verdict = p.validator.Validate(daily, direction)
	if !report.Verdict.Valid {
		report.SkipReason = fmt.Sprintf("structure score %.1f below minimum %.1f", report.Verdict.Score, p.cfg.Structure.MinScore)
		logger.Info().Float64("score", report.Verdict.Score).Msg("structure rejected signal")
		return report, nil
	}

	plan := req.Plan
	if plan == nil {
		plan = p.derivePlan(req.Symbol, analysis, daily)
		if plan == nil {
			report.SkipReason = "no entry recommendation to build a plan from"
			return report, nil
		}
		best := analysis.Recommendations[0]
		logging.LogRecommendation(logger, req.Symbol, best.Type, best.Price, best.Confidence)
	}

	report.Intent = intent.FromTradePlan(plan)
	if report.Intent == nil {
		report.SkipReason = "plan has no usable entry or stop"
		return report, nil
	}

	result, err := p.sizer.Size(report.Intent, req.Portfolio, p.capitalBucket())
	if err != nil {
		report.SkipReason = fmt.Sprintf("sizing: %v", err)
		return report, nil
	}
	report.Sizing = result
	logging.LogSizing(logger, req.Symbol, result.Quantity, result.RiskAmount, result.CapitalRequired)

	report.Recommendation = p.buildRecommendation(ctx, report, analysis, daily)
	report.Outcome = p.engine.Decide(ctx, decision.Input{
		Recommendation: report.Recommendation,
		Portfolio:      req.Portfolio,
		System:         req.System,
	})

	return report, nil
}

// capitalBucket maps the analysis style onto the portfolio capital bucket.
func (p *Pipeline) capitalBucket() string {
	if p.cfg.Analysis.Style == string(mtf.StyleLongTerm) {
		return portfolio.TimeframeLongTerm
	}
	return portfolio.TimeframeSwing
}

// derivePlan turns the best entry recommendation into a plan: stop two ATRs
// under the entry, target set for twice the risk.
func (p *Pipeline) derivePlan(symbol string, analysis *mtf.Result, daily []models.Candle) *intent.TradePlan {
	if len(analysis.Recommendations) == 0 {
		return nil
	}
	best := analysis.Recommendations[0]

	atr := 0.0
	if ta := analysis.Timeframes[mtf.Timeframe1Day]; ta != nil && ta.Indicators != nil {
		atr = ta.Indicators.ATR
	}
	if atr <= 0 {
		// Fall back to 2% of entry when the ATR never warmed up.
		atr = best.Price * 0.02
	}

	entry := best.Price
	stop := entry - 2*atr
	if stop <= 0 {
		return nil
	}

	return &intent.TradePlan{
		Symbol:      symbol,
		Bias:        models.BiasLong,
		Entry:       entry,
		StopLoss:    stop,
		Target:      entry + 2*(entry-stop),
		StrategyKey: best.Type,
	}
}

func (p *Pipeline) buildRecommendation(ctx context.Context, report *Report, analysis *mtf.Result, daily []models.Candle) *models.TradeRecommendation {
	confidence := analysis.Score
	if len(analysis.Recommendations) > 0 {
		confidence = analysis.Recommendations[0].Confidence
	}

	facts, err := indicators.TakeSnapshot(ctx, daily)
	if err != nil {
		facts = nil
	}

	return &models.TradeRecommendation{
		InstrumentID: report.Symbol,
		Entry:        report.Intent.Entry,
		Stop:         report.Intent.Stop,
		Targets:      report.Intent.Targets,
		Quantity:     report.Sizing.Quantity,
		RiskAmount:   report.Sizing.RiskAmount,
		Timeframe:    p.capitalBucket(),
		Confidence:   confidence,
		ExpectedRR:   report.Intent.ExpectedRR,
		Facts:        facts,
		CreatedAt:    time.Now(),
	}
}
