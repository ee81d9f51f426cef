// Package decision gates trade recommendations through a short-circuiting
// stage chain: validation, risk rules, setup quality, then portfolio
// constraints. The first failing stage rejects; a panic anywhere rejects
// rather than approves.
package decision

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"swing-trader/internal/config"
	"swing-trader/internal/models"
	"swing-trader/internal/portfolio"
)

// Stage names recorded on outcomes and in the decision path.
const (
	StageDisabled   = "disabled"
	StageValidation = "validation"
	StageRiskRules  = "risk_rules"
	StageQuality    = "setup_quality"
	StagePortfolio  = "portfolio_constraints"
	StageApproved   = "approved"
	StageError      = "error"
)

// Circuit breaker thresholds. These are deliberately not configurable.
const (
	circuitBreakerDrawdownPct = 15.0
	circuitBreakerLossStreak  = 3
)

// Input carries a recommendation plus the read-only account views. Portfolio
// and System may be nil; checks that need them pass when they are absent.
type Input struct {
	Recommendation *models.TradeRecommendation
	Portfolio      portfolio.Portfolio
	System         portfolio.SystemContext
}

// Outcome is the engine's verdict on one recommendation.
type Outcome struct {
	Approved     bool
	Stage        string // stage that decided the outcome
	Reason       string
	DecisionPath []string // stages traversed, in order
	EvaluatedAt  time.Time
}

// QualityCheck judges whether a recommendation's setup is worth taking.
// It returns a reason when the setup fails.
type QualityCheck func(rec *models.TradeRecommendation) (string, bool)

// Engine evaluates recommendations against the configured rules.
type Engine struct {
	cfg     config.DecisionConfig
	quality QualityCheck
	logger  zerolog.Logger
}

// NewEngine creates an engine with the default quality check.
func NewEngine(cfg config.DecisionConfig, logger zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, quality: DefaultQualityCheck, logger: logger}
}

// NewEngineWithQuality creates an engine with a custom quality check.
func NewEngineWithQuality(cfg config.DecisionConfig, quality QualityCheck, logger zerolog.Logger) *Engine {
	if quality == nil {
		quality = DefaultQualityCheck
	}
	return &Engine{cfg: cfg, quality: quality, logger: logger}
}

// Decide runs the stage chain. Any panic inside a stage rejects the
// recommendation with the error stage.
func (e *Engine) Decide(ctx context.Context, input Input) (outcome *Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("decision stage panicked, rejecting")
			outcome = &Outcome{
				Approved:    false,
				Stage:       StageError,
				Reason:      fmt.Sprintf("internal error: %v", r),
				EvaluatedAt: time.Now(),
			}
		}
	}()

	if !e.cfg.Enabled {
		return &Outcome{
			Approved:     true,
			Stage:        StageDisabled,
			Reason:       "decision engine disabled, passing through",
			DecisionPath: []string{StageDisabled},
			EvaluatedAt:  time.Now(),
		}
	}

	outcome = &Outcome{EvaluatedAt: time.Now()}

	stages := []struct {
		name string
		run  func(Input) (string, bool)
	}{
		{StageValidation, e.validate},
		{StageRiskRules, e.riskRules},
		{StageQuality, e.setupQuality},
		{StagePortfolio, e.portfolioConstraints},
	}

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			outcome.Stage = StageError
			outcome.Reason = fmt.Sprintf("context cancelled: %v", err)
			return outcome
		}

		reason, ok := stage.run(input)
		outcome.DecisionPath = append(outcome.DecisionPath, fmt.Sprintf("%s: %s", stage.name, reason))
		if !ok {
			outcome.Stage = stage.name
			outcome.Reason = reason
			e.logRejection(input, outcome)
			return outcome
		}
	}

	outcome.Approved = true
	outcome.Stage = StageApproved
	outcome.Reason = "all checks passed"
	return outcome
}

// validate checks the recommendation's internal consistency and the
// configured reward and confidence floors.
func (e *Engine) validate(input Input) (string, bool) {
	rec := input.Recommendation
	if rec == nil {
		return "no recommendation supplied", false
	}
	if rec.Entry <= 0 || rec.Stop <= 0 {
		return fmt.Sprintf("non-positive price levels: entry=%.2f stop=%.2f", rec.Entry, rec.Stop), false
	}
	if rec.Entry == rec.Stop {
		return "entry and stop are equal", false
	}
	if rec.Quantity <= 0 {
		return fmt.Sprintf("non-positive quantity %d", rec.Quantity), false
	}
	if rec.RiskAmount <= 0 {
		return fmt.Sprintf("non-positive risk amount %.2f", rec.RiskAmount), false
	}
	if rec.ExpectedRR < e.cfg.MinRiskReward {
		return fmt.Sprintf("risk-reward %.2f below minimum %.2f", rec.ExpectedRR, e.cfg.MinRiskReward), false
	}
	if rec.Confidence < e.cfg.MinConfidence {
		return fmt.Sprintf("confidence %.1f below minimum %.1f", rec.Confidence, e.cfg.MinConfidence), false
	}
	return "recommendation structurally sound", true
}

// riskRules enforces the per-trade and cumulative daily risk budgets, the
// volatility cap and the account-level circuit breaker. Checks whose data is
// missing pass individually rather than failing the stage.
func (e *Engine) riskRules(input Input) (string, bool) {
	rec := input.Recommendation

	// Volatility check needs ATR; without it the check passes.
	if rec.Facts != nil && rec.Facts.ATR > 0 && rec.Facts.Close > 0 {
		volatilityPct := rec.Facts.ATR / rec.Facts.Close * 100
		if volatilityPct > e.cfg.MaxVolatilityPct {
			return fmt.Sprintf("volatility %.1f%% above maximum %.1f%%", volatilityPct, e.cfg.MaxVolatilityPct), false
		}
	}

	if input.Portfolio != nil {
		if equity := input.Portfolio.TotalEquity(); equity > 0 {
			tradePct := rec.RiskAmount / equity * 100
			if tradePct > e.cfg.MaxDailyRiskPct {
				return fmt.Sprintf("trade risk %.2f%% of equity exceeds the %.2f%% daily budget", tradePct, e.cfg.MaxDailyRiskPct), false
			}
			dailyPct := (input.Portfolio.RiskUsedToday() + rec.RiskAmount) / equity * 100
			if dailyPct > e.cfg.MaxDailyRiskPct {
				return fmt.Sprintf("daily risk would reach %.2f%%, budget is %.2f%%", dailyPct, e.cfg.MaxDailyRiskPct), false
			}
		}
	}

	if input.System != nil {
		if dd := input.System.DrawdownPct(); dd >= circuitBreakerDrawdownPct {
			return fmt.Sprintf("circuit breaker: drawdown %.1f%% at or above %.1f%%", dd, circuitBreakerDrawdownPct), false
		}
		if losses := input.System.ConsecutiveLosses(); losses >= circuitBreakerLossStreak {
			return fmt.Sprintf("circuit breaker: %d consecutive losses", losses), false
		}
	}

	return "risk within budget", true
}

func (e *Engine) setupQuality(input Input) (string, bool) {
	reason, ok := e.quality(input.Recommendation)
	if ok && reason == "" {
		reason = "setup quality acceptable"
	}
	return reason, ok
}

// portfolioConstraints enforces the per-symbol position cap and the capital
// required against the timeframe's capital bucket. Without a portfolio view
// both pass; a bucket reporting zero is treated as unknown, not empty.
func (e *Engine) portfolioConstraints(input Input) (string, bool) {
	if input.Portfolio == nil {
		return "no portfolio view, constraints not applicable", true
	}

	rec := input.Recommendation

	open := input.Portfolio.OpenPositions(rec.InstrumentID)
	if open >= e.cfg.MaxPositionsPerSymbol {
		return fmt.Sprintf("%d open positions in %s, maximum %d", open, rec.InstrumentID, e.cfg.MaxPositionsPerSymbol), false
	}

	required := rec.Entry * float64(rec.Quantity)
	if available := input.Portfolio.AvailableCapital(rec.Timeframe); available > 0 && required > available {
		return fmt.Sprintf("required capital %.2f exceeds available %.2f", required, available), false
	}

	return "portfolio constraints satisfied", true
}

func (e *Engine) logRejection(input Input, outcome *Outcome) {
	ev := e.logger.Info().
		Str("stage", outcome.Stage).
		Str("reason", outcome.Reason)
	if input.Recommendation != nil {
		ev = ev.Str("instrument", input.Recommendation.InstrumentID)
	}
	ev.Msg("recommendation rejected")
}

// DefaultQualityCheck requires at least one target on the profitable side of
// the entry and, when ATR is known, a stop at least half an ATR away.
func DefaultQualityCheck(rec *models.TradeRecommendation) (string, bool) {
	if len(rec.Targets) == 0 {
		return "no price targets", false
	}

	long := rec.Stop < rec.Entry
	targetOK := false
	for _, tgt := range rec.Targets {
		if long && tgt.Price > rec.Entry {
			targetOK = true
		}
		if !long && tgt.Price < rec.Entry {
			targetOK = true
		}
	}
	if !targetOK {
		return "no target beyond the entry in the trade direction", false
	}

	if rec.Facts != nil && rec.Facts.ATR > 0 {
		stopDistance := rec.Entry - rec.Stop
		if stopDistance < 0 {
			stopDistance = -stopDistance
		}
		if stopDistance < 0.5*rec.Facts.ATR {
			return fmt.Sprintf("stop distance %.2f tighter than half the ATR %.2f", stopDistance, rec.Facts.ATR), false
		}
	}

	return "", true
}
