// Package intent converts strategy-specific trade plans into the normalized
// TradeIntent the sizing and decision stages consume. Adapters return nil for
// plans that cannot form an actionable intent; a nil intent is simply skipped
// downstream.
package intent

import "swing-trader/internal/models"

const defaultTargetProbability = 0.7

// TradePlan is a directional swing plan produced by a strategy.
type TradePlan struct {
	Symbol      string
	Bias        models.Bias
	Entry       float64
	StopLoss    float64
	Target      float64
	ExpectedRR  float64
	CapitalPct  float64
	RiskAmount  float64
	StrategyKey string
}

// AccumulationPlan is a long-term staged-buying plan defined by a buy zone
// rather than a single entry price.
type AccumulationPlan struct {
	Symbol      string
	BuyZoneLow  float64
	BuyZoneHigh float64
	StopLoss    float64
	StrategyKey string
}

// FromTradePlan normalizes a swing plan. Returns nil when the plan has no
// usable entry or stop.
func FromTradePlan(plan *TradePlan) *models.TradeIntent {
	if plan == nil || plan.Entry <= 0 || plan.StopLoss <= 0 {
		return nil
	}

	bias := plan.Bias
	if bias == "" {
		bias = models.BiasLong
	}

	var targets []models.Target
	if plan.Target > 0 {
		targets = append(targets, models.Target{Price: plan.Target, Probability: defaultTargetProbability})
	}

	rr := plan.ExpectedRR
	if rr <= 0 && plan.Target > 0 {
		rr = riskReward(plan.Entry, plan.StopLoss, plan.Target)
	}

	return &models.TradeIntent{
		Symbol:      plan.Symbol,
		Bias:        bias,
		Entry:       plan.Entry,
		Stop:        plan.StopLoss,
		Targets:     targets,
		ExpectedRR:  rr,
		SizingHint:  sizingHint(plan.CapitalPct, plan.RiskAmount),
		StrategyKey: plan.StrategyKey,
	}
}

// FromAccumulationPlan normalizes an accumulation plan: entry at the buy-zone
// midpoint, a single target at 1.5x entry, always long. Returns nil when the
// buy zone is absent or inverted.
func FromAccumulationPlan(plan *AccumulationPlan) *models.TradeIntent {
	if plan == nil || plan.BuyZoneLow <= 0 || plan.BuyZoneHigh < plan.BuyZoneLow {
		return nil
	}

	entry := (plan.BuyZoneLow + plan.BuyZoneHigh) / 2
	target := entry * 1.5

	rr := 1.5
	if plan.StopLoss > 0 && plan.StopLoss < entry {
		rr = riskReward(entry, plan.StopLoss, target)
	}

	stop := plan.StopLoss
	if stop <= 0 {
		// No explicit stop on a staged plan: anchor it below the zone.
		stop = plan.BuyZoneLow * 0.95
	}

	return &models.TradeIntent{
		Symbol:      plan.Symbol,
		Bias:        models.BiasLong,
		Entry:       entry,
		Stop:        stop,
		Targets:     []models.Target{{Price: target, Probability: defaultTargetProbability}},
		ExpectedRR:  rr,
		SizingHint:  models.SizeSmall,
		StrategyKey: plan.StrategyKey,
	}
}

// riskReward computes reward over risk for a long-shaped plan; both distances
// taken as magnitudes so short plans work symmetrically.
func riskReward(entry, stop, target float64) float64 {
	risk := entry - stop
	if risk < 0 {
		risk = -risk
	}
	reward := target - entry
	if reward < 0 {
		reward = -reward
	}
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// sizingHint maps a plan's capital or risk ask onto a coarse size preference.
// Either signal alone can raise the hint.
func sizingHint(capitalPct, riskAmount float64) models.SizingHint {
	hint := models.SizeSmall

	switch {
	case capitalPct >= 10:
		hint = models.SizeLarge
	case capitalPct >= 5:
		hint = models.SizeMedium
	}

	switch {
	case riskAmount >= 1000:
		hint = models.SizeLarge
	case riskAmount >= 500 && hint == models.SizeSmall:
		hint = models.SizeMedium
	}

	return hint
}
