// Package sizing computes share quantities for trade intents under a fixed
// per-trade risk budget, a per-position exposure cap, and the portfolio's
// available capital.
package sizing

import (
	"math"

	"github.com/rs/zerolog"

	"swing-trader/internal/config"
	"swing-trader/internal/errors"
	"swing-trader/internal/models"
	"swing-trader/internal/portfolio"
)

// Sizer turns a trade intent into a concrete quantity and risk figure.
type Sizer struct {
	cfg    config.SizingConfig
	logger zerolog.Logger
}

// NewSizer creates a sizer with the given risk budget.
func NewSizer(cfg config.SizingConfig, logger zerolog.Logger) *Sizer {
	return &Sizer{cfg: cfg, logger: logger}
}

// Size computes the position size for an intent.
//
// The quantity starts from the per-trade risk budget divided by the per-share
// risk, then shrinks under the exposure cap and the portfolio's available
// capital. A quantity that reaches zero is an error, never a zero-share
// result. The timeframe selects which capital bucket the portfolio offers.
func (s *Sizer) Size(it *models.TradeIntent, pf portfolio.Portfolio, timeframe string) (*models.SizingResult, error) {
	if it == nil {
		return nil, errors.NewValidationError("intent", nil, "intent is nil")
	}
	if it.Entry <= 0 {
		return nil, errors.NewSizingError(it.Symbol, it.Entry, it.Stop, errors.ErrInvalidPrice)
	}
	if it.Stop <= 0 {
		return nil, errors.NewSizingError(it.Symbol, it.Entry, it.Stop, errors.ErrInvalidPrice)
	}
	if it.Entry == it.Stop {
		return nil, errors.NewSizingError(it.Symbol, it.Entry, it.Stop, errors.ErrEqualEntryStop)
	}

	riskPerShare := math.Abs(it.Entry - it.Stop)
	quantity := int64(s.cfg.RiskPerTradeAmount / riskPerShare)

	if s.cfg.MaxPositionExposureAmount > 0 {
		maxByExposure := int64(s.cfg.MaxPositionExposureAmount / it.Entry)
		if maxByExposure < quantity {
			quantity = maxByExposure
		}
	}

	if pf != nil {
		available := pf.AvailableCapital(timeframe)
		maxByCapital := int64(available / it.Entry)
		if maxByCapital < quantity {
			quantity = maxByCapital
		}
	}

	if quantity <= 0 {
		return nil, errors.NewSizingError(it.Symbol, it.Entry, it.Stop, errors.ErrZeroQuantity)
	}

	result := &models.SizingResult{
		Quantity:        quantity,
		CapitalRequired: float64(quantity) * it.Entry,
		RiskAmount:      riskPerShare * float64(quantity),
		RiskPerShare:    riskPerShare,
	}

	if pf != nil {
		if equity := pf.TotalEquity(); equity > 0 {
			result.RiskPercentage = result.RiskAmount / equity * 100
		}
	}

	s.logger.Debug().
		Str("symbol", it.Symbol).
		Int64("quantity", result.Quantity).
		Float64("risk_amount", result.RiskAmount).
		Float64("capital_required", result.CapitalRequired).
		Msg("position sized")

	return result, nil
}
