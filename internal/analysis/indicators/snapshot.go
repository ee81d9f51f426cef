package indicators

import (
	"context"

	"swing-trader/internal/models"
)

// TakeSnapshot computes the default indicator set over a series and returns
// the facts for its latest bar. Indicators whose warm-up exceeds the series
// length leave their facts at zero; callers treat zero as "unavailable".
func TakeSnapshot(ctx context.Context, candles []models.Candle) (*models.IndicatorFacts, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	rs, err := NewDefaultEngine().Run(ctx, candles)
	if err != nil {
		return nil, err
	}

	last := len(candles) - 1
	facts := &models.IndicatorFacts{
		Close:  candles[last].Close,
		EMA20:  rs.Last("EMA_20"),
		EMA50:  rs.Last("EMA_50"),
		EMA200: rs.Last("EMA_200"),
		RSI:    rs.Last("RSI_14"),
		ATR:    rs.Last("ATR_14"),
		ADX:    rs.LastOf("ADX_14", "adx"),
	}

	if spread := rs.Band("MACD_12_26_9", "macd"); spread != nil {
		facts.MACD = spread[last]
		facts.MACDSignal = rs.Band("MACD_12_26_9", "signal")[last]
		facts.MACDHistogram = rs.Band("MACD_12_26_9", "histogram")[last]
	}
	if dir := rs.Band("SuperTrend_10_3.0", "direction"); dir != nil {
		facts.SupertrendDir = dir[last]
	}
	if upper := rs.Band("BollingerBands_20_2.0", "upper"); upper != nil {
		facts.BollUpper = upper[last]
		facts.BollMiddle = rs.Band("BollingerBands_20_2.0", "middle")[last]
		facts.BollLower = rs.Band("BollingerBands_20_2.0", "lower")[last]
	}

	return facts, nil
}
