package mtf

import (
	"sort"

	"swing-trader/internal/models"
)

const (
	maxLevelsPerSide = 5
	pivotSpan        = 2 // bars on each side of a pivot
)

// pivotLevels returns swing-high and swing-low prices using 5-bar pivots:
// a bar whose high (low) strictly exceeds (undercuts) both neighbors on each
// side. Levels come back in chronological order.
func pivotLevels(candles []models.Candle) (highs, lows []float64) {
	n := len(candles)
	for i := pivotSpan; i < n-pivotSpan; i++ {
		isHigh, isLow := true, true
		for j := 1; j <= pivotSpan; j++ {
			if candles[i].High <= candles[i-j].High || candles[i].High <= candles[i+j].High {
				isHigh = false
			}
			if candles[i].Low >= candles[i-j].Low || candles[i].Low >= candles[i+j].Low {
				isLow = false
			}
		}
		if isHigh {
			highs = append(highs, candles[i].High)
		}
		if isLow {
			lows = append(lows, candles[i].Low)
		}
	}
	return highs, lows
}

// buildLevels collects support and resistance levels from the daily and
// weekly swings plus the three most recent hourly swings on each side, then
// keeps the five levels nearest to the current price per side. Supports come
// back descending, resistances ascending.
func buildLevels(result *Result, candlesByTimeframe map[Timeframe][]models.Candle) {
	price := currentPrice(result)
	if price == 0 {
		return
	}

	var candidates []float64
	for _, tf := range []Timeframe{Timeframe1Day, Timeframe1Week} {
		if ta, ok := result.Timeframes[tf]; ok && ta != nil && ta.Error == nil {
			candidates = append(candidates, ta.swingHighs...)
			candidates = append(candidates, ta.swingLows...)
		}
	}
	if ta, ok := result.Timeframes[Timeframe1Hour]; ok && ta != nil && ta.Error == nil {
		candidates = append(candidates, lastN(ta.swingHighs, 3)...)
		candidates = append(candidates, lastN(ta.swingLows, 3)...)
	}

	var supports, resistances []float64
	for _, level := range candidates {
		if level <= 0 {
			continue
		}
		if level < price {
			supports = append(supports, level)
		} else if level > price {
			resistances = append(resistances, level)
		}
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)

	supports = dedupe(supports)
	resistances = dedupe(resistances)
	result.SupportLevels = supports[:minInt(maxLevelsPerSide, len(supports))]
	result.ResistanceLevels = resistances[:minInt(maxLevelsPerSide, len(resistances))]
}

// currentPrice prefers the daily close, falling back to any timeframe that
// produced indicators.
func currentPrice(result *Result) float64 {
	if ta, ok := result.Timeframes[Timeframe1Day]; ok && ta != nil && ta.Indicators != nil {
		return ta.Indicators.Close
	}
	for _, tf := range AllTimeframes() {
		if ta, ok := result.Timeframes[tf]; ok && ta != nil && ta.Indicators != nil {
			return ta.Indicators.Close
		}
	}
	return 0
}

func lastN(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func dedupe(sorted []float64) []float64 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
