package structure

import "swing-trader/internal/models"

// DetectBOS finds a break of structure at the latest candle: bullish when its
// high exceeds the most recent unbroken swing high, bearish when its low
// undercuts the most recent unbroken swing low. Returns nil when the series
// is shorter than lookback+5 or no break occurred.
func DetectBOS(candles []models.Candle, lookback int) *BreakOfStructure {
	if lookback <= 0 || len(candles) < lookback+5 {
		return nil
	}

	n := len(candles)
	latest := candles[n-1]

	if level, ok := lastUnbrokenHigh(candles, lookback); ok && latest.High > level {
		return &BreakOfStructure{
			Direction:  models.Bullish,
			Index:      n - 1,
			BreakLevel: level,
			Confirmed:  latest.Close > level,
		}
	}

	if level, ok := lastUnbrokenLow(candles, lookback); ok && latest.Low < level {
		return &BreakOfStructure{
			Direction:  models.Bearish,
			Index:      n - 1,
			BreakLevel: level,
			Confirmed:  latest.Close < level,
		}
	}

	return nil
}

// lastUnbrokenHigh returns the most recent swing-high level that no candle
// between the swing and the latest bar has exceeded.
func lastUnbrokenHigh(candles []models.Candle, lookback int) (float64, bool) {
	n := len(candles)
	highs := swingHighs(candles[:n-1], lookback)

	for k := len(highs) - 1; k >= 0; k-- {
		idx := highs[k]
		level := candles[idx].High
		broken := false
		for i := idx + 1; i < n-1; i++ {
			if candles[i].High > level {
				broken = true
				break
			}
		}
		if !broken {
			return level, true
		}
	}
	return 0, false
}

// lastUnbrokenLow returns the most recent swing-low level that no candle
// between the swing and the latest bar has undercut.
func lastUnbrokenLow(candles []models.Candle, lookback int) (float64, bool) {
	n := len(candles)
	lows := swingLows(candles[:n-1], lookback)

	for k := len(lows) - 1; k >= 0; k-- {
		idx := lows[k]
		level := candles[idx].Low
		broken := false
		for i := idx + 1; i < n-1; i++ {
			if candles[i].Low < level {
				broken = true
				break
			}
		}
		if !broken {
			return level, true
		}
	}
	return 0, false
}
