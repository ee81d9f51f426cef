package structure

import "swing-trader/internal/models"

// DetectFVGs finds fair value gaps across every consecutive candle triple.
// A bullish gap exists when the third candle's low clears the first candle's
// high and the middle candle's body does not bridge the gap; bearish is the
// mirror. Filled is set when any later candle's range overlaps the gap.
func DetectFVGs(candles []models.Candle) []FairValueGap {
	if len(candles) < 3 {
		return nil
	}

	var gaps []FairValueGap

	for i := 0; i+2 < len(candles); i++ {
		c1 := candles[i]
		c2 := candles[i+1]
		c3 := candles[i+2]

		bodyLow := min(c2.Open, c2.Close)
		bodyHigh := max(c2.Open, c2.Close)

		if c3.Low > c1.High {
			bridged := bodyLow <= c1.High && bodyHigh >= c3.Low
			if !bridged {
				gaps = append(gaps, FairValueGap{
					Direction: models.Bullish,
					Index:     i,
					GapHigh:   c3.Low,
					GapLow:    c1.High,
					Filled:    gapFilled(candles[i+3:], c1.High, c3.Low),
				})
			}
		}

		if c3.High < c1.Low {
			bridged := bodyHigh >= c1.Low && bodyLow <= c3.High
			if !bridged {
				gaps = append(gaps, FairValueGap{
					Direction: models.Bearish,
					Index:     i,
					GapHigh:   c1.Low,
					GapLow:    c3.High,
					Filled:    gapFilled(candles[i+3:], c3.High, c1.Low),
				})
			}
		}
	}

	return gaps
}

// gapFilled reports whether any candle's range overlaps [gapLow, gapHigh].
func gapFilled(later []models.Candle, gapLow, gapHigh float64) bool {
	for _, c := range later {
		if c.Low <= gapHigh && c.High >= gapLow {
			return true
		}
	}
	return false
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
