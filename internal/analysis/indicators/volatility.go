package indicators

import (
	"fmt"
	"math"

	"swing-trader/internal/models"
)

// ATR is the Wilder-smoothed average true range.
func ATR(period int) Line {
	warmup := period + 1
	if period <= 0 {
		warmup = 0
	}
	return Line{
		name:   fmt.Sprintf("ATR_%d", period),
		warmup: warmup,
		compute: func(bars []models.Candle, out []float64) {
			tr := make([]float64, len(bars))
			tr[0] = bars[0].High - bars[0].Low
			for i := 1; i < len(bars); i++ {
				tr[i] = trueRange(bars[i], bars[i-1])
			}
			rmaInto(tr, period, out)
		},
	}
}

// Bollinger is the SMA of closes with bands width standard deviations away,
// computed from running sums of closes and their squares.
func Bollinger(period int, width float64) Band {
	warmup := period
	if period <= 0 || width <= 0 {
		warmup = 0
	}
	return Band{
		name:   fmt.Sprintf("BollingerBands_%d_%.1f", period, width),
		warmup: warmup,
		compute: func(bars []models.Candle) map[string][]float64 {
			n := len(bars)
			middle := make([]float64, n)
			upper := make([]float64, n)
			lower := make([]float64, n)

			var sum, sumSq float64
			for i, c := range bars {
				sum += c.Close
				sumSq += c.Close * c.Close
				if i >= period {
					old := bars[i-period].Close
					sum -= old
					sumSq -= old * old
				}
				if i < period-1 {
					continue
				}

				mean := sum / float64(period)
				variance := sumSq/float64(period) - mean*mean
				if variance < 0 {
					variance = 0 // round-off on flat windows
				}
				dev := width * math.Sqrt(variance)

				middle[i] = mean
				upper[i] = mean + dev
				lower[i] = mean - dev
			}

			return map[string][]float64{
				"middle": middle,
				"upper":  upper,
				"lower":  lower,
			}
		},
	}
}

// SuperTrend tracks an ATR band that flips between resistance above price
// and support below it. Direction is -1 while price holds under the upper
// band and 1 after a close breaks above it.
func SuperTrend(period int, multiplier float64) Band {
	warmup := period + 1
	if period <= 0 || multiplier <= 0 {
		warmup = 0
	}
	return Band{
		name:   fmt.Sprintf("SuperTrend_%d_%.1f", period, multiplier),
		warmup: warmup,
		compute: func(bars []models.Candle) map[string][]float64 {
			n := len(bars)
			tr := make([]float64, n)
			tr[0] = bars[0].High - bars[0].Low
			for i := 1; i < n; i++ {
				tr[i] = trueRange(bars[i], bars[i-1])
			}
			atr := make([]float64, n)
			rmaInto(tr, period, atr)

			line := make([]float64, n)
			direction := make([]float64, n)

			var prevUpper, prevLower float64
			bearish := true // start on the upper band until a close breaks it

			for i := period - 1; i < n; i++ {
				mid := (bars[i].High + bars[i].Low) / 2
				upper := mid + multiplier*atr[i]
				lower := mid - multiplier*atr[i]

				if i > period-1 {
					// Bands ratchet: never widen against an open trend.
					if lower < prevLower && bars[i-1].Close > prevLower {
						lower = prevLower
					}
					if upper > prevUpper && bars[i-1].Close < prevUpper {
						upper = prevUpper
					}

					if bearish && bars[i].Close > upper {
						bearish = false
					} else if !bearish && bars[i].Close < lower {
						bearish = true
					}
				}

				if bearish {
					line[i] = upper
					direction[i] = -1
				} else {
					line[i] = lower
					direction[i] = 1
				}
				prevUpper, prevLower = upper, lower
			}

			return map[string][]float64{
				"supertrend": line,
				"direction":  direction,
			}
		},
	}
}
