package indicators

import (
	"fmt"
	"math"

	"swing-trader/internal/models"
)

// RSI is Wilder's relative strength index over close-to-close changes.
// With no losses in the window it pins at 100, with no gains at 0.
func RSI(period int) Line {
	warmup := period + 1
	if period <= 0 {
		warmup = 0
	}
	return Line{
		name:   fmt.Sprintf("RSI_%d", period),
		warmup: warmup,
		compute: func(bars []models.Candle, out []float64) {
			var avgGain, avgLoss float64
			for i := 1; i < len(bars); i++ {
				var gain, loss float64
				if change := bars[i].Close - bars[i-1].Close; change > 0 {
					gain = change
				} else {
					loss = -change
				}

				switch {
				case i < period:
					avgGain += gain
					avgLoss += loss
					continue
				case i == period:
					avgGain = (avgGain + gain) / float64(period)
					avgLoss = (avgLoss + loss) / float64(period)
				default:
					avgGain = (avgGain*float64(period-1) + gain) / float64(period)
					avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
				}

				if avgLoss == 0 {
					out[i] = 100
				} else {
					out[i] = 100 - 100/(1+avgGain/avgLoss)
				}
			}
		},
	}
}

// ROC is the close-to-close rate of change over period bars, in percent.
func ROC(period int) Line {
	warmup := period + 1
	if period <= 0 {
		warmup = 0
	}
	return Line{
		name:   fmt.Sprintf("ROC_%d", period),
		warmup: warmup,
		compute: func(bars []models.Candle, out []float64) {
			for i := period; i < len(bars); i++ {
				if base := bars[i-period].Close; base != 0 {
					out[i] = 100 * (bars[i].Close - base) / base
				}
			}
		},
	}
}

// ADX is the average directional index with its +DI and -DI components,
// all Wilder-smoothed. Warm-up is two full periods: one for the directional
// movement averages, one for the index itself.
func ADX(period int) Band {
	warmup := 2 * period
	if period <= 0 {
		warmup = 0
	}
	return Band{
		name:   fmt.Sprintf("ADX_%d", period),
		warmup: warmup,
		compute: func(bars []models.Candle) map[string][]float64 {
			n := len(bars)
			plusDM := make([]float64, n)
			minusDM := make([]float64, n)
			tr := make([]float64, n)

			for i := 1; i < n; i++ {
				up := bars[i].High - bars[i-1].High
				down := bars[i-1].Low - bars[i].Low
				if up > down && up > 0 {
					plusDM[i] = up
				}
				if down > up && down > 0 {
					minusDM[i] = down
				}
				tr[i] = trueRange(bars[i], bars[i-1])
			}

			trS := make([]float64, n)
			plusS := make([]float64, n)
			minusS := make([]float64, n)
			rmaInto(tr, period, trS)
			rmaInto(plusDM, period, plusS)
			rmaInto(minusDM, period, minusS)

			plusDI := make([]float64, n)
			minusDI := make([]float64, n)
			dx := make([]float64, n)
			for i := period; i < n; i++ {
				if trS[i] > 0 {
					plusDI[i] = 100 * plusS[i] / trS[i]
					minusDI[i] = 100 * minusS[i] / trS[i]
				}
				if diSum := plusDI[i] + minusDI[i]; diSum > 0 {
					dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / diSum
				}
			}

			adx := make([]float64, n)
			rmaInto(dx[period:], period, adx[period:])

			return map[string][]float64{
				"adx":      adx,
				"plus_di":  plusDI,
				"minus_di": minusDI,
			}
		},
	}
}
