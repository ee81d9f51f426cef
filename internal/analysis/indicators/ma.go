package indicators

import (
	"fmt"

	"swing-trader/internal/models"
)

// SMA is a simple moving average of closes over period bars.
func SMA(period int) Line {
	return Line{
		name:   fmt.Sprintf("SMA_%d", period),
		warmup: period,
		compute: func(bars []models.Candle, out []float64) {
			var window float64
			for i, c := range bars {
				window += c.Close
				if i >= period {
					window -= bars[i-period].Close
				}
				if i >= period-1 {
					out[i] = window / float64(period)
				}
			}
		},
	}
}

// EMA is an exponential moving average of closes, seeded with the mean of
// the first period bars.
func EMA(period int) Line {
	return Line{
		name:   fmt.Sprintf("EMA_%d", period),
		warmup: period,
		compute: func(bars []models.Candle, out []float64) {
			emaInto(closes(bars), period, out)
		},
	}
}

func emaInto(values []float64, period int, out []float64) {
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	out[period-1] = seed / float64(period)

	alpha := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
}

// MACD is the fast-minus-slow EMA spread with a signal EMA over the spread
// and their difference as histogram. Conventional periods are (12, 26, 9).
func MACD(fast, slow, signal int) Band {
	warmup := slow + signal - 1
	if fast <= 0 || slow <= 0 || signal <= 0 || fast >= slow {
		warmup = 0
	}
	return Band{
		name:   fmt.Sprintf("MACD_%d_%d_%d", fast, slow, signal),
		warmup: warmup,
		compute: func(bars []models.Candle) map[string][]float64 {
			n := len(bars)
			c := closes(bars)

			fastEMA := make([]float64, n)
			slowEMA := make([]float64, n)
			emaInto(c, fast, fastEMA)
			emaInto(c, slow, slowEMA)

			spread := make([]float64, n)
			for i := slow - 1; i < n; i++ {
				spread[i] = fastEMA[i] - slowEMA[i]
			}

			// Signal warms up over the spread, which itself starts at slow-1.
			sig := make([]float64, n)
			emaInto(spread[slow-1:], signal, sig[slow-1:])

			hist := make([]float64, n)
			for i := warmup - 1; i < n; i++ {
				hist[i] = spread[i] - sig[i]
			}

			return map[string][]float64{
				"macd":      spread,
				"signal":    sig,
				"histogram": hist,
			}
		},
	}
}
