package indicators

import "swing-trader/internal/models"

func closes(bars []models.Candle) []float64 {
	out := make([]float64, len(bars))
	for i, c := range bars {
		out[i] = c.Close
	}
	return out
}

// trueRange is the largest of the bar's own range and the gaps against the
// previous close.
func trueRange(cur, prev models.Candle) float64 {
	r := cur.High - cur.Low
	if gap := cur.High - prev.Close; gap > r {
		r = gap
	}
	if gap := prev.Close - cur.Low; gap > r {
		r = gap
	}
	return r
}

// rmaInto writes Wilder's smoothed average of values into out: seeded with
// the plain mean of the first period values, then blended with weight
// 1/period. Positions before the seed stay zero.
func rmaInto(values []float64, period int, out []float64) {
	if len(values) < period {
		return
	}
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	out[period-1] = seed / float64(period)

	w := 1.0 / float64(period)
	for i := period; i < len(values); i++ {
		out[i] = out[i-1] + w*(values[i]-out[i-1])
	}
}
