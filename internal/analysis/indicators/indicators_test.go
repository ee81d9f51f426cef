package indicators

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"swing-trader/internal/models"
)

// series builds candles from closing prices with a fixed 2-point range
// around each close and hourly spacing.
func series(closes ...float64) []models.Candle {
	base := time.Date(2025, 6, 2, 9, 15, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		candles[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    10000,
		}
	}
	return candles
}

// rampSeries builds n candles whose closes rise by step each bar.
func rampSeries(n int, start, step float64) []models.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return series(closes...)
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestSMA(t *testing.T) {
	values, err := SMA(3).Values(series(10, 20, 30, 40, 50))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	want := []float64{0, 0, 20, 30, 40}
	for i := range want {
		if !almostEqual(values[i], want[i], 1e-9) {
			t.Errorf("SMA[%d] = %v, want %v", i, values[i], want[i])
		}
	}
}

func TestEMA(t *testing.T) {
	// Seeded with the SMA of the first 3 closes, alpha 0.5.
	values, err := EMA(3).Values(series(10, 20, 30, 40, 50))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if !almostEqual(values[2], 20, 1e-9) {
		t.Errorf("EMA seed = %v, want 20", values[2])
	}
	if !almostEqual(values[3], 30, 1e-9) {
		t.Errorf("EMA[3] = %v, want 30", values[3])
	}
	if !almostEqual(values[4], 40, 1e-9) {
		t.Errorf("EMA[4] = %v, want 40", values[4])
	}
}

func TestRSI_Extremes(t *testing.T) {
	t.Run("all gains pins at 100", func(t *testing.T) {
		values, err := RSI(14).Values(rampSeries(40, 100, 1))
		if err != nil {
			t.Fatalf("Values: %v", err)
		}
		if got := values[len(values)-1]; got != 100 {
			t.Errorf("RSI = %v, want 100 on a monotone rise", got)
		}
	})

	t.Run("all losses pins at 0", func(t *testing.T) {
		values, err := RSI(14).Values(rampSeries(40, 200, -1))
		if err != nil {
			t.Fatalf("Values: %v", err)
		}
		if got := values[len(values)-1]; !almostEqual(got, 0, 1e-9) {
			t.Errorf("RSI = %v, want 0 on a monotone fall", got)
		}
	})
}

func TestROC(t *testing.T) {
	values, err := ROC(2).Values(series(100, 105, 110, 99))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if !almostEqual(values[2], 10, 1e-9) {
		t.Errorf("ROC[2] = %v, want 10", values[2])
	}
	wantLast := 100 * (99.0 - 105.0) / 105.0
	if !almostEqual(values[3], wantLast, 1e-9) {
		t.Errorf("ROC[3] = %v, want %v", values[3], wantLast)
	}
}

func TestATR_ConstantRange(t *testing.T) {
	// Flat closes with a fixed 2-point high-low range: every true range is 2,
	// so the smoothed ATR stays at 2.
	values, err := ATR(5).Values(rampSeries(8, 100, 0))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if got := values[len(values)-1]; !almostEqual(got, 2, 1e-9) {
		t.Errorf("ATR = %v, want 2", got)
	}
}

func TestMACD_FlatSeriesIsZero(t *testing.T) {
	result, err := MACD(12, 26, 9).Values(rampSeries(60, 500, 0))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if got := result["macd"][59]; !almostEqual(got, 0, 1e-9) {
		t.Errorf("macd = %v, want 0 on a flat series", got)
	}
	if got := result["histogram"][59]; !almostEqual(got, 0, 1e-9) {
		t.Errorf("histogram = %v, want 0 on a flat series", got)
	}
}

func TestSuperTrend_TrendDirection(t *testing.T) {
	t.Run("sustained rise flips bullish", func(t *testing.T) {
		result, err := SuperTrend(10, 3.0).Values(rampSeries(60, 100, 2))
		if err != nil {
			t.Fatalf("Values: %v", err)
		}
		dir := result["direction"]
		if got := dir[len(dir)-1]; got != 1 {
			t.Errorf("direction = %v, want 1 in a sustained uptrend", got)
		}
	})

	t.Run("sustained fall stays bearish", func(t *testing.T) {
		result, err := SuperTrend(10, 3.0).Values(rampSeries(60, 300, -2))
		if err != nil {
			t.Fatalf("Values: %v", err)
		}
		dir := result["direction"]
		if got := dir[len(dir)-1]; got != -1 {
			t.Errorf("direction = %v, want -1 in a sustained downtrend", got)
		}
	})
}

func TestBollinger_Ordering(t *testing.T) {
	result, err := Bollinger(20, 2.0).Values(rampSeries(50, 100, 1.5))
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	for i := 19; i < 50; i++ {
		if result["upper"][i] < result["middle"][i] || result["middle"][i] < result["lower"][i] {
			t.Fatalf("band ordering violated at %d: upper=%v middle=%v lower=%v",
				i, result["upper"][i], result["middle"][i], result["lower"][i])
		}
	}
}

func TestInsufficientData(t *testing.T) {
	short := series(100, 101, 102)

	cases := []struct {
		name string
		err  error
	}{
		{"SMA", func() error { _, err := SMA(10).Values(short); return err }()},
		{"EMA", func() error { _, err := EMA(10).Values(short); return err }()},
		{"RSI", func() error { _, err := RSI(14).Values(short); return err }()},
		{"ATR", func() error { _, err := ATR(14).Values(short); return err }()},
		{"ROC", func() error { _, err := ROC(5).Values(short); return err }()},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, ErrInsufficientData) {
			t.Errorf("%s: err = %v, want ErrInsufficientData", tc.name, tc.err)
		}
	}
}

func TestInvalidPeriod(t *testing.T) {
	if _, err := EMA(0).Values(series(100, 101)); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("EMA(0): err = %v, want ErrInvalidPeriod", err)
	}
	if _, err := Bollinger(20, 0).Values(rampSeries(30, 100, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("Bollinger width 0: err = %v, want ErrInvalidPeriod", err)
	}
	if _, err := MACD(26, 12, 9).Values(rampSeries(60, 100, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("inverted MACD periods: err = %v, want ErrInvalidPeriod", err)
	}
}

func TestEngine_Run(t *testing.T) {
	rs, err := NewDefaultEngine().Run(context.Background(), rampSeries(250, 100, 0.5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, name := range []string{"EMA_20", "EMA_50", "EMA_200", "RSI_14", "ATR_14", "ROC_5"} {
		if rs.Line(name) == nil {
			t.Errorf("missing line %s", name)
		}
	}
	for name, field := range map[string]string{
		"MACD_12_26_9":          "macd",
		"ADX_14":                "adx",
		"SuperTrend_10_3.0":     "direction",
		"BollingerBands_20_2.0": "upper",
	} {
		if rs.Band(name, field) == nil {
			t.Errorf("missing band %s", name)
		}
	}
}

func TestEngine_Run_SkipsColdIndicators(t *testing.T) {
	// 60 bars satisfies the short-period indicators but not EMA_200.
	rs, err := NewDefaultEngine().Run(context.Background(), rampSeries(60, 100, 0.5))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rs.Line("EMA_200") != nil {
		t.Error("EMA_200 should be skipped on 60 bars")
	}
	if rs.Line("EMA_20") == nil {
		t.Error("EMA_20 should still be present on 60 bars")
	}
}

func TestEngine_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewDefaultEngine().Run(ctx, rampSeries(250, 100, 0.5)); err == nil {
		t.Error("want error from a cancelled context")
	}
}

func TestResultSet_Last(t *testing.T) {
	rs := &ResultSet{lines: map[string][]float64{
		"EMA_20": {0, 0, 3.5, 0},
		"flat":   {0, 0},
	}}
	if got := rs.Last("EMA_20"); got != 3.5 {
		t.Errorf("Last = %v, want 3.5", got)
	}
	if got := rs.Last("flat"); got != 0 {
		t.Errorf("Last = %v, want 0 when nothing warmed up", got)
	}
	if got := rs.Last("absent"); got != 0 {
		t.Errorf("Last = %v, want 0 for a missing line", got)
	}
}

func TestTakeSnapshot(t *testing.T) {
	candles := rampSeries(250, 100, 0.5)

	facts, err := TakeSnapshot(context.Background(), candles)
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}

	last := candles[len(candles)-1].Close
	if facts.Close != last {
		t.Errorf("Close = %v, want %v", facts.Close, last)
	}
	if facts.EMA20 <= 0 || facts.EMA50 <= 0 || facts.EMA200 <= 0 {
		t.Errorf("EMAs not populated: %v %v %v", facts.EMA20, facts.EMA50, facts.EMA200)
	}
	// A steady rise keeps the short EMA above the long ones.
	if !(facts.EMA20 > facts.EMA50 && facts.EMA50 > facts.EMA200) {
		t.Errorf("EMA ordering in an uptrend: 20=%v 50=%v 200=%v", facts.EMA20, facts.EMA50, facts.EMA200)
	}
	if facts.RSI <= 0 || facts.RSI > 100 {
		t.Errorf("RSI = %v, want (0, 100]", facts.RSI)
	}
	if facts.ATR <= 0 {
		t.Errorf("ATR = %v, want positive", facts.ATR)
	}
	if facts.SupertrendDir != 1 {
		t.Errorf("SupertrendDir = %v, want 1 in an uptrend", facts.SupertrendDir)
	}
	if facts.BollUpper < facts.BollMiddle || facts.BollMiddle < facts.BollLower {
		t.Errorf("band ordering: upper=%v middle=%v lower=%v", facts.BollUpper, facts.BollMiddle, facts.BollLower)
	}
}

func TestTakeSnapshot_ShortSeries(t *testing.T) {
	// 60 bars: the 200-period EMA cannot warm up, so the fact stays zero.
	facts, err := TakeSnapshot(context.Background(), rampSeries(60, 100, 0.5))
	if err != nil {
		t.Fatalf("TakeSnapshot: %v", err)
	}
	if facts.EMA200 != 0 {
		t.Errorf("EMA200 = %v, want 0 on 60 bars", facts.EMA200)
	}
	if facts.EMA20 == 0 {
		t.Error("EMA20 should be available on 60 bars")
	}
}

func TestTakeSnapshot_Empty(t *testing.T) {
	if _, err := TakeSnapshot(context.Background(), nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
