// Package indicators computes the technical indicator set the analyzer and
// the pipeline consume. Outputs are aligned with the input bars; positions
// inside an indicator's warm-up window hold zero and callers treat zero as
// "unavailable".
package indicators

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"swing-trader/internal/models"
)

var (
	// ErrInsufficientData means the series is shorter than the warm-up window.
	ErrInsufficientData = errors.New("insufficient data for calculation")
	// ErrInvalidPeriod means an indicator was built with a non-positive period.
	ErrInvalidPeriod = errors.New("invalid period")
)

// Line is a single-valued indicator. Construct one with SMA, EMA, RSI, ROC
// or ATR; the zero value is invalid.
type Line struct {
	name    string
	warmup  int // minimum bars before Values succeeds; <=0 marks a bad period
	compute func(bars []models.Candle, out []float64)
}

// Name identifies the line, period included (e.g. "EMA_50").
func (l Line) Name() string { return l.name }

// Warmup is the minimum number of bars the line needs.
func (l Line) Warmup() int { return l.warmup }

// Values computes the line over bars.
func (l Line) Values(bars []models.Candle) ([]float64, error) {
	if l.warmup <= 0 {
		return nil, fmt.Errorf("%s: %w", l.name, ErrInvalidPeriod)
	}
	if len(bars) < l.warmup {
		return nil, fmt.Errorf("%s needs %d bars, have %d: %w", l.name, l.warmup, len(bars), ErrInsufficientData)
	}
	out := make([]float64, len(bars))
	l.compute(bars, out)
	return out, nil
}

// Band is a multi-valued indicator such as MACD or Bollinger bands.
type Band struct {
	name    string
	warmup  int
	compute func(bars []models.Candle) map[string][]float64
}

// Name identifies the band, parameters included (e.g. "MACD_12_26_9").
func (b Band) Name() string { return b.name }

// Warmup is the minimum number of bars the band needs.
func (b Band) Warmup() int { return b.warmup }

// Values computes every field of the band over bars.
func (b Band) Values(bars []models.Candle) (map[string][]float64, error) {
	if b.warmup <= 0 {
		return nil, fmt.Errorf("%s: %w", b.name, ErrInvalidPeriod)
	}
	if len(bars) < b.warmup {
		return nil, fmt.Errorf("%s needs %d bars, have %d: %w", b.name, b.warmup, len(bars), ErrInsufficientData)
	}
	return b.compute(bars), nil
}

// ResultSet holds the output of one Engine run, keyed by indicator name.
type ResultSet struct {
	lines map[string][]float64
	bands map[string]map[string][]float64
}

// Line returns the named line's values, or nil if it was not computed.
func (rs *ResultSet) Line(name string) []float64 {
	return rs.lines[name]
}

// Band returns one field of the named band, or nil if it was not computed.
func (rs *ResultSet) Band(name, field string) []float64 {
	if fields, ok := rs.bands[name]; ok {
		return fields[field]
	}
	return nil
}

// Last returns the most recent non-zero value of the named line, or 0 when
// the line was not computed or never left its warm-up window.
func (rs *ResultSet) Last(name string) float64 {
	return lastNonZero(rs.lines[name])
}

// LastOf returns the most recent non-zero value of one band field.
func (rs *ResultSet) LastOf(name, field string) float64 {
	return lastNonZero(rs.Band(name, field))
}

func lastNonZero(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != 0 {
			return values[i]
		}
	}
	return 0
}

// Engine runs a registered indicator set over a series with a bounded worker
// pool. Indicators whose warm-up exceeds the series length are skipped, not
// treated as failures of the whole run.
type Engine struct {
	workers int
	mu      sync.RWMutex
	lines   []Line
	bands   []Band
}

// NewEngine creates an empty engine; workers below 1 fall back to 4.
func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = 4
	}
	return &Engine{workers: workers}
}

// NewDefaultEngine returns an engine registered with the set the
// multi-timeframe analyzer and the snapshot consume.
func NewDefaultEngine() *Engine {
	e := NewEngine(4)
	e.Add(EMA(20), EMA(50), EMA(200), RSI(14), ATR(14), ROC(5))
	e.AddBands(MACD(12, 26, 9), ADX(14), SuperTrend(10, 3.0), Bollinger(20, 2.0))
	return e
}

// Add registers single-valued indicators.
func (e *Engine) Add(lines ...Line) {
	e.mu.Lock()
	e.lines = append(e.lines, lines...)
	e.mu.Unlock()
}

// AddBands registers multi-valued indicators.
func (e *Engine) AddBands(bands ...Band) {
	e.mu.Lock()
	e.bands = append(e.bands, bands...)
	e.mu.Unlock()
}

// Run computes every registered indicator over bars in parallel. The only
// error is context cancellation; individual indicator failures leave their
// name absent from the result set.
func (e *Engine) Run(ctx context.Context, bars []models.Candle) (*ResultSet, error) {
	e.mu.RLock()
	lines := append([]Line(nil), e.lines...)
	bands := append([]Band(nil), e.bands...)
	e.mu.RUnlock()

	rs := &ResultSet{
		lines: make(map[string][]float64, len(lines)),
		bands: make(map[string]map[string][]float64, len(bands)),
	}

	var setMu sync.Mutex
	jobs := make(chan func(), len(lines)+len(bands))

	for _, l := range lines {
		l := l
		jobs <- func() {
			if values, err := l.Values(bars); err == nil {
				setMu.Lock()
				rs.lines[l.Name()] = values
				setMu.Unlock()
			}
		}
	}
	for _, b := range bands {
		b := b
		jobs <- func() {
			if fields, err := b.Values(bars); err == nil {
				setMu.Lock()
				rs.bands[b.Name()] = fields
				setMu.Unlock()
			}
		}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				job()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
