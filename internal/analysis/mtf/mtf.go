// Package mtf provides multi-timeframe analysis: per-timeframe trend and
// momentum scoring, style-weighted aggregation, cross-timeframe alignment,
// support/resistance extraction and entry recommendations.
package mtf

import (
	"context"
	"fmt"
	"math"
	"sync"

	"swing-trader/internal/analysis/indicators"
	"swing-trader/internal/models"
)

// Timeframe represents a trading timeframe.
type Timeframe string

const (
	Timeframe15Min Timeframe = "15minute"
	Timeframe1Hour Timeframe = "60minute"
	Timeframe1Day  Timeframe = "day"
	Timeframe1Week Timeframe = "week"
)

// AllTimeframes returns all supported timeframes, intraday first.
func AllTimeframes() []Timeframe {
	return []Timeframe{Timeframe15Min, Timeframe1Hour, Timeframe1Day, Timeframe1Week}
}

// Style selects the timeframe weighting profile.
type Style string

const (
	StyleSwing    Style = "swing"
	StyleLongTerm Style = "longterm"
)

// minBars is the minimum candle count per timeframe before analysis runs.
var minBars = map[Timeframe]int{
	Timeframe15Min: 50,
	Timeframe1Hour: 30,
	Timeframe1Day:  50,
	Timeframe1Week: 20,
}

// styleWeights returns the per-timeframe weights for a style. Long-term
// analysis ignores the 15-minute chart entirely.
func styleWeights(style Style) map[Timeframe]float64 {
	if style == StyleLongTerm {
		return map[Timeframe]float64{
			Timeframe1Week: 0.40,
			Timeframe1Day:  0.35,
			Timeframe1Hour: 0.25,
			Timeframe15Min: 0.0,
		}
	}
	return map[Timeframe]float64{
		Timeframe1Week: 0.20,
		Timeframe1Day:  0.40,
		Timeframe1Hour: 0.25,
		Timeframe15Min: 0.15,
	}
}

// TimeframeAnalysis contains analysis results for a single timeframe.
type TimeframeAnalysis struct {
	Timeframe         Timeframe
	Indicators        *models.IndicatorFacts
	TrendScore        float64
	MomentumScore     float64
	TrendDirection    models.Direction
	MomentumDirection models.Direction
	HigherHighs       bool
	HigherLows        bool
	TrendSlopePct     float64
	CandleCount       int
	Error             error

	swingHighs []float64
	swingLows  []float64
}

// Alignment summarizes directional agreement across contributing timeframes.
type Alignment struct {
	Aligned      bool
	Direction    models.Direction
	BullishCount int
	BearishCount int
	NeutralCount int
}

// Result contains the complete multi-timeframe analysis.
type Result struct {
	Symbol            string
	Style             Style
	Timeframes        map[Timeframe]*TimeframeAnalysis
	Score             float64 // weighted combined score, 0..100
	TrendAlignment    Alignment
	MomentumAlignment Alignment
	SupportLevels     []float64
	ResistanceLevels  []float64
	Recommendations   []EntryRecommendation
}

// Analyzer performs multi-timeframe analysis over pre-fetched candle data.
type Analyzer struct {
	style Style
}

// NewAnalyzer creates an analyzer for the given style.
func NewAnalyzer(style Style) *Analyzer {
	return &Analyzer{style: style}
}

// Analyze runs per-timeframe analysis concurrently, then aggregates the
// weighted score, alignment, key levels and entry recommendations.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, candlesByTimeframe map[Timeframe][]models.Candle) (*Result, error) {
	if len(candlesByTimeframe) == 0 {
		return nil, fmt.Errorf("no candle data supplied for %s", symbol)
	}

	result := &Result{
		Symbol:     symbol,
		Style:      a.style,
		Timeframes: make(map[Timeframe]*TimeframeAnalysis),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for tf, candles := range candlesByTimeframe {
		wg.Add(1)
		go func(tf Timeframe, candles []models.Candle) {
			defer wg.Done()

			ta := a.analyzeTimeframe(ctx, tf, candles)

			mu.Lock()
			result.Timeframes[tf] = ta
			mu.Unlock()
		}(tf, candles)
	}

	wg.Wait()

	a.aggregate(result)
	buildLevels(result, candlesByTimeframe)
	buildRecommendations(result)

	return result, nil
}

// analyzeTimeframe scores trend and momentum for one timeframe.
func (a *Analyzer) analyzeTimeframe(ctx context.Context, tf Timeframe, candles []models.Candle) *TimeframeAnalysis {
	ta := &TimeframeAnalysis{
		Timeframe:   tf,
		CandleCount: len(candles),
	}

	need := minBars[tf]
	if len(candles) < need {
		ta.Error = fmt.Errorf("insufficient data for %s: got %d candles, need at least %d", tf, len(candles), need)
		return ta
	}

	facts, err := indicators.TakeSnapshot(ctx, candles)
	if err != nil {
		ta.Error = fmt.Errorf("indicator snapshot for %s: %w", tf, err)
		return ta
	}
	ta.Indicators = facts

	ta.TrendScore = trendScore(facts)
	ta.MomentumScore = momentumScore(facts, candles)
	ta.TrendDirection = scoreDirection(ta.TrendScore)
	ta.MomentumDirection = scoreDirection(ta.MomentumScore)
	ta.TrendSlopePct = regressionSlopePct(candles)

	ta.swingHighs, ta.swingLows = pivotLevels(candles)
	ta.HigherHighs = lastTwoRising(ta.swingHighs)
	ta.HigherLows = lastTwoRising(ta.swingLows)

	return ta
}

// trendScore awards points for bullish indicator configurations and
// normalizes over the checks the data could actually support. A zero
// indicator value means its warm-up window exceeded the series.
func trendScore(f *models.IndicatorFacts) float64 {
	var earned, possible float64

	if f.EMA20 > 0 && f.EMA50 > 0 {
		possible += 20
		if f.EMA20 > f.EMA50 {
			earned += 20
		}
	}
	if f.EMA20 > 0 && f.EMA200 > 0 {
		possible += 20
		if f.EMA20 > f.EMA200 {
			earned += 20
		}
	}
	if f.SupertrendDir != 0 {
		possible += 30
		if f.SupertrendDir > 0 {
			earned += 30
		}
	}
	if f.ADX > 0 {
		possible += 30
		switch {
		case f.ADX > 25:
			earned += 30
		case f.ADX > 20:
			earned += 15
		}
	}

	if possible == 0 {
		return 0
	}
	return earned / possible * 100
}

// momentumScore awards points for RSI position, MACD crossover state and
// recent price change, normalized like trendScore.
func momentumScore(f *models.IndicatorFacts, candles []models.Candle) float64 {
	var earned, possible float64

	if f.RSI > 0 {
		possible += 30
		switch {
		case f.RSI > 50 && f.RSI < 70:
			earned += 30
		case f.RSI > 40 && f.RSI < 60:
			earned += 15
		}
	}
	if f.MACD != 0 || f.MACDSignal != 0 {
		possible += 30
		if f.MACD > f.MACDSignal {
			earned += 30
		}
	}
	if n := len(candles); n >= 6 {
		possible += 40
		prev := candles[n-6].Close
		if prev > 0 {
			changePct := (candles[n-1].Close - prev) / prev * 100
			if changePct > 0 {
				earned += math.Min(changePct*2, 40)
			}
		}
	}

	if possible == 0 {
		return 0
	}
	return earned / possible * 100
}

// scoreDirection maps a 0..100 score onto a direction.
func scoreDirection(score float64) models.Direction {
	switch {
	case score >= 60:
		return models.Bullish
	case score <= 40:
		return models.Bearish
	default:
		return models.Neutral
	}
}

// aggregate computes the weighted combined score and both alignments.
func (a *Analyzer) aggregate(result *Result) {
	weights := styleWeights(a.style)

	var weightedScore, totalWeight float64
	for tf, ta := range result.Timeframes {
		if ta == nil || ta.Error != nil {
			continue
		}
		w := weights[tf]
		if w == 0 {
			continue
		}
		combined := 0.6*ta.TrendScore + 0.4*ta.MomentumScore
		weightedScore += combined * w
		totalWeight += w
	}
	if totalWeight > 0 {
		result.Score = weightedScore / totalWeight
	}

	result.TrendAlignment = alignmentOf(result, weights, func(ta *TimeframeAnalysis) models.Direction {
		return ta.TrendDirection
	})
	result.MomentumAlignment = alignmentOf(result, weights, func(ta *TimeframeAnalysis) models.Direction {
		return ta.MomentumDirection
	})
}

// alignmentOf counts directions across weighted, error-free timeframes. The
// dominant side is aligned only when it also carries at least half of the
// contributing timeframes.
func alignmentOf(result *Result, weights map[Timeframe]float64, direction func(*TimeframeAnalysis) models.Direction) Alignment {
	var al Alignment

	for tf, ta := range result.Timeframes {
		if ta == nil || ta.Error != nil || weights[tf] == 0 {
			continue
		}
		switch direction(ta) {
		case models.Bullish:
			al.BullishCount++
		case models.Bearish:
			al.BearishCount++
		default:
			al.NeutralCount++
		}
	}

	contributing := al.BullishCount + al.BearishCount + al.NeutralCount
	if contributing == 0 {
		al.Direction = models.Neutral
		return al
	}

	majority := (contributing + 1) / 2

	switch {
	case al.BullishCount > al.BearishCount:
		al.Direction = models.Bullish
		al.Aligned = al.BullishCount >= majority
	case al.BearishCount > al.BullishCount:
		al.Direction = models.Bearish
		al.Aligned = al.BearishCount >= majority
	default:
		al.Direction = models.Neutral
	}

	return al
}

// regressionSlopePct fits a least-squares line through the last 20 closes
// (or all of them, if fewer) and returns the per-bar slope as a percentage
// of the mean close.
func regressionSlopePct(candles []models.Candle) float64 {
	n := len(candles)
	window := 20
	if n < window {
		window = n
	}
	if window < 2 {
		return 0
	}

	closes := candles[n-window:]
	var sumX, sumY, sumXY, sumXX float64
	for i, c := range closes {
		x := float64(i)
		sumX += x
		sumY += c.Close
		sumXY += x * c.Close
		sumXX += x * x
	}

	fn := float64(window)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	mean := sumY / fn
	if mean == 0 {
		return 0
	}
	return slope / mean * 100
}

// lastTwoRising reports whether the two most recent levels are ascending.
func lastTwoRising(levels []float64) bool {
	n := len(levels)
	return n >= 2 && levels[n-1] > levels[n-2]
}
