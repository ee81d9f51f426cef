// Package models provides domain models for the swing trading pipeline.
package models

import (
	"fmt"
	"time"
)

// Interval represents a candle aggregation interval.
type Interval string

const (
	Interval15Min Interval = "15minute"
	Interval1Hour Interval = "60minute"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
)

// Direction represents the directional read of a structural signal.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Bias represents the side of a trade intent.
type Bias string

const (
	BiasLong  Bias = "long"
	BiasShort Bias = "short"
)

// SizingHint is a coarse position-size preference carried on a trade intent.
type SizingHint string

const (
	SizeSmall  SizingHint = "small"
	SizeMedium SizingHint = "medium"
	SizeLarge  SizingHint = "large"
)

// Candle represents OHLCV data for a time period. Immutable once produced.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Body returns the absolute open-to-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range returns the high-to-low distance.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// CandleSeries is an ordered, time-ascending sequence of candles for one
// symbol and interval. The pipeline only ever reads it.
type CandleSeries struct {
	Symbol   string
	Interval Interval
	Candles  []Candle
}

// Validate checks the strictly-increasing timestamp invariant.
func (s *CandleSeries) Validate() error {
	for i := 1; i < len(s.Candles); i++ {
		if !s.Candles[i].Timestamp.After(s.Candles[i-1].Timestamp) {
			return fmt.Errorf("candle series %s/%s: timestamp at index %d (%s) not after previous (%s)",
				s.Symbol, s.Interval, i,
				s.Candles[i].Timestamp.Format(time.RFC3339),
				s.Candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of candles in the series.
func (s *CandleSeries) Len() int {
	return len(s.Candles)
}

// Last returns the most recent candle and false if the series is empty.
func (s *CandleSeries) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}
