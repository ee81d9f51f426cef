// Package structure provides market-structure pattern detection over candle
// series: break of structure, change of character, fair value gaps, order
// blocks and mitigation blocks, plus a weighted validator combining them into
// a directional verdict.
//
// Every detector is a pure function of its inputs. Detectors signal
// "inconclusive" by returning nil (or an empty slice), never an error:
// a short series is not a failure, it is the absence of a finding.
package structure

import "swing-trader/internal/models"

// MarketStructure classifies the dominant swing pattern of a window.
type MarketStructure string

const (
	StructureBullish       MarketStructure = "bullish"
	StructureBearish       MarketStructure = "bearish"
	StructureIndeterminate MarketStructure = "indeterminate"
)

// BlockKind distinguishes support from resistance mitigation blocks.
type BlockKind string

const (
	KindSupport    BlockKind = "support"
	KindResistance BlockKind = "resistance"
)

// BreakOfStructure records price exceeding a prior swing extreme.
type BreakOfStructure struct {
	Direction  models.Direction
	Index      int
	BreakLevel float64
	Confirmed  bool // close, not just the wick, beyond the level
}

// ChangeOfCharacter records a flip in the dominant swing pattern.
type ChangeOfCharacter struct {
	Direction         models.Direction
	Index             int
	PreviousStructure MarketStructure
	NewStructure      MarketStructure
}

// FairValueGap records a three-candle price gap.
type FairValueGap struct {
	Direction models.Direction
	Index     int // index of the first candle of the triple
	GapHigh   float64
	GapLow    float64
	Filled    bool
}

// OrderBlock records the last opposing candle before a strong directional move.
type OrderBlock struct {
	Direction models.Direction // direction of the move the block precedes
	Index     int              // index of the block candle
	High      float64
	Low       float64
	Strength  float64 // in [0, 1]
}

// MitigationBlock records a price zone with repeated wick rejections.
type MitigationBlock struct {
	Kind           BlockKind
	Index          int // index of the most recent rejection in the group
	PriceLevel     float64
	Strength       float64 // in [0, 1]
	RejectionCount int
}

// swingHighs returns indexes of candles whose high strictly exceeds every
// high within lookback bars on both sides.
func swingHighs(candles []models.Candle, lookback int) []int {
	var idxs []int
	n := len(candles)
	for i := lookback; i < n-lookback; i++ {
		isSwing := true
		for j := 1; j <= lookback; j++ {
			if candles[i].High <= candles[i-j].High || candles[i].High <= candles[i+j].High {
				isSwing = false
				break
			}
		}
		if isSwing {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// swingLows returns indexes of candles whose low is strictly below every low
// within lookback bars on both sides.
func swingLows(candles []models.Candle, lookback int) []int {
	var idxs []int
	n := len(candles)
	for i := lookback; i < n-lookback; i++ {
		isSwing := true
		for j := 1; j <= lookback; j++ {
			if candles[i].Low >= candles[i-j].Low || candles[i].Low >= candles[i+j].Low {
				isSwing = false
				break
			}
		}
		if isSwing {
			idxs = append(idxs, i)
		}
	}
	return idxs
}
