package structure

import (
	"fmt"

	"swing-trader/internal/config"
	"swing-trader/internal/models"
)

const minValidatorCandles = 50

// Check weights. Disabled checks shrink the achievable maximum instead of
// scoring as passed.
const (
	weightBOS        = 30.0
	weightCHOCH      = 20.0
	weightOrderBlock = 25.0
	weightFVG        = 15.0
	weightMitigation = 10.0
)

// Verdict is the validator's weighted assessment of a candle series against a
// proposed trade direction.
type Verdict struct {
	Valid   bool
	Score   float64 // earned/max normalized to 0..100
	Reasons []string

	BOS              *BreakOfStructure
	CHOCH            *ChangeOfCharacter
	OrderBlocks      []OrderBlock
	FairValueGaps    []FairValueGap
	MitigationBlocks []MitigationBlock
}

// Validator scores market structure against a direction using the configured
// detector checks.
type Validator struct {
	cfg config.StructureConfig

	detectBOS        func([]models.Candle, int) *BreakOfStructure
	detectCHOCH      func([]models.Candle, int) *ChangeOfCharacter
	detectOrderBlks  func([]models.Candle) []OrderBlock
	detectFVGs       func([]models.Candle) []FairValueGap
	detectMitigation func([]models.Candle) []MitigationBlock
}

// NewValidator returns a Validator wired to the standard detectors.
func NewValidator(cfg config.StructureConfig) *Validator {
	return &Validator{
		cfg:              cfg,
		detectBOS:        DetectBOS,
		detectCHOCH:      DetectCHOCH,
		detectOrderBlks:  DetectOrderBlocks,
		detectFVGs:       DetectFVGs,
		detectMitigation: DetectMitigationBlocks,
	}
}

// Validate scores the series against the proposed direction. A series shorter
// than 50 candles fails immediately with a zero score.
func (v *Validator) Validate(candles []models.Candle, direction models.Direction) *Verdict {
	if len(candles) < minValidatorCandles {
		return &Verdict{
			Valid:   false,
			Score:   0,
			Reasons: []string{fmt.Sprintf("insufficient candles: have %d, need %d", len(candles), minValidatorCandles)},
		}
	}

	verdict := &Verdict{}
	var earned, maxScore float64

	if v.cfg.RequireBOS {
		maxScore += weightBOS
		verdict.BOS = v.detectBOS(candles, v.cfg.Lookback)
		switch {
		case verdict.BOS == nil:
			verdict.Reasons = append(verdict.Reasons, "no break of structure detected")
		case verdict.BOS.Direction != direction:
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("break of structure is %s, opposing the %s setup", verdict.BOS.Direction, direction))
		default:
			earned += weightBOS
			if !verdict.BOS.Confirmed {
				verdict.Reasons = append(verdict.Reasons, "break of structure by wick only, close has not confirmed")
			}
		}
	}

	if v.cfg.RequireCHOCH {
		maxScore += weightCHOCH
		verdict.CHOCH = v.detectCHOCH(candles, v.cfg.Lookback)
		switch {
		case verdict.CHOCH == nil:
			verdict.Reasons = append(verdict.Reasons, "no change of character detected")
		case verdict.CHOCH.Direction != direction:
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("change of character is %s, opposing the %s setup", verdict.CHOCH.Direction, direction))
		default:
			earned += weightCHOCH
		}
	}

	if v.cfg.RequireOrderBlocks {
		maxScore += weightOrderBlock
		verdict.OrderBlocks = v.detectOrderBlks(candles)
		if hasDirectionalOrderBlock(verdict.OrderBlocks, direction) {
			earned += weightOrderBlock
		} else {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("no %s order block found", direction))
		}
	}

	if v.cfg.RequireFVGs {
		maxScore += weightFVG
		verdict.FairValueGaps = v.detectFVGs(candles)
		if hasUnfilledGap(verdict.FairValueGaps, direction) {
			earned += weightFVG
		} else {
			verdict.Reasons = append(verdict.Reasons, fmt.Sprintf("no unfilled %s fair value gap", direction))
		}
	}

	if v.cfg.RequireMitigation {
		maxScore += weightMitigation
		verdict.MitigationBlocks = v.detectMitigation(candles)
		if hasSupportiveMitigation(verdict.MitigationBlocks, direction) {
			earned += weightMitigation
		} else {
			verdict.Reasons = append(verdict.Reasons, "no supportive mitigation block")
		}
	}

	if maxScore > 0 {
		verdict.Score = earned / maxScore * 100
	}
	verdict.Valid = verdict.Score >= v.cfg.MinScore

	return verdict
}

func hasDirectionalOrderBlock(blocks []OrderBlock, direction models.Direction) bool {
	for _, b := range blocks {
		if b.Direction == direction {
			return true
		}
	}
	return false
}

func hasUnfilledGap(gaps []FairValueGap, direction models.Direction) bool {
	for _, g := range gaps {
		if g.Direction == direction && !g.Filled {
			return true
		}
	}
	return false
}

// hasSupportiveMitigation treats support blocks as backing bullish setups and
// resistance blocks as backing bearish ones.
func hasSupportiveMitigation(blocks []MitigationBlock, direction models.Direction) bool {
	want := KindResistance
	if direction == models.Bullish {
		want = KindSupport
	}
	for _, b := range blocks {
		if b.Kind == want {
			return true
		}
	}
	return false
}
