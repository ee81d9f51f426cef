package structure

import "swing-trader/internal/models"

// DetectCHOCH finds a change of character: the dominant swing classification
// of the last lookback candles flipping against the classification computed
// one candle earlier. An indeterminate window (tied vote) never triggers a
// flip. Returns nil when the series is shorter than lookback+5.
func DetectCHOCH(candles []models.Candle, lookback int) *ChangeOfCharacter {
	if lookback <= 0 || len(candles) < lookback+5 {
		return nil
	}

	n := len(candles)
	current := classifyStructure(candles[n-lookback : n])
	previous := classifyStructure(candles[n-lookback-1 : n-1])

	if current == StructureIndeterminate || previous == StructureIndeterminate {
		return nil
	}
	if current == previous {
		return nil
	}

	direction := models.Bullish
	if current == StructureBearish {
		direction = models.Bearish
	}

	return &ChangeOfCharacter{
		Direction:         direction,
		Index:             n - 1,
		PreviousStructure: previous,
		NewStructure:      current,
	}
}

// classifyStructure takes a majority vote over consecutive candle pairs:
// higher high plus higher low votes bullish, lower high plus lower low votes
// bearish, mixed pairs abstain.
func classifyStructure(window []models.Candle) MarketStructure {
	bullish := 0
	bearish := 0

	for i := 1; i < len(window); i++ {
		higherHigh := window[i].High > window[i-1].High
		higherLow := window[i].Low > window[i-1].Low
		lowerHigh := window[i].High < window[i-1].High
		lowerLow := window[i].Low < window[i-1].Low

		switch {
		case higherHigh && higherLow:
			bullish++
		case lowerHigh && lowerLow:
			bearish++
		}
	}

	switch {
	case bullish > bearish:
		return StructureBullish
	case bearish > bullish:
		return StructureBearish
	default:
		return StructureIndeterminate
	}
}
