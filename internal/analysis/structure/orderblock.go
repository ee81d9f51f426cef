package structure

import "swing-trader/internal/models"

const (
	strongMoveBodyRatio  = 0.60 // body at least 60% of range
	strongMovePct        = 1.5  // open-to-close move at least 1.5%
	blockBodyRatio       = 0.40 // candidate block body at least 40% of range
	moveNormalizationPct = 5.0  // move size normalized against a 5% move
)

// DetectOrderBlocks finds order blocks: for each strong directional move
// candle, the nearest preceding opposing-direction candle with a meaningful
// body. The backward scan ends at the first same-direction candle.
func DetectOrderBlocks(candles []models.Candle) []OrderBlock {
	var blocks []OrderBlock

	for i := 1; i < len(candles); i++ {
		c := candles[i]
		if !isStrongMove(c) {
			continue
		}

		bullishMove := c.IsBullish()

		for j := i - 1; j >= 0; j-- {
			prev := candles[j]
			if prev.IsBullish() == bullishMove && prev.Body() > 0 {
				break
			}
			if bodyRatio(prev) >= blockBodyRatio {
				direction := models.Bearish
				if bullishMove {
					direction = models.Bullish
				}
				blocks = append(blocks, OrderBlock{
					Direction: direction,
					Index:     j,
					High:      prev.High,
					Low:       prev.Low,
					Strength:  blockStrength(c),
				})
				break
			}
		}
	}

	return blocks
}

func isStrongMove(c models.Candle) bool {
	return bodyRatio(c) >= strongMoveBodyRatio && movePct(c) >= strongMovePct
}

func bodyRatio(c models.Candle) float64 {
	r := c.Range()
	if r == 0 {
		return 0
	}
	return c.Body() / r
}

func movePct(c models.Candle) float64 {
	if c.Open == 0 {
		return 0
	}
	return c.Body() / c.Open * 100
}

// blockStrength weights the move candle's body dominance and its normalized
// move size equally.
func blockStrength(move models.Candle) float64 {
	normalizedMove := movePct(move) / moveNormalizationPct
	if normalizedMove > 1 {
		normalizedMove = 1
	}
	return 0.5*bodyRatio(move) + 0.5*normalizedMove
}
