package structure

import (
	"sort"

	"swing-trader/internal/models"
)

const (
	rejectionWickRatio  = 0.30 // wick at least 30% of range
	rejectionBodyRatio  = 0.50 // body under 50% of range
	levelGroupTolerance = 0.01 // rejections within 1% share a block
	recentWindow        = 10   // rejections this close to the end add recency bonus
)

type rejection struct {
	index int
	level float64
	kind  BlockKind
}

// DetectMitigationBlocks finds price zones with repeated wick rejections.
// Rejections whose levels lie within 1% of each other are grouped; a group
// becomes a block only with at least two rejections. Output is sorted by
// descending strength.
func DetectMitigationBlocks(candles []models.Candle) []MitigationBlock {
	rejections := findRejections(candles)
	if len(rejections) == 0 {
		return nil
	}

	var blocks []MitigationBlock
	used := make([]bool, len(rejections))

	for i := range rejections {
		if used[i] {
			continue
		}
		group := []rejection{rejections[i]}
		used[i] = true

		for j := i + 1; j < len(rejections); j++ {
			if used[j] || rejections[j].kind != rejections[i].kind {
				continue
			}
			if withinTolerance(rejections[j].level, rejections[i].level) {
				group = append(group, rejections[j])
				used[j] = true
			}
		}

		if len(group) < 2 {
			continue
		}
		blocks = append(blocks, buildBlock(group, len(candles)))
	}

	sort.Slice(blocks, func(a, b int) bool {
		return blocks[a].Strength > blocks[b].Strength
	})

	return blocks
}

// findRejections scans for candles with a dominant wick and a small body.
// A candle can reject in both directions when both wicks qualify.
func findRejections(candles []models.Candle) []rejection {
	var out []rejection

	for i, c := range candles {
		r := c.Range()
		if r == 0 || bodyRatio(c) >= rejectionBodyRatio {
			continue
		}

		upperWick := c.High - max(c.Open, c.Close)
		lowerWick := min(c.Open, c.Close) - c.Low

		if lowerWick/r >= rejectionWickRatio {
			out = append(out, rejection{index: i, level: c.Low, kind: KindSupport})
		}
		if upperWick/r >= rejectionWickRatio {
			out = append(out, rejection{index: i, level: c.High, kind: KindResistance})
		}
	}

	return out
}

func withinTolerance(a, b float64) bool {
	if b == 0 {
		return a == 0
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff/b <= levelGroupTolerance
}

func buildBlock(group []rejection, seriesLen int) MitigationBlock {
	var levelSum float64
	lastIndex := 0
	recent := 0

	for _, r := range group {
		levelSum += r.level
		if r.index > lastIndex {
			lastIndex = r.index
		}
		if r.index >= seriesLen-recentWindow {
			recent++
		}
	}

	strength := float64(len(group)) / 5.0
	if strength > 1 {
		strength = 1
	}
	strength += 0.1 * float64(recent)
	if strength > 1 {
		strength = 1
	}

	return MitigationBlock{
		Kind:           group[0].kind,
		Index:          lastIndex,
		PriceLevel:     levelSum / float64(len(group)),
		Strength:       strength,
		RejectionCount: len(group),
	}
}
