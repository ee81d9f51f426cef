package mtf

import (
	"fmt"
	"sort"

	"swing-trader/internal/models"
)

// Entry recommendation types.
const (
	EntrySupportBounce    = "support_bounce"
	EntryBreakout         = "breakout"
	EntryIntradayPullback = "intraday_pullback"
)

const (
	supportProximityPct  = 3.0 // price at most 3% above a support
	breakoutProximityPct = 2.0 // price at most 2% below a resistance
	pullbackProximityPct = 2.0 // price at most 2% above an intraday support
)

// EntryRecommendation is a suggested entry tied to a key level.
type EntryRecommendation struct {
	Type       string
	Price      float64
	Confidence float64
	Reason     string
}

// buildRecommendations derives entry candidates from the computed levels,
// sorted by descending confidence. Without trend alignment across the
// contributing timeframes no entries are suggested at all.
func buildRecommendations(result *Result) {
	if !result.TrendAlignment.Aligned {
		return
	}
	price := currentPrice(result)
	if price == 0 {
		return
	}

	confidence := entryConfidence(result)
	var recs []EntryRecommendation

	for _, support := range result.SupportLevels {
		if price < support {
			continue
		}
		distancePct := (price - support) / support * 100
		if distancePct <= supportProximityPct {
			recs = append(recs, EntryRecommendation{
				Type:       EntrySupportBounce,
				Price:      support,
				Confidence: confidence,
				Reason:     fmt.Sprintf("price %.2f is %.1f%% above support %.2f", price, distancePct, support),
			})
			break
		}
	}

	for _, resistance := range result.ResistanceLevels {
		if price > resistance {
			continue
		}
		distancePct := (resistance - price) / price * 100
		if distancePct <= breakoutProximityPct {
			recs = append(recs, EntryRecommendation{
				Type:       EntryBreakout,
				Price:      resistance,
				Confidence: confidence,
				Reason:     fmt.Sprintf("price %.2f is %.1f%% below resistance %.2f", price, distancePct, resistance),
			})
			break
		}
	}

	if rec, ok := intradayPullback(result, price, confidence); ok {
		recs = append(recs, rec)
	}

	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].Confidence > recs[b].Confidence
	})
	result.Recommendations = recs
}

// intradayPullback fires when the daily trend is bullish, intraday momentum
// has cooled to neutral, and price sits just above an hourly swing low. The
// hourly series carries the swing lows and is required; a missing 15-minute
// series abstains, only a present one with momentum still running disqualifies.
func intradayPullback(result *Result, price, confidence float64) (EntryRecommendation, bool) {
	daily := result.Timeframes[Timeframe1Day]
	if daily == nil || daily.Error != nil || daily.TrendDirection != models.Bullish {
		return EntryRecommendation{}, false
	}

	hourly := result.Timeframes[Timeframe1Hour]
	if hourly == nil || hourly.Error != nil || hourly.MomentumDirection != models.Neutral {
		return EntryRecommendation{}, false
	}
	if m15 := result.Timeframes[Timeframe15Min]; m15 != nil && m15.Error == nil && m15.MomentumDirection != models.Neutral {
		return EntryRecommendation{}, false
	}

	support := 0.0
	for _, low := range hourly.swingLows {
		if low < price && low > support {
			support = low
		}
	}
	if support == 0 {
		return EntryRecommendation{}, false
	}

	distancePct := (price - support) / support * 100
	if distancePct > pullbackProximityPct {
		return EntryRecommendation{}, false
	}

	return EntryRecommendation{
		Type:       EntryIntradayPullback,
		Price:      support,
		Confidence: confidence,
		Reason:     fmt.Sprintf("daily uptrend with intraday momentum cooled, price %.2f near hourly support %.2f", price, support),
	}, true
}

// entryConfidence starts from the combined score and adds for momentum
// alignment, the bullish share of contributing timeframes, and each bullish
// intraday timeframe. Clamped to [0, 100].
func entryConfidence(result *Result) float64 {
	confidence := result.Score

	if result.MomentumAlignment.Aligned {
		confidence += 10
	}

	al := result.TrendAlignment
	contributing := al.BullishCount + al.BearishCount + al.NeutralCount
	if contributing > 0 {
		confidence += float64(al.BullishCount) / float64(contributing) * 10
	}

	for _, tf := range []Timeframe{Timeframe1Hour, Timeframe15Min} {
		if ta := result.Timeframes[tf]; ta != nil && ta.Error == nil && ta.TrendDirection == models.Bullish {
			confidence += 5
		}
	}

	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}
