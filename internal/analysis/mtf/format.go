package mtf

import (
	"fmt"
	"strings"
)

// FormatResult formats the analysis result for display.
func (r *Result) FormatResult() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Multi-Timeframe Analysis: %s (%s)\n", r.Symbol, r.Style))
	sb.WriteString(strings.Repeat("─", 72) + "\n\n")

	sb.WriteString("Timeframe Analysis:\n")
	sb.WriteString(fmt.Sprintf("%-12s %-8s %-8s %-10s %-10s %-8s %-8s\n",
		"Timeframe", "Trend", "Mom.", "TrendDir", "MomDir", "RSI", "ADX"))
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, tf := range AllTimeframes() {
		ta := r.Timeframes[tf]
		if ta == nil || ta.Error != nil {
			sb.WriteString(fmt.Sprintf("%-12s %-8s\n", tf, "N/A"))
			continue
		}
		sb.WriteString(fmt.Sprintf("%-12s %-8.1f %-8.1f %-10s %-10s %-8.1f %-8.1f\n",
			tf,
			ta.TrendScore,
			ta.MomentumScore,
			ta.TrendDirection,
			ta.MomentumDirection,
			ta.Indicators.RSI,
			ta.Indicators.ADX,
		))
	}

	sb.WriteString("\n" + strings.Repeat("─", 72) + "\n")
	sb.WriteString("Summary:\n")
	sb.WriteString(fmt.Sprintf("  Combined Score:     %.1f\n", r.Score))
	sb.WriteString(fmt.Sprintf("  Trend Alignment:    %v (%s, %d bull / %d bear / %d neutral)\n",
		r.TrendAlignment.Aligned, r.TrendAlignment.Direction,
		r.TrendAlignment.BullishCount, r.TrendAlignment.BearishCount, r.TrendAlignment.NeutralCount))
	sb.WriteString(fmt.Sprintf("  Momentum Alignment: %v (%s)\n",
		r.MomentumAlignment.Aligned, r.MomentumAlignment.Direction))

	if len(r.SupportLevels) > 0 {
		sb.WriteString(fmt.Sprintf("  Supports:           %s\n", formatLevels(r.SupportLevels)))
	}
	if len(r.ResistanceLevels) > 0 {
		sb.WriteString(fmt.Sprintf("  Resistances:        %s\n", formatLevels(r.ResistanceLevels)))
	}

	if len(r.Recommendations) > 0 {
		sb.WriteString("\nEntry Recommendations:\n")
		for _, rec := range r.Recommendations {
			sb.WriteString(fmt.Sprintf("  %-18s @ %.2f (confidence %.0f) %s\n",
				rec.Type, rec.Price, rec.Confidence, rec.Reason))
		}
	}

	return sb.String()
}

func formatLevels(levels []float64) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = fmt.Sprintf("%.2f", l)
	}
	return strings.Join(parts, ", ")
}
