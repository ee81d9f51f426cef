package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swing-trader/internal/store"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Decision journal review",
		Long:  "Review journaled pipeline decisions and their rejection stages.",
	}

	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalStatsCmd(app))

	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled decisions, newest first",
		Example: `  swing-trader journal list --limit 20
  swing-trader journal list --symbol RELIANCE --approved
  swing-trader journal list --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Warning("Store not initialized. No journal available.")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			symbol, _ := cmd.Flags().GetString("symbol")
			approved, _ := cmd.Flags().GetBool("approved")
			limit, _ := cmd.Flags().GetInt("limit")
			days, _ := cmd.Flags().GetInt("days")

			filter := store.DecisionFilter{
				Symbol:       strings.ToUpper(symbol),
				OnlyApproved: approved,
				Limit:        limit,
			}
			if days > 0 {
				filter.Since = time.Now().AddDate(0, 0, -days)
			}

			records, err := app.Store.GetDecisions(ctx, filter)
			if err != nil {
				output.Error("Failed to fetch decisions: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			if len(records) == 0 {
				output.Info("No journaled decisions match.")
				return nil
			}

			output.Bold("Decision Journal")
			output.Printf("%-20s %-12s %-9s %-22s %-8s %s\n",
				"Time", "Symbol", "Outcome", "Stage", "Qty", "Reason")
			output.Println(strings.Repeat("-", 96))
			for _, rec := range records {
				outcome := "rejected"
				if rec.Approved {
					outcome = "approved"
				}
				output.Printf("%-20s %-12s %-9s %-22s %-8d %s\n",
					rec.Timestamp.Format("2006-01-02 15:04:05"),
					rec.Symbol, outcome, rec.Stage, rec.Quantity, rec.Reason)
			}
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "filter by symbol")
	cmd.Flags().Bool("approved", false, "show approved decisions only")
	cmd.Flags().Int("limit", 50, "maximum rows")
	cmd.Flags().Int("days", 0, "only decisions from the last N days")

	return cmd
}

func newJournalStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Approval rate and rejection stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				output.Warning("Store not initialized. No journal available.")
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			stats, err := app.Store.GetDecisionStats(ctx)
			if err != nil {
				output.Error("Failed to fetch decision stats: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(stats)
			}

			output.Bold("Decision Stats")
			output.Printf("  Total:    %d\n", stats.Total)
			approvalRate := 0.0
			if stats.Total > 0 {
				approvalRate = float64(stats.Approved) / float64(stats.Total) * 100
			}
			output.Printf("  Approved: %d (%.0f%%)\n", stats.Approved, approvalRate)
			output.Printf("  Rejected: %d\n", stats.Rejected)

			if len(stats.RejectByStage) > 0 {
				output.Println()
				output.Bold("Rejections by Stage")
				for stage, count := range stats.RejectByStage {
					output.Printf("  %-24s %d\n", stage, count)
				}
			}
			return nil
		},
	}
}
