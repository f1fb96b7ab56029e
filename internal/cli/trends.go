package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

const barWidth = 30

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show monthly spend over time",
	Long: `Total normalized monthly cost per calendar month over the last N months,
bucketed by creation date (default) or next billing date.`,
	RunE: runTrends,
}

func init() {
	rootCmd.AddCommand(trendsCmd)
	trendsCmd.Flags().IntP("months", "m", 6, "Number of months including the current one")
	trendsCmd.Flags().String("field", "created_at", "Date to bucket by (created_at, next_billing_date)")
	trendsCmd.Flags().Bool("sparse", false, "Omit months without records")
}

func runTrends(cmd *cobra.Command, _ []string) error {
	months, _ := cmd.Flags().GetInt("months")
	fieldName, _ := cmd.Flags().GetString("field")
	sparse, _ := cmd.Flags().GetBool("sparse")

	field, err := economics.ParseDateField(fieldName)
	if err != nil {
		return err
	}

	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		points, err := t.Trends(cmd.Context(), months, field, !sparse)
		if err != nil {
			return fmt.Errorf("aggregate trends: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, points)
		}

		var peak float64
		for _, p := range points {
			peak = max(peak, p.Total)
		}

		m := newMoney(cfg.Display.Currency)
		tw := newTable(out, table.Row{"Month", "Count", "Monthly", ""})
		for _, p := range points {
			bar := ""
			if peak > 0 {
				bar = strings.Repeat("█", int(p.Total/peak*barWidth+0.5))
			}
			tw.AppendRow(table.Row{p.Month, p.Count, m.Format(p.Total), bar})
		}
		alignRight(tw, 2, 3)
		tw.Render()
		return nil
	})
}
