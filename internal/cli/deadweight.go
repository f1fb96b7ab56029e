package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var deadweightCmd = &cobra.Command{
	Use:     "deadweight",
	Aliases: []string{"unused"},
	Short:   "Show active subscriptions that are not being used",
	Long:    `List active subscriptions never used or unused for longer than the configured threshold, with the savings from canceling them.`,
	RunE:    runDeadWeight,
}

func init() {
	rootCmd.AddCommand(deadweightCmd)
}

func runDeadWeight(cmd *cobra.Command, _ []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		report, err := t.DeadWeight(cmd.Context())
		if err != nil {
			return fmt.Errorf("detect dead weight: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, report)
		}
		if len(report.Records) == 0 {
			fmt.Fprintf(out, "No dead weight: every active subscription was used within %d days.\n", report.ThresholdDays)
			return nil
		}

		m := newMoney(cfg.Display.Currency)
		tw := newTable(out, table.Row{"ID", "Name", "Category", "Unused", "Monthly"})
		for _, f := range report.Records {
			unused := fmt.Sprintf("%d days", f.DaysUnused)
			if f.DaysUnused == economics.NeverUsed {
				unused = text.FgRed.Sprint("never used")
			}
			tw.AppendRow(table.Row{shortID(f.Subscription.ID), f.Subscription.Name, f.Subscription.Category, unused, m.Format(f.MonthlyCost)})
		}
		tw.AppendSeparator()
		tw.AppendFooter(table.Row{"", "", "", text.Bold.Sprint("Savings"), text.Bold.Sprint(m.Format(report.MonthlySavings))})
		alignRight(tw, 4, 5)
		tw.Render()
		fmt.Fprintf(out, "Canceling these saves %s per year (threshold: %d days).\n", m.Format(report.YearlySavings), report.ThresholdDays)
		return nil
	})
}
