package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show headline spend totals",
	Long:  `Show normalized monthly and yearly spend, subscription counts, dead weight and the next renewals.`,
	RunE:  runOverview,
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}

func runOverview(cmd *cobra.Command, _ []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		snap, err := t.Snapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("compute overview: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, snap)
		}

		m := newMoney(cfg.Display.Currency)
		o := snap.Overview
		fmt.Fprintf(out, "=== Subscription Overview (%s) ===\n", t.Now().Format("2006-01-02"))
		fmt.Fprintf(out, "Monthly spend:     %s\n", m.Format(o.TotalMonthly))
		fmt.Fprintf(out, "Yearly spend:      %s\n", m.Format(o.TotalYearly))
		fmt.Fprintf(out, "Subscriptions:     %d (%d active)\n", o.TotalSubscriptions, o.ActiveSubscriptions)
		fmt.Fprintf(out, "Dead weight:       %d (%s/month)\n", len(snap.DeadWeight.Records), m.Format(snap.DeadWeight.MonthlySavings))
		if len(snap.Categories) > 0 {
			top := snap.Categories[0]
			fmt.Fprintf(out, "Top category:      %s (%s/month)\n", top.Category, m.Format(top.TotalMonthly))
		}

		if len(snap.Upcoming) > 0 {
			fmt.Fprintf(out, "\nNext renewals:\n")
			for i, r := range snap.Upcoming {
				if i == 5 {
					fmt.Fprintf(out, "  ... and %d more (see 'subguard upcoming')\n", len(snap.Upcoming)-i)
					break
				}
				fmt.Fprintf(out, "  %-24s %-12s %s\n", r.Subscription.Name, economics.RelativeLabel(r.DaysUntil), m.Format(r.MonthlyCost))
			}
		}
		return nil
	})
}
