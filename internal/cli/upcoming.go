package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show upcoming renewals",
	Long:  `Show active subscriptions renewing inside the renewal window, overdue ones first.`,
	RunE:  runUpcoming,
}

func init() {
	rootCmd.AddCommand(upcomingCmd)
	upcomingCmd.Flags().IntP("days", "d", 0, "Window in days (default: the configured renewal window)")
}

func runUpcoming(cmd *cobra.Command, _ []string) error {
	days, _ := cmd.Flags().GetInt("days")

	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		var (
			renewals []economics.Renewal
			err      error
		)
		if days > 0 {
			renewals, err = t.RenewalsWithin(cmd.Context(), days)
		} else {
			renewals, err = t.Upcoming(cmd.Context())
		}
		if err != nil {
			return fmt.Errorf("upcoming renewals: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, renewals)
		}
		if len(renewals) == 0 {
			fmt.Fprintln(out, "No renewals in the window.")
			return nil
		}

		m := newMoney(cfg.Display.Currency)
		tw := newTable(out, table.Row{"ID", "Name", "Date", "When", "Urgency", "Monthly"})
		for _, r := range renewals {
			tw.AppendRow(table.Row{
				shortID(r.Subscription.ID),
				r.Subscription.Name,
				model.FormatDate(r.Subscription.NextBillingDate),
				economics.RelativeLabel(r.DaysUntil),
				urgencyLabel(r.Urgency),
				m.Format(r.MonthlyCost),
			})
		}
		alignRight(tw, 6)
		tw.Render()
		return nil
	})
}
