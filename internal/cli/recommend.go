package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest subscriptions to cancel",
	RunE:  runRecommend,
}

func init() {
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		set, err := t.Recommendations(cmd.Context())
		if err != nil {
			return fmt.Errorf("build recommendations: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, set)
		}
		if len(set.Recommendations) == 0 {
			fmt.Fprintln(out, "No recommendations. Every active subscription is in use.")
			return nil
		}

		m := newMoney(cfg.Display.Currency)
		for i, r := range set.Recommendations {
			priority := text.FgYellow.Sprint(string(r.Priority))
			if r.Priority == economics.PriorityHigh {
				priority = text.FgRed.Sprint(string(r.Priority))
			}
			fmt.Fprintf(out, "%d. [%s] %s\n", i+1, priority, r.Title)
			fmt.Fprintf(out, "   %s\n", r.Description)
			fmt.Fprintf(out, "   Saves %s/month\n", m.Format(r.PotentialMonthlySavings))
		}
		fmt.Fprintf(out, "\nTotal potential savings: %s/month (%s/year)\n",
			m.Format(set.TotalPotentialSavings),
			m.Format(set.TotalPotentialSavings*economics.MonthsPerYear),
		)
		return nil
	})
}
