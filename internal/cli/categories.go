package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show monthly spend by category",
	Long:  `Show normalized monthly spend of active subscriptions grouped by category, or list the category catalog.`,
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.Flags().Bool("catalog", false, "List the known categories instead of spend")
}

func runCategories(cmd *cobra.Command, _ []string) error {
	showCatalog, _ := cmd.Flags().GetBool("catalog")

	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		out := cmd.OutOrStdout()

		if showCatalog {
			all := t.Catalog().All()
			if jsonOutput {
				return printJSON(out, all)
			}
			tw := newTable(out, table.Row{"", "Category", "Color"})
			for _, c := range all {
				tw.AppendRow(table.Row{c.Icon, c.Name, c.Color})
			}
			tw.Render()
			return nil
		}

		breakdown, err := t.Categories(cmd.Context())
		if err != nil {
			return fmt.Errorf("aggregate categories: %w", err)
		}
		if jsonOutput {
			return printJSON(out, breakdown)
		}
		if len(breakdown) == 0 {
			fmt.Fprintln(out, "No active subscriptions.")
			return nil
		}

		m := newMoney(cfg.Display.Currency)
		total := breakdown.Total()
		tw := newTable(out, table.Row{"", "Category", "Count", "Monthly", "Share"})
		for _, c := range breakdown {
			share := 0.0
			if total > 0 {
				share = c.TotalMonthly / total * 100
			}
			tw.AppendRow(table.Row{
				t.Catalog().Lookup(c.Category).Icon,
				c.Category,
				c.Count,
				m.Format(c.TotalMonthly),
				fmt.Sprintf("%.1f%%", share),
			})
		}
		tw.AppendSeparator()
		tw.AppendFooter(table.Row{"", "", "", text.Bold.Sprint(m.Format(total)), ""})
		alignRight(tw, 3, 4, 5)
		tw.Render()
		return nil
	})
}
