package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/storage"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions",
	Long:    `List tracked subscriptions ordered by next billing date, optionally filtered by status or category.`,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("status", "s", "", "Filter by status (active, inactive, cancelled, paused)")
	listCmd.Flags().String("category", "", "Filter by category")
}

func runList(cmd *cobra.Command, _ []string) error {
	rawStatus, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")

	filter := model.ListFilter{Category: category}
	if rawStatus != "" {
		st, err := model.ParseStatus(rawStatus)
		if err != nil {
			return err
		}
		filter.Status = st
	}

	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		subs, err := t.List(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("list subscriptions: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, subs)
		}
		if len(subs) == 0 {
			fmt.Fprintln(out, "No subscriptions found.")
			return nil
		}

		m := newMoney(cfg.Display.Currency)
		now := t.Now()
		var monthly float64

		tw := newTable(out, table.Row{"ID", "Name", "Category", "Cycle", "Cost", "Monthly", "Next Billing", "Status"})
		for _, s := range subs {
			cost := economics.NormalizeCost(s)
			if s.IsActive() {
				monthly += cost.Monthly
			}
			tw.AppendRow(table.Row{
				shortID(s.ID),
				s.Name,
				s.Category,
				string(s.BillingCycle),
				m.Format(s.Cost),
				m.Format(cost.Monthly),
				dateWithRelative(s.NextBillingDate, now),
				statusLabel(s.Status),
			})
		}
		tw.AppendSeparator()
		tw.AppendFooter(table.Row{"", "", "", "", text.Bold.Sprint("Total (active)"), text.Bold.Sprint(m.Format(monthly)), "", ""})
		alignRight(tw, 5, 6)
		tw.Render()
		return nil
	})
}

// shortID abbreviates a UUID for table display. Commands accept the full ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveSubscription finds a subscription by full ID or by a unique ID prefix.
func resolveSubscription(cmd *cobra.Command, t *tracker.Tracker, ref string) (*model.Subscription, error) {
	sub, err := t.Get(cmd.Context(), ref)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	all, err := t.List(cmd.Context(), model.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	var matches []model.Subscription
	for _, s := range all {
		if strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("subscription %s: %w", ref, storage.ErrNotFound)
	case 1:
		return &matches[0], nil
	}
	return nil, fmt.Errorf("subscription id prefix %q is ambiguous (%d matches)", ref, len(matches))
}
