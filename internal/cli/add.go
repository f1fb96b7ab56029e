package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a subscription",
	Long:  `Record a new recurring subscription with its cost, billing cycle and next renewal date.`,
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a subscription",
	Long:  `Change fields of an existing subscription. Only flags that are set are applied.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	for _, cmd := range []*cobra.Command{addCmd, updateCmd} {
		cmd.Flags().StringP("name", "n", "", "Subscription name")
		cmd.Flags().Float64P("cost", "c", 0, "Cost per billing cycle")
		cmd.Flags().StringP("cycle", "b", "monthly", "Billing cycle (weekly, monthly, quarterly, yearly)")
		cmd.Flags().String("category", "", "Category (see 'subguard categories --catalog')")
		cmd.Flags().String("next", "", "Next billing date (YYYY-MM-DD)")
		cmd.Flags().String("last-used", "", "Last used date (YYYY-MM-DD)")
		cmd.Flags().String("status", "active", "Status (active, inactive, cancelled, paused)")
		cmd.Flags().String("notes", "", "Free-form notes")
	}
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("cost")
}

// applyFlags copies the changed subscription flags onto sub. With all set,
// every flag is applied, defaults included.
func applyFlags(flags *pflag.FlagSet, sub *model.Subscription, all bool) error {
	set := func(name string) bool { return all || flags.Changed(name) }

	if set("name") {
		sub.Name, _ = flags.GetString("name")
	}
	if set("cost") {
		sub.Cost, _ = flags.GetFloat64("cost")
	}
	if set("cycle") {
		raw, _ := flags.GetString("cycle")
		sub.BillingCycle = model.ParseBillingCycle(raw)
	}
	if set("category") {
		sub.Category, _ = flags.GetString("category")
	}
	if set("notes") {
		sub.Notes, _ = flags.GetString("notes")
	}
	if set("status") {
		raw, _ := flags.GetString("status")
		st, err := model.ParseStatus(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", economics.ErrInvalidInput, err)
		}
		sub.Status = st
	}
	if set("next") {
		raw, _ := flags.GetString("next")
		if raw == "" {
			sub.NextBillingDate = time.Time{}
		} else {
			d, err := model.ParseDate(raw)
			if err != nil {
				return fmt.Errorf("%w: next: %v", economics.ErrInvalidInput, err)
			}
			sub.NextBillingDate = d
		}
	}
	if set("last-used") {
		raw, _ := flags.GetString("last-used")
		d, err := model.ParseOptionalDate(raw)
		if err != nil {
			return fmt.Errorf("%w: last-used: %v", economics.ErrInvalidInput, err)
		}
		sub.LastUsed = d
	}
	return nil
}

func runAdd(cmd *cobra.Command, _ []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		var sub model.Subscription
		if err := applyFlags(cmd.Flags(), &sub, true); err != nil {
			return err
		}
		if err := t.Add(cmd.Context(), &sub); err != nil {
			return fmt.Errorf("add subscription: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, sub)
		}
		fmt.Fprintf(out, "Added subscription:\n")
		printSubscription(out, sub, t, newMoney(cfg.Display.Currency))
		return nil
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		sub, err := resolveSubscription(cmd, t, args[0])
		if err != nil {
			return err
		}
		if err := applyFlags(cmd.Flags(), sub, false); err != nil {
			return err
		}
		if err := t.Update(cmd.Context(), sub); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, sub)
		}
		fmt.Fprintf(out, "Updated subscription:\n")
		printSubscription(out, *sub, t, newMoney(cfg.Display.Currency))
		return nil
	})
}

// printSubscription writes a detail view of one subscription.
func printSubscription(w io.Writer, sub model.Subscription, t *tracker.Tracker, m money) {
	now := t.Now()
	cost := economics.NormalizeCost(sub)

	lastUsed := "never"
	if sub.LastUsed != nil {
		lastUsed = dateWithRelative(*sub.LastUsed, now)
	}

	fmt.Fprintf(w, "  ID:           %s\n", sub.ID)
	fmt.Fprintf(w, "  Name:         %s\n", sub.Name)
	fmt.Fprintf(w, "  Cost:         %s / %s\n", m.Format(sub.Cost), sub.BillingCycle)
	fmt.Fprintf(w, "  Monthly:      %s\n", m.Format(cost.Monthly))
	fmt.Fprintf(w, "  Yearly:       %s\n", m.Format(cost.Yearly))
	fmt.Fprintf(w, "  Category:     %s %s\n", t.Catalog().Lookup(sub.Category).Icon, sub.Category)
	fmt.Fprintf(w, "  Status:       %s\n", sub.Status)
	fmt.Fprintf(w, "  Next billing: %s\n", dateWithRelative(sub.NextBillingDate, now))
	fmt.Fprintf(w, "  Last used:    %s\n", lastUsed)
	if sub.Notes != "" {
		fmt.Fprintf(w, "  Notes:        %s\n", sub.Notes)
	}
}
