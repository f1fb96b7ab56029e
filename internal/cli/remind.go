package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/reminder"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send renewal and dead-weight reminders now",
	Long: `Check for renewals due within the reminder window and for unused subscriptions,
and notify the configured Slack and webhook targets.`,
	RunE: runRemind,
}

func init() {
	rootCmd.AddCommand(remindCmd)
}

func runRemind(cmd *cobra.Command, _ []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		notifiers := initNotifiers(cfg)
		if len(notifiers) == 0 {
			return fmt.Errorf("no alert targets configured: enable alerts.slack or alerts.webhook")
		}

		res, err := reminder.New(t, notifiers, newLogger(cfg)).Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("run reminder: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, res)
		}
		if res.Disabled {
			fmt.Fprintln(out, "Notifications are disabled (subguard settings set --notifications=true to enable).")
			return nil
		}
		fmt.Fprintf(out, "Renewals due: %d, dead weight: %d, alerts sent: %d\n", res.RenewalsDue, res.DeadWeight, res.AlertsSent)
		return nil
	})
}
