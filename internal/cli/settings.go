package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or change analytics and notification settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
	Long:  `Change stored settings. Only flags that are set are applied; the rest keep their current values.`,
	RunE:  runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsSetCmd.Flags().Bool("notifications", true, "Send renewal and dead-weight notifications")
	settingsSetCmd.Flags().Int("reminder-days", 0, "Remind about renewals this many days ahead")
	settingsSetCmd.Flags().Int("unused-days", 0, "Flag subscriptions unused for more than this many days")
	settingsSetCmd.Flags().Int("window-days", 0, "Renewal window for upcoming renewals and urgency")
}

func printSettings(w io.Writer, s model.Settings) {
	updated := "never (defaults)"
	if !s.UpdatedAt.IsZero() {
		updated = s.UpdatedAt.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w, "  Notifications:         %t\n", s.EmailNotifications)
	fmt.Fprintf(w, "  Renewal reminder days: %d\n", s.RenewalReminderDays)
	fmt.Fprintf(w, "  Unused threshold days: %d\n", s.UnusedThresholdDays)
	fmt.Fprintf(w, "  Renewal window days:   %d\n", s.RenewalWindowDays)
	fmt.Fprintf(w, "  Updated:               %s\n", updated)
}

func runSettingsGet(cmd *cobra.Command, _ []string) error {
	return withTracker(func(_ *config.Config, t *tracker.Tracker) error {
		s, err := t.Settings(cmd.Context())
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), s)
		}
		printSettings(cmd.OutOrStdout(), s)
		return nil
	})
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	return withTracker(func(_ *config.Config, t *tracker.Tracker) error {
		s, err := t.Settings(cmd.Context())
		if err != nil {
			return fmt.Errorf("get settings: %w", err)
		}

		if flags.Changed("notifications") {
			s.EmailNotifications, _ = flags.GetBool("notifications")
		}
		if flags.Changed("reminder-days") {
			s.RenewalReminderDays, _ = flags.GetInt("reminder-days")
		}
		if flags.Changed("unused-days") {
			s.UnusedThresholdDays, _ = flags.GetInt("unused-days")
		}
		if flags.Changed("window-days") {
			s.RenewalWindowDays, _ = flags.GetInt("window-days")
		}

		saved, err := t.UpdateSettings(cmd.Context(), s)
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), saved)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings saved:")
		printSettings(cmd.OutOrStdout(), saved)
		return nil
	})
}
