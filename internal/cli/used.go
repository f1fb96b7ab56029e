package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var usedCmd = &cobra.Command{
	Use:   "used <id>",
	Short: "Mark a subscription as used today",
	Long:  `Record today as the last day a subscription was used. Dead-weight detection measures from this date.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runUsed,
}

func init() {
	rootCmd.AddCommand(usedCmd)
}

func runUsed(cmd *cobra.Command, args []string) error {
	return withTracker(func(_ *config.Config, t *tracker.Tracker) error {
		sub, err := resolveSubscription(cmd, t, args[0])
		if err != nil {
			return err
		}
		updated, err := t.MarkUsed(cmd.Context(), sub.ID)
		if err != nil {
			return fmt.Errorf("mark used: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, updated)
		}
		fmt.Fprintf(out, "Marked %s as used on %s\n", updated.Name, model.FormatOptionalDate(updated.LastUsed))
		return nil
	})
}
