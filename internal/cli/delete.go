package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a subscription",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withTracker(func(_ *config.Config, t *tracker.Tracker) error {
		sub, err := resolveSubscription(cmd, t, args[0])
		if err != nil {
			return err
		}
		if err := t.Delete(cmd.Context(), sub.ID); err != nil {
			return fmt.Errorf("delete subscription: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", sub.Name, sub.ID)
		return nil
	})
}
