package cli

import (
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	return withTracker(func(cfg *config.Config, t *tracker.Tracker) error {
		sub, err := resolveSubscription(cmd, t, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, sub)
		}
		printSubscription(out, *sub, t, newMoney(cfg.Display.Currency))
		return nil
	})
}
