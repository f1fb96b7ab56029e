package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/subguard/internal/config"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
	"github.com/ogulcanaydogan/subguard/pkg/transfer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import subscriptions from a file",
	Long: fmt.Sprintf(`Bulk-import subscriptions. The format is taken from --format or the file
extension (%s). Rows missing a name or cost are skipped and reported.
Use "-" to read from stdin.`, strings.Join(transfer.Formats(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export subscriptions to a file",
	Long:  `Export subscriptions as CSV, JSON or XLSX. Without a file, output goes to stdout.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	importCmd.Flags().StringP("format", "f", "", "Input format (default: from file extension, else csv)")
	exportCmd.Flags().StringP("format", "f", "", "Output format (default: from file extension, else csv)")
	exportCmd.Flags().StringP("status", "s", "", "Filter by status")
	exportCmd.Flags().String("category", "", "Filter by category")
}

// codecFor picks the codec named by the flag, else by the file extension, else CSV.
func codecFor(format, path string) (transfer.Codec, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	if format == "" {
		format = "csv"
	}
	return transfer.Get(format)
}

func runImport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	path := args[0]

	codec, err := codecFor(format, path)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	return withTracker(func(_ *config.Config, t *tracker.Tracker) error {
		report, err := t.Import(cmd.Context(), codec, r)
		if err != nil {
			return fmt.Errorf("import subscriptions: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, report)
		}
		fmt.Fprintf(out, "Imported %d subscription(s)\n", report.Imported)
		if len(report.Skipped) > 0 {
			fmt.Fprintf(out, "Skipped %d row(s):\n", len(report.Skipped))
			for _, s := range report.Skipped {
				if s.Line > 0 {
					fmt.Fprintf(out, "  line %d: %s\n", s.Line, s.Reason)
				} else {
					fmt.Fprintf(out, "  %s\n", s.Reason)
				}
			}
		}
		return nil
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	rawStatus, _ := cmd.Flags().GetString("status")
	category, _ := cmd.Flags().GetString("category")

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	codec, err := codecFor(format, path)
	if err != nil {
		return err
	}

	filter := model.ListFilter{Category: category}
	if rawStatus != "" {
		st, err := model.ParseStatus(rawStatus)
		if err != nil {
			return err
		}
		filter.Status = st
	}

	return withTracker(func(_ *config.Config, t *tracker.Tracker) error {
		if path == "" || path == "-" {
			_, err := t.Export(cmd.Context(), codec, cmd.OutOrStdout(), filter)
			return err
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		n, err := t.Export(cmd.Context(), codec, f, filter)
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close export file: %w", closeErr)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d subscription(s) to %s\n", n, path)
		return nil
	})
}
