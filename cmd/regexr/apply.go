package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/regexr/internal/controller"
	"github.com/mark3labs/regexr/internal/export"
	"github.com/mark3labs/regexr/internal/session"
	"github.com/mark3labs/regexr/internal/tui/theme"
	"github.com/mark3labs/regexr/internal/tui/wizard"
	"github.com/spf13/cobra"
)

var applyFlags struct {
	file   string
	text   string
	out    string
	export bool
	api    string
	rows   int
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run one find/replace without the wizard",
	Long: `Upload a file, apply an instruction and print the result, without the
interactive wizard.

The summary and the first processed rows are printed as a table. Use --out to
write every processed row to a CSV file, or --export to write it to the
configured export directory.`,
	Example: `  regexr apply --file customers.csv --text "replace emails with HIDDEN"
  regexr apply -f data.xlsx -t "mask phone numbers" --out masked.csv`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyFlags.file, "file", "f", "", "CSV or Excel file to process (required)")
	applyCmd.Flags().StringVarP(&applyFlags.text, "text", "t", "", "What to find and replace, in plain language (required)")
	applyCmd.Flags().StringVarP(&applyFlags.out, "out", "o", "", "Write all processed rows to this CSV file")
	applyCmd.Flags().BoolVar(&applyFlags.export, "export", false, "Write all processed rows to the export directory")
	applyCmd.Flags().StringVar(&applyFlags.api, "api", "", "Processing service base URL (default: from config)")
	applyCmd.Flags().IntVar(&applyFlags.rows, "rows", wizard.ResultRowLimit, "Processed rows to print")
	_ = applyCmd.MarkFlagRequired("file")
	_ = applyCmd.MarkFlagRequired("text")
}

func runApply(cmd *cobra.Command, args []string) error {
	if applyFlags.rows < 0 {
		return fmt.Errorf("rows must be >= 0")
	}

	env, err := loadEnv(applyFlags.api)
	if err != nil {
		return err
	}

	snap, err := controller.Run(cmd.Context(), env.client, applyFlags.file, applyFlags.text)
	if err != nil {
		if snap.HasError {
			return fmt.Errorf("%s: %w", snap.Error, err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	printResult(out, snap, applyFlags.rows)

	var written []string
	if applyFlags.out != "" {
		path, err := export.ToFile(applyFlags.out, snap.Result)
		if err != nil {
			return err
		}
		written = append(written, path)
	}
	if applyFlags.export {
		path, err := export.ToDir(env.cfg.ExportDir, snap.SelectedFile.Name, snap.Result)
		if err != nil {
			return err
		}
		written = append(written, path)
	}
	for _, path := range written {
		_, _ = fmt.Fprintf(out, "\nExported to %s\n", path)
	}
	return nil
}

// printResult writes the summary, diagnostics and first rows of a finished
// run.
func printResult(w io.Writer, snap session.Snapshot, limit int) {
	s := theme.Current().S()
	r := snap.Result

	_, _ = fmt.Fprintln(w, s.Success.Render("✓ Processed "+snap.SelectedFile.Name))
	_, _ = fmt.Fprintln(w, r.Summary())

	if diags := r.Diagnostics(); len(diags) > 0 {
		parts := make([]string, 0, len(diags))
		for _, d := range diags {
			parts = append(parts, d[0]+": "+d[1])
		}
		_, _ = fmt.Fprintln(w, s.Muted.Render(strings.Join(parts, "  •  ")))
	}
	if r.Message != "" {
		_, _ = fmt.Fprintln(w, r.Message)
	}

	if limit == 0 {
		return
	}
	if len(r.Rows) == 0 {
		_, _ = fmt.Fprintln(w, s.Muted.Render("No rows returned"))
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, wizard.ResultTable(r, limit, 120))
	if len(r.Rows) > limit {
		_, _ = fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("Showing first %d of %d rows", limit, len(r.Rows))))
	}
}
