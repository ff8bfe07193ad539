package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/reporting"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/rula"
	"github.com/selarassehat/rula/internal/series"
)

func newRecalcCommand() *cobra.Command {
	var (
		overrides overrideFlags
		csvPath   string
		format    string
		save      bool
	)

	cmd := &cobra.Command{
		Use:   "recalc <run.json|results.csv>",
		Short: "Rescore a saved run under manual adjustments",
		Long: `Rescore a saved run under manual adjustments.

The input is a run file from the results directory or a CSV table written
by analyze --csv. Every frame is rescored from its stored angles with the
given adjustments replacing the detected ones; the original and adjusted
summaries are printed side by side.

Adjustments come from an --overrides document, the inline flags, or both
(inline flags win). With --save the adjustment is stored in the run file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatTable, formatJSON)
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tag := outputLanguage(cmd, cfg)

			o, err := overrides.resolve(cmd)
			if err != nil {
				return err
			}

			path := args[0]
			run, err := loadRunOrCSV(path)
			if err != nil {
				return err
			}
			if save && isCSV(path) {
				return fmt.Errorf("--save needs a run file, not a CSV table")
			}

			adj, err := recalculate(run, o, tag)
			if err != nil {
				return err
			}

			if csvPath != "" {
				if err := export.SaveCSV(csvPath, run.Series, adj); err != nil {
					return err
				}
			}
			var savedPath string
			if save {
				run.Adjusted = adj
				if savedPath, err = export.SaveRun(filepath.Dir(path), run); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if format == formatJSON {
				sum, _ := run.Series.Summary()
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(analyzeResult{
					ID:       run.ID,
					Source:   run.Source,
					Path:     savedPath,
					Summary:  sum,
					Dropped:  run.Series.Dropped,
					Adjusted: adj,
				})
			}
			original, _ := run.Series.Summary()
			fmt.Fprint(w, reporting.FormatComparison(original, adj, tag)) //nolint:errcheck
			if savedPath != "" {
				fmt.Fprintf(w, "\nSaved: %s\n", savedPath) //nolint:errcheck
			}
			return nil
		},
	}

	overrides.register(cmd)
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the table with the adjusted_rula_score column to this CSV file")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json")
	cmd.Flags().BoolVar(&save, "save", false, "Store the adjustment in the run file")

	return cmd
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// loadRunOrCSV loads a run file, or wraps a CSV table in a run named after
// the file.
func loadRunOrCSV(path string) (*export.Run, error) {
	if !isCSV(path) {
		return export.LoadRun(path)
	}
	s, err := export.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return &export.Run{
		ID:     strings.TrimSuffix(base, filepath.Ext(base)),
		Source: path,
		Series: s,
	}, nil
}

// recalculate rescores run under o, turning an empty series into a
// NoPoseError.
func recalculate(run *export.Run, o rula.Overrides, tag language.Tag) (*series.Adjusted, error) {
	adj, err := series.Recalculate(run.Series, o)
	if errors.Is(err, series.ErrNoPoseDetected) {
		return nil, &NoPoseError{Message: risk.NoPoseMessage(tag)}
	}
	return adj, err
}
