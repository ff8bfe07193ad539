package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/reporting"
	"github.com/selarassehat/rula/internal/series"
	"github.com/selarassehat/rula/internal/wizard"
)

// runWizard is a test hook for replacing the interactive form.
var runWizard = wizard.RunAdjustmentWizard

func newAdjustCommand() *cobra.Command {
	var (
		save          bool
		overridesPath string
	)

	cmd := &cobra.Command{
		Use:   "adjust <run.json>",
		Short: "Interactively apply manual adjustments to a saved run",
		Long: `Interactively apply manual adjustments to a saved run.

The form starts from the adjustments detected in more than half of the
frames, plus the default factors. The run is rescored with the answers and
the original and adjusted summaries are printed side by side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tag := outputLanguage(cmd, cfg)

			path := args[0]
			run, err := export.LoadRun(path)
			if err != nil {
				return err
			}

			initial := series.SuggestOverrides(run.Series)
			if run.Adjusted != nil {
				initial = run.Adjusted.Overrides
			}
			o, err := runWizard(cmd.InOrStdin(), cmd.OutOrStdout(), initial, tag)
			if err != nil {
				return err
			}

			adj, err := recalculate(run, o, tag)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			original, _ := run.Series.Summary()
			fmt.Fprint(w, reporting.FormatComparison(original, adj, tag)) //nolint:errcheck

			if overridesPath != "" {
				data, err := wizard.MarshalOverrides(o)
				if err != nil {
					return err
				}
				if err := os.WriteFile(overridesPath, data, 0o644); err != nil {
					return fmt.Errorf("writing overrides: %w", err)
				}
				fmt.Fprintf(w, "Overrides written: %s\n", overridesPath) //nolint:errcheck
			}
			if save {
				run.Adjusted = adj
				saved, err := export.SaveRun(filepath.Dir(path), run)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Saved: %s\n", saved) //nolint:errcheck
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the adjustment in the run file")
	cmd.Flags().StringVar(&overridesPath, "write-overrides", "", "Write the answers as an overrides document for recalc --overrides")

	return cmd
}
