package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/cache"
	"github.com/selarassehat/rula/internal/export"
	"github.com/selarassehat/rula/internal/landmark"
	"github.com/selarassehat/rula/internal/reporting"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/series"
	"github.com/selarassehat/rula/internal/spinner"
)

// Output formats for analyze and recalc.
const (
	formatTable = "table"
	formatJSON  = "json"
)

type analyzeOptions struct {
	fps        float64
	workers    int
	csvPath    string
	reportPath string
	noSave     bool
	noCache    bool
	format     string
	maxRisk    int
	overrides  overrideFlags
}

// analyzeResult is the --format json output of analyze and recalc.
type analyzeResult struct {
	ID       string           `json:"id,omitempty"`
	Source   string           `json:"source"`
	Path     string           `json:"path,omitempty"`
	Summary  series.Summary   `json:"summary"`
	Dropped  series.Dropped   `json:"dropped"`
	Adjusted *series.Adjusted `json:"adjusted,omitempty"`
}

func newAnalyzeCommand() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <landmarks.jsonl>",
		Short: "Score every frame of a landmark recording",
		Long: `Score every frame of a landmark recording and summarise the result.

The input is the JSON Lines output of the pose engine, one object per frame.
Files ending in .gz or .zst are decompressed on the fly. Frames without a
detected pose, or missing a required landmark, are skipped and counted.

The run is saved to the results directory (paths.results in .rula.yaml)
unless --no-save is given. Adjustments given with --overrides or the inline
flags are applied to every frame and reported next to the original scores.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return analyzeE(cmd, args[0], &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "Frame rate used for frames without a timestamp (default from config, min 15)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Number of concurrent scoring workers (default from config)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "Write the per-frame table to this CSV file")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write an HTML report to this file")
	cmd.Flags().BoolVar(&opts.noSave, "no-save", false, "Do not save the run to the results directory")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Ignore the analysis cache even when enabled in config")
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "Output format: table, json")
	cmd.Flags().IntVar(&opts.maxRisk, "max-risk", 0, "Exit with code 1 when the risk level is above this level (1-4, 0 disables)")
	opts.overrides.register(cmd)

	return cmd
}

func analyzeE(cmd *cobra.Command, path string, opts *analyzeOptions) error {
	if opts.format != formatTable && opts.format != formatJSON {
		return fmt.Errorf("unknown format %q (want %s or %s)", opts.format, formatTable, formatJSON)
	}
	if opts.maxRisk < 0 || opts.maxRisk > int(risk.High) {
		return fmt.Errorf("--max-risk must be between 0 and %d", int(risk.High))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("fps") {
		opts.fps = cfg.Analysis.FPS
	}
	if !cmd.Flags().Changed("workers") {
		opts.workers = cfg.Analysis.Workers
	}
	tag := outputLanguage(cmd, cfg)

	overrides, err := opts.overrides.resolve(cmd)
	if err != nil {
		return err
	}
	hasOverrides := opts.overrides.given(cmd)

	dec, err := landmark.Open(path, opts.fps)
	if err != nil {
		return err
	}
	defer dec.Close() //nolint:errcheck
	fps := dec.FrameRate()

	var (
		c        *cache.Cache
		cacheKey string
		s        *series.Series
	)
	if cfg.CacheEnabled() && !opts.noCache {
		c = cache.New(cfg.Cache.Dir)
		cacheKey, err = cache.CacheKey(path, fps, cfg.Thresholds)
		if err != nil {
			return err
		}
		if cached, ok := c.Get(cacheKey); ok {
			slog.Debug("using cached analysis", "input", path, "key", cacheKey)
			s = cached
		}
	}

	if s == nil {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		analyzeOpts := []series.Option{
			series.WithWorkers(opts.workers),
			series.WithThresholds(cfg.Thresholds),
			series.WithLogger(slog.Default()),
		}
		if sp := startProgress(cmd.ErrOrStderr(), "analysing "+filepath.Base(path)); sp != nil {
			defer sp.Stop()
			analyzeOpts = append(analyzeOpts, series.WithProgress(func(e series.ProgressEvent) {
				sp.Update(fmt.Sprintf("analysing %s %d/%d", filepath.Base(path), e.Done, e.Total))
			}))
		}

		s, err = series.AnalyzeSource(ctx, dec, analyzeOpts...)
		if err != nil {
			return fmt.Errorf("analysing %s: %w", path, err)
		}
		if c != nil {
			if err := c.Put(cacheKey, s); err != nil {
				slog.Warn("failed to cache analysis", "error", err)
			}
		}
	}

	if s.Len() == 0 {
		return &NoPoseError{Message: risk.NoPoseMessage(tag)}
	}

	run := export.NewRun(path, fps, cfg.Thresholds, s)
	if hasOverrides {
		adj, err := series.Recalculate(s, overrides)
		if err != nil {
			return err
		}
		run.Adjusted = adj
	}

	var savedPath string
	if !opts.noSave {
		savedPath, err = export.SaveRun(cfg.Paths.Results, run)
		if err != nil {
			return err
		}
		slog.Debug("run saved", "id", run.ID, "path", savedPath)
	}
	if err := writeArtifacts(run, opts.csvPath, opts.reportPath, tag); err != nil {
		return err
	}

	if err := printRun(cmd.OutOrStdout(), run, savedPath, opts.format, tag); err != nil {
		return err
	}
	return checkRiskGate(run, opts.maxRisk)
}

// startProgress starts a spinner on w when w is a terminal.
func startProgress(w io.Writer, message string) *spinner.Spinner {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return spinner.Start(w, message)
}

// writeArtifacts writes the optional CSV table and HTML report of a run.
func writeArtifacts(run *export.Run, csvPath, reportPath string, tag language.Tag) error {
	if csvPath != "" {
		if err := export.SaveCSV(csvPath, run.Series, run.Adjusted); err != nil {
			return err
		}
	}
	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		if err := reporting.WriteHTML(f, run, tag); err != nil {
			f.Close() //nolint:errcheck
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}
	return nil
}

// printRun writes the summary of a run in the requested format.
func printRun(w io.Writer, run *export.Run, savedPath, format string, tag language.Tag) error {
	if format == formatJSON {
		sum, err := run.Series.Summary()
		if err != nil && !errors.Is(err, series.ErrNoPoseDetected) {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(analyzeResult{
			ID:       run.ID,
			Source:   run.Source,
			Path:     savedPath,
			Summary:  sum,
			Dropped:  run.Series.Dropped,
			Adjusted: run.Adjusted,
		})
	}

	fmt.Fprint(w, reporting.FormatSummaryReport(run, tag)) //nolint:errcheck
	if savedPath != "" {
		fmt.Fprintf(w, "\nSaved: %s\n", savedPath) //nolint:errcheck
	}
	return nil
}

// checkRiskGate fails when the effective risk level is above maxRisk.
// The adjusted level wins when an adjustment was applied.
func checkRiskGate(run *export.Run, maxRisk int) error {
	if maxRisk == 0 {
		return nil
	}
	sum, err := run.Series.Summary()
	if err != nil {
		return nil
	}
	level := sum.Risk
	if run.Adjusted != nil {
		level = run.Adjusted.Summary.Risk
	}
	if int(level) > maxRisk {
		return &RiskExceededError{Level: int(level), Allowed: maxRisk}
	}
	return nil
}
