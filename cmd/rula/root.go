package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/selarassehat/rula/internal/projectconfig"
	"github.com/selarassehat/rula/internal/risk"
	"github.com/selarassehat/rula/internal/webapi"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rula",
		Short: "rula - RULA ergonomic scoring of recorded postures",
		Long: `rula scores recorded working postures with the Rapid Upper Limb
Assessment (RULA) method.

It reads the body landmarks produced by a pose-estimation engine, scores
every frame, summarises the recording into a risk level, and lets an
assessor apply the adjustments that cannot be seen from the recording.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("lang", "", "Output language: en or id (default from .rula.yaml)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newAnalyzeCommand())
	cmd.AddCommand(newRecalcCommand())
	cmd.AddCommand(newAdjustCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newTablesCommand())
	cmd.AddCommand(newCacheCommand())

	return cmd
}

func execute() error {
	webapi.Version = version
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadConfig reads .rula.yaml from the working directory or its parents.
func loadConfig() (*projectconfig.ProjectConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

// outputLanguage resolves --lang, falling back to the configured language.
func outputLanguage(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) language.Tag {
	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = cfg.Analysis.Language
	}
	return risk.MatchLanguage(lang)
}
