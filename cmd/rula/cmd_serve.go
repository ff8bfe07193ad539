package main

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/selarassehat/rula/internal/webserver"
)

func newServeCommand() *cobra.Command {
	var (
		port       int
		resultsDir string
		noBrowser  bool
		origins    []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved runs over a local HTTP API",
		Long: `Serve saved runs over a local HTTP API.

The server binds to 127.0.0.1 and reads run files from the results
directory. Endpoints:
  GET  /api/health
  GET  /api/summary
  GET  /api/runs
  GET  /api/runs/{id}
  GET  /api/runs/{id}/suggested-overrides
  POST /api/runs/{id}/recalculate[?save=true]
  GET  /api/runs/{id}/csv
  GET  /api/runs/{id}/report

Responses are localized from ?lang= or the Accept-Language header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Server.Port
			}
			if !cmd.Flags().Changed("results") {
				resultsDir = cfg.Paths.Results
			}

			srv, err := webserver.New(webserver.Config{
				Port:           port,
				ResultsDir:     resultsDir,
				NoBrowser:      noBrowser,
				AllowedOrigins: origins,
				Out:            cmd.OutOrStdout(),
				Logger:         slog.Default(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 3000)")
	cmd.Flags().StringVar(&resultsDir, "results", "", "Results directory (default from config)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the index page in a browser")
	cmd.Flags().StringArrayVar(&origins, "cors-origin", nil, "Allowed CORS origin (can be repeated)")

	return cmd
}
