package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"phishguard/internal/app"
	"phishguard/internal/config"
	"phishguard/internal/logging"
)

var (
	verbose bool
	asJSON  bool

	pipeline *app.App
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "phishguard",
	Short: "PhishGuard scores web pages for phishing risk",
	Long: `PhishGuard scores web pages for phishing risk and keeps a bounded,
de-duplicated history of the verdicts.

Configuration comes from .env, the YAML file named by PHISHGUARD_CONFIG and
environment variables (STORAGE_BACKEND, LOOKUP_MODE, REDIS_ADDR, DB_URL, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		// stdout is reserved for command output (exports can be piped).
		logger = logging.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		ctx := logging.WithLogger(cmd.Context(), logger)
		cmd.SetContext(ctx)

		pipeline, err = app.Build(ctx, cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if pipeline != nil {
			pipeline.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")

	rootCmd.AddCommand(scanCmd, historyCmd, exportCmd, importCmd, enqueueCmd)
	rootCmd.SetContext(context.Background())
}
