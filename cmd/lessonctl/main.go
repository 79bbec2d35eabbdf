package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/in-nis/lessonboard/internal/app"
	"github.com/in-nis/lessonboard/internal/config"
	"github.com/in-nis/lessonboard/internal/cron"
	"github.com/in-nis/lessonboard/internal/logging"
	"github.com/in-nis/lessonboard/internal/pipeline"
	"github.com/in-nis/lessonboard/internal/privacy"
	"github.com/in-nis/lessonboard/internal/processor"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lessonctl",
	Short: "Run the lesson schedule pipeline from the command line",
	Long: `lessonctl processes booking exports and instructor rosters stored under
STORAGE_ROOT and publishes the schedule document, without starting the server.

Configuration is read from the environment (and .env) exactly like the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg := config.Load()
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		var err error
		logger, err = logging.New(level, cfg.LogDev)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var processCmd = &cobra.Command{
	Use:   "process [key...]",
	Short: "Process input objects and publish the schedule",
	Long: `Runs the pipeline once per key (e.g. orders/orders-2025-12-28-090000.tsv or
instructors/roster-2025-12-28.json). Without keys the latest orders export is
reprocessed. Prints the per-file results as JSON and fails if any file failed.`,
	RunE: runProcess,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the orders export once and process it",
	RunE:  runFetch,
}

var abbreviateCmd = &cobra.Command{
	Use:   "abbreviate [name...]",
	Short: "Show how names are redacted on the public schedule",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, privacy.Abbreviate(name))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(processCmd, fetchCmd, abbreviateCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	a, err := app.New(config.Load(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	triggers := []pipeline.Trigger{{Bucket: a.Config.InputBucket}}
	if len(args) > 0 {
		triggers = triggers[:0]
		for _, key := range args {
			triggers = append(triggers, pipeline.Trigger{Bucket: a.Config.InputBucket, Key: key})
		}
	}

	return report(cmd, a.Processor.Handle(cmd.Context(), triggers))
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := app.New(config.Load(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Config.OrdersURL == "" {
		return fmt.Errorf("ORDERS_URL is not set")
	}
	key, err := cron.NewFetcher(a.Config.OrdersURL, a.Files, a.Config.InputBucket, logger).Fetch(cmd.Context())
	if err != nil {
		return err
	}
	return report(cmd, a.Processor.Handle(cmd.Context(), []pipeline.Trigger{{Bucket: a.Config.InputBucket, Key: key}}))
}

func report(cmd *cobra.Command, resp processor.Response) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	for _, r := range resp.Results {
		if r.Status == processor.StatusError {
			return fmt.Errorf("processing failed for %q", r.Key)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
