package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/pipeline"
)

var (
	runNotifyNew bool
	runDryRun    bool
	runLimit     int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print the ranking",
	Long: "Fetches every enabled source, ranks the postings and stores them.\n" +
		"With --notify-new only unseen postings are kept, marked seen and sent to the notifier.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNotifyNew, "notify-new", false, "only keep unseen postings and notify about them")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "rank without storing anything or marking postings seen")
	runCmd.Flags().IntVarP(&runLimit, "limit", "n", 20, "number of ranked postings to print (0 for all)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up", "error", err)
		return err
	}
	defer a.Close()

	mode := pipeline.ModeAll
	if runNotifyNew {
		mode = pipeline.ModeNotifyNew
	}
	if runDryRun {
		logger.Info("dry-run mode enabled, nothing will be stored or marked as seen")
	}

	res, err := a.runOnce(ctx, mode, runDryRun)
	if err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	jobs := res.Jobs
	if runLimit > 0 && len(jobs) > runLimit {
		jobs = jobs[:runLimit]
	}
	printJobs(os.Stdout, jobs)
	return nil
}
