package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/config"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobrank",
	Short: "Aggregate, dedupe and rank job postings",
	Long:  "jobrank pulls postings from job boards and feeds, drops the ones you've already seen, and ranks the rest against your preferences.",
	// Default to `start` so that `jobrank` with no args runs the daemon.
	RunE:          runStart,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBRANK_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path, loads any .env next to it and parses it.
// Priority: explicit path arg > JOBRANK_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBRANK_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	if err := config.LoadDotEnv(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
