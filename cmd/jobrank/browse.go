package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/browse"
	"github.com/amishk599/jobrank/internal/model"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored postings interactively (TUI)",
	Long:  "Shows the status picker, then the ranked postings. Press a on a posting to mark it applied.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	// log output before the alt-screen starts corrupts the display
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(context.Background(), cfg, silent)
	if err != nil {
		return err
	}
	defer a.Close()

	for {
		choice, err := browse.RunStatusPicker()
		if err != nil {
			return err
		}
		if choice < 0 {
			return nil
		}
		selected := browse.StatusChoices[choice]

		jobs, err := browse.RunLoader(selected.Label, func(ctx context.Context) ([]model.Job, error) {
			return a.store.List(ctx, model.Query{Status: selected.Status})
		})
		if err != nil {
			return fmt.Errorf("loading postings: %w", err)
		}

		quit, err := browse.Run(selected.Label, jobs, a.store)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}
