package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/model"
)

var appliedCmd = &cobra.Command{
	Use:   "applied <id>",
	Short: "Mark a stored posting as applied",
	Long:  "Marks a posting as applied. Applied postings keep that status when later runs see them again.",
	Args:  cobra.ExactArgs(1),
	RunE:  runApplied,
}

func init() {
	rootCmd.AddCommand(appliedCmd)
}

func runApplied(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	if err := a.store.SetStatus(ctx, id, model.StatusApplied); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("no stored posting with id %s", id)
		}
		return err
	}
	fmt.Printf("Marked %s as applied.\n", id)
	return nil
}
