package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearSeen bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored postings",
	Long:  "Deletes every stored posting. With --seen the seen history is reset too, so the next notify run surfaces everything again.",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVar(&clearSeen, "seen", false, "also reset the seen history")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
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

	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("Stored postings cleared.")

	if clearSeen {
		if err := a.seen.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("Seen history reset.")
	}
	return nil
}
