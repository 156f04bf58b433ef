package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/export"
)

var (
	exportOut      string
	exportStatus   string
	exportMinScore float64
	exportLimit    int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored postings to an Excel workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "jobrank.xlsx", "output .xlsx path")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only postings with this status (new, seen, applied)")
	exportCmd.Flags().Float64Var(&exportMinScore, "min-score", 0, "only postings scoring at least this")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 0, "maximum postings to export (0 for all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	q, err := queryFromFlags("", "", exportStatus, exportMinScore, exportLimit)
	if err != nil {
		return err
	}

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

	jobs, err := a.store.List(ctx, q)
	if err != nil {
		return err
	}
	if err := export.SaveAs(exportOut, jobs); err != nil {
		return err
	}
	fmt.Printf("Exported %d postings to %s\n", len(jobs), exportOut)
	return nil
}
