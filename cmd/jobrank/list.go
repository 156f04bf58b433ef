package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/model"
)

var (
	listRole     string
	listLocation string
	listStatus   string
	listMinScore float64
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored postings, best first",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listRole, "role", "", "only titles containing this text")
	listCmd.Flags().StringVar(&listLocation, "location", "", "only locations containing this text")
	listCmd.Flags().StringVar(&listStatus, "status", "", "only postings with this status (new, seen, applied)")
	listCmd.Flags().Float64Var(&listMinScore, "min-score", 0, "only postings scoring at least this")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "maximum postings to show (0 for all)")
	rootCmd.AddCommand(listCmd)
}

func queryFromFlags(role, location, status string, minScore float64, limit int) (model.Query, error) {
	q := model.Query{Role: role, Location: location, MinScore: minScore, Limit: limit}
	if status != "" {
		s, err := model.ParseStatus(status)
		if err != nil {
			return model.Query{}, err
		}
		q.Status = s
	}
	return q, nil
}

func runList(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	q, err := queryFromFlags(listRole, listLocation, listStatus, listMinScore, listLimit)
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
	printJobs(os.Stdout, jobs)
	return nil
}
