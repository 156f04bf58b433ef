package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/amishk599/jobrank/internal/adapter"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of all configured sources.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	reg := adapter.NewRegistry(nil)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Kind", "Target", "Company", "Status"})

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		d := s.Descriptor()
		target := d.URL
		if target == "" {
			target = d.BoardToken
		}

		status := "enabled"
		switch {
		case !s.IsEnabled():
			status = "disabled"
			disabled++
		case !reg.Supports(d.Kind):
			status = "unsupported kind"
			enabled++
		default:
			enabled++
		}
		t.AppendRow(table.Row{d.Name, d.Kind, truncate(target, 60), d.Company, status})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%d (%d enabled, %d disabled)", len(cfg.Sources), enabled, disabled)})
	t.Render()
	return nil
}
