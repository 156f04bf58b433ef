package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/amishk599/jobrank/internal/model"
)

// printJobs renders jobs, in the order given, as a table.
func printJobs(w io.Writer, jobs []model.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No postings.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Score", "Title", "Company", "Location", "Posted", "Match", "Status", "ID"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, WidthMax: 48},
		{Number: 5, WidthMax: 28},
	})

	for i, j := range jobs {
		posted := "-"
		if j.PostedAt != nil {
			posted = j.PostedAt.Format("2006-01-02")
		}
		match := "-"
		if j.Similarity != nil {
			match = fmt.Sprintf("%.0f%%", *j.Similarity*100)
		}
		t.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.1f", j.Score),
			j.Title,
			j.Company,
			j.Location,
			posted,
			match,
			string(j.Status),
			j.ID,
		})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d postings", len(jobs))})
	t.Render()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
