// Package export writes ranked postings to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/amishk599/jobrank/internal/model"
)

// SheetName is the worksheet holding the postings.
const SheetName = "Postings"

// Headers is the column layout of the postings sheet.
var Headers = []string{
	"Rank", "Title", "Company", "Location", "Score", "Role Relevance",
	"Resume Match", "Skills", "Posted", "Status", "Source", "Link",
}

// Workbook builds an in-memory workbook with one row per posting, in the
// order given. The caller must close the returned file.
func Workbook(jobs []model.Job) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	if err := writeRow(f, 1, toAny(Headers)); err != nil {
		f.Close()
		return nil, err
	}

	for i, j := range jobs {
		if err := writeRow(f, i+2, jobRow(i+1, j)); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("freezing header: %w", err)
	}

	return f, nil
}

// Write renders jobs as an .xlsx document to w.
func Write(w io.Writer, jobs []model.Job) error {
	f, err := Workbook(jobs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveAs writes jobs to the .xlsx file at path.
func SaveAs(path string, jobs []model.Job) error {
	f, err := Workbook(jobs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func jobRow(rank int, j model.Job) []any {
	match := ""
	if j.Similarity != nil {
		match = fmt.Sprintf("%.0f%%", *j.Similarity*100)
	}
	posted := ""
	if j.PostedAt != nil {
		posted = j.PostedAt.Format("2006-01-02")
	}
	return []any{
		rank,
		j.Title,
		j.Company,
		j.Location,
		j.Score,
		j.RoleRelevance,
		match,
		strings.Join(j.Skills, ", "),
		posted,
		string(j.Status),
		j.Source,
		j.Link,
	}
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("setting %s: %w", cell, err)
		}
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
