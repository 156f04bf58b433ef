package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/amishk599/jobrank/internal/model"
)

func exportJobs() []model.Job {
	posted := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	sim := 0.5
	return []model.Job{
		{ID: "a", Title: "Backend Engineer", Company: "Acme", Location: "Remote", Score: 14, RoleRelevance: 100, Similarity: &sim, Skills: []string{"go", "sql"}, PostedAt: &posted, Status: model.StatusNew, Source: "acme", Link: "https://x.io/a"},
		{ID: "b", Title: "Data Analyst", Company: "Beta", Location: "Berlin", Score: 3, Status: model.StatusApplied, Source: "beta", Link: "https://x.io/b"},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exportJobs()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"1", "Backend Engineer", "Acme", "Remote", "14", "100", "50%", "go, sql", "2024-04-02", "new", "acme", "https://x.io/a"}, rows[1])
	assert.Equal(t, "applied", rows[2][9])
	assert.Equal(t, "", rows[2][6], "no resume match")
}

func TestSaveAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveAs(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rank", rows[0][0])
}
