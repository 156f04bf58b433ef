package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

func TestQueryFromFlags(t *testing.T) {
	q, err := queryFromFlags("engineer", "remote", "Applied", 2.5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := model.Query{Role: "engineer", Location: "remote", Status: model.StatusApplied, MinScore: 2.5, Limit: 10}
	if q != want {
		t.Errorf("got %+v, want %+v", q, want)
	}

	if _, err := queryFromFlags("", "", "archived", 0, 0); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestPrintJobs(t *testing.T) {
	posted := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sim := 0.73
	var buf bytes.Buffer
	printJobs(&buf, []model.Job{
		{ID: "abc", Title: "Go Engineer", Company: "Acme", Location: "Remote", Score: 12.5, PostedAt: &posted, Similarity: &sim, Status: model.StatusNew},
		{ID: "def", Title: "Analyst", Company: "Beta", Score: 1, Status: model.StatusApplied},
	})

	out := buf.String()
	for _, want := range []string{"Go Engineer", "12.5", "2024-06-01", "73%", "applied", "2 postings"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintJobsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printJobs(&buf, nil)
	if got := strings.TrimSpace(buf.String()); got != "No postings." {
		t.Errorf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("  short  ", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("got %q", got)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobrank.yaml")
	yaml := "sources:\n  - name: acme\n    kind: lever\n    board_token: acme\n    company: Acme\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOBRANK_CONFIG", path)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "acme" {
		t.Errorf("unexpected sources: %+v", cfg.Sources)
	}
}
