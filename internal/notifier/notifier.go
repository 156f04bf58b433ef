// Package notifier delivers ranked postings to people.
package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

// SendTestMessage sends a sample posting through n to verify the integration.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	sim := 0.87
	return n.Notify([]model.Job{{
		ID:         "test-001",
		Company:    "jobrank",
		Title:      "Test Notification: Integration Verified",
		Location:   "Everywhere",
		Link:       "https://example.com/jobs/test",
		Source:     "test",
		PostedAt:   &now,
		FetchedAt:  now,
		Score:      12,
		Skills:     []string{"go", "sql", "kubernetes"},
		Similarity: &sim,
	}})
}

// Cap returns at most max postings. A non-positive max keeps all of them.
func Cap(jobs []model.Job, max int) []model.Job {
	if max > 0 && len(jobs) > max {
		return jobs[:max]
	}
	return jobs
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func postedText(j model.Job) string {
	if j.PostedAt == nil {
		return "Unknown"
	}
	return j.PostedAt.UTC().Format("Jan 2, 2006")
}

func skillsText(j model.Job) string {
	if len(j.Skills) == 0 {
		return "n/a"
	}
	return strings.Join(j.Skills, ", ")
}

func matchText(j model.Job) string {
	if j.Similarity == nil {
		return ""
	}
	return fmt.Sprintf("%.0f%%", *j.Similarity*100)
}
