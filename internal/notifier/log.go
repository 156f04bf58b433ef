package notifier

import (
	"log/slog"

	"github.com/amishk599/jobrank/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes ranked postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting in rank order. It never fails.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for i, j := range jobs {
		args := []any{
			"rank", i + 1,
			"score", j.Score,
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"link", j.Link,
		}
		if len(j.Skills) > 0 {
			args = append(args, "skills", j.Skills)
		}
		if j.Similarity != nil {
			args = append(args, "resume_match", *j.Similarity)
		}
		if j.PostedAt != nil {
			args = append(args, "posted_at", *j.PostedAt)
		}
		if j.CVPath != "" {
			args = append(args, "cv", j.CVPath)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
