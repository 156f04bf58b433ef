package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/amishk599/jobrank/internal/model"
)

const jobColumns = `id, title, company, location, description, link, source, posted_at,
	fetched_at, score, skills, role_relevance, similarity, status`

// upsertJob inserts a posting or replaces its content. A row whose stored
// fetched_at is newer than the incoming one is left alone. Re-ingestion moves
// new to seen; applied is sticky.
const upsertJob = `INSERT INTO jobs (` + jobColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'new')
	ON CONFLICT (id) DO UPDATE SET
		title = excluded.title,
		company = excluded.company,
		location = excluded.location,
		description = excluded.description,
		link = excluded.link,
		source = excluded.source,
		posted_at = excluded.posted_at,
		fetched_at = excluded.fetched_at,
		score = excluded.score,
		skills = excluded.skills,
		role_relevance = excluded.role_relevance,
		similarity = excluded.similarity,
		status = CASE WHEN jobs.status = 'applied' THEN 'applied' ELSE 'seen' END
	WHERE excluded.fetched_at >= jobs.fetched_at`

// jobRow is the storage shape of model.Job.
type jobRow struct {
	ID            string          `db:"id"`
	Title         string          `db:"title"`
	Company       string          `db:"company"`
	Location      string          `db:"location"`
	Description   string          `db:"description"`
	Link          string          `db:"link"`
	Source        string          `db:"source"`
	PostedAt      sql.NullInt64   `db:"posted_at"`
	FetchedAt     int64           `db:"fetched_at"`
	Score         float64         `db:"score"`
	Skills        string          `db:"skills"`
	RoleRelevance float64         `db:"role_relevance"`
	Similarity    sql.NullFloat64 `db:"similarity"`
	Status        string          `db:"status"`
}

func (r jobRow) toJob() (model.Job, error) {
	j := model.Job{
		ID:            r.ID,
		Title:         r.Title,
		Company:       r.Company,
		Location:      r.Location,
		Description:   r.Description,
		Link:          r.Link,
		Source:        r.Source,
		FetchedAt:     time.UnixMilli(r.FetchedAt).UTC(),
		Score:         r.Score,
		RoleRelevance: r.RoleRelevance,
		Status:        model.Status(r.Status),
	}
	if r.PostedAt.Valid {
		t := time.UnixMilli(r.PostedAt.Int64).UTC()
		j.PostedAt = &t
	}
	if r.Similarity.Valid {
		v := r.Similarity.Float64
		j.Similarity = &v
	}
	if r.Skills != "" {
		if err := json.Unmarshal([]byte(r.Skills), &j.Skills); err != nil {
			return model.Job{}, fmt.Errorf("decoding skills of job %s: %w", r.ID, err)
		}
	}
	return j, nil
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func skillsJSON(skills []string) string {
	if len(skills) == 0 {
		return "[]"
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Upsert stores jobs in one transaction, keyed by identity.
func (s *SQLStore) Upsert(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(upsertJob)
		for _, j := range jobs {
			_, err := tx.ExecContext(ctx, q,
				j.ID, j.Title, j.Company, j.Location, j.Description, j.Link, j.Source,
				nullMillis(j.PostedAt), j.FetchedAt.UnixMilli(), j.Score, skillsJSON(j.Skills),
				j.RoleRelevance, nullFloat(j.Similarity),
			)
			if err != nil {
				return fmt.Errorf("upserting job %s: %w", j.ID, err)
			}
		}
		return nil
	})
}

// Get returns one posting by identity, or model.ErrNotFound.
func (s *SQLStore) Get(ctx context.Context, id string) (model.Job, error) {
	var row jobRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Job{}, model.ErrNotFound
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("getting job %s: %w", id, err)
	}
	return row.toJob()
}

// List returns postings matching q, ordered by score, then posted date
// (unknown dates last), then fetch time.
func (s *SQLStore) List(ctx context.Context, q model.Query) ([]model.Job, error) {
	var (
		where []string
		args  []any
	)
	if q.Role != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Role)+"%")
	}
	if q.Location != "" {
		where = append(where, "LOWER(location) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Location)+"%")
	}
	if q.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.MinScore > 0 {
		where = append(where, "score >= ?")
		args = append(args, q.MinScore)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY score DESC, COALESCE(posted_at, 0) DESC, fetched_at DESC, id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	jobs := make([]model.Job, len(rows))
	for i, r := range rows {
		j, err := r.toJob()
		if err != nil {
			return nil, fmt.Errorf("listing jobs: %w", err)
		}
		jobs[i] = j
	}
	return jobs, nil
}

// SetStatus changes the lifecycle flag of one posting.
func (s *SQLStore) SetStatus(ctx context.Context, id string, status model.Status) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE jobs SET status = ? WHERE id = ?`), string(status), id)
	if err != nil {
		return fmt.Errorf("setting status of job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("setting status of job %s: %w", id, err)
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpdateScores rewrites the scoring fields of stored postings without touching
// content, fetched_at or status.
func (s *SQLStore) UpdateScores(ctx context.Context, jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		q := tx.Rebind(`UPDATE jobs SET score = ?, skills = ?, role_relevance = ?, similarity = ? WHERE id = ?`)
		for _, j := range jobs {
			if _, err := tx.ExecContext(ctx, q, j.Score, skillsJSON(j.Skills), j.RoleRelevance, nullFloat(j.Similarity), j.ID); err != nil {
				return fmt.Errorf("updating scores of job %s: %w", j.ID, err)
			}
		}
		return nil
	})
}

// Clear deletes every stored posting.
func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return fmt.Errorf("clearing jobs: %w", err)
	}
	return nil
}

// RecordRun appends a run summary to the runs table.
func (s *SQLStore) RecordRun(ctx context.Context, run model.RunRecord) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO runs
		(id, started_at, finished_at, fetched, persisted, sources_ok, sources_failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
		run.Fetched, run.Persisted, run.SourcesOK, run.SourcesFailed,
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}
	return nil
}

// runRow is the storage shape of model.RunRecord.
type runRow struct {
	ID            string `db:"id"`
	StartedAt     int64  `db:"started_at"`
	FinishedAt    int64  `db:"finished_at"`
	Fetched       int    `db:"fetched"`
	Persisted     int    `db:"persisted"`
	SourcesOK     int    `db:"sources_ok"`
	SourcesFailed int    `db:"sources_failed"`
}

// RecentRuns returns the latest runs, newest first.
func (s *SQLStore) RecentRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	var rows []runRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`SELECT id, started_at, finished_at, fetched, persisted,
		sources_ok, sources_failed FROM runs ORDER BY started_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	runs := make([]model.RunRecord, len(rows))
	for i, r := range rows {
		runs[i] = model.RunRecord{
			ID:            r.ID,
			StartedAt:     time.UnixMilli(r.StartedAt).UTC(),
			FinishedAt:    time.UnixMilli(r.FinishedAt).UTC(),
			Fetched:       r.Fetched,
			Persisted:     r.Persisted,
			SourcesOK:     r.SourcesOK,
			SourcesFailed: r.SourcesFailed,
		}
	}
	return runs, nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
