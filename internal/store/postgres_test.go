package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobrank/internal/model"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "postgres")), mock
}

func TestPostgres_UpsertUsesDollarPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)
	j := testJob("a", "Go Engineer", 4, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'new')")+".*ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs("a", "Go Engineer", "Acme", "Remote", "", "https://x.io/a", "test",
			sqlmock.AnyArg(), j.FetchedAt.UnixMilli(), 4.0, `["go","sql"]`, 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Upsert(context.Background(), []model.Job{j}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpsertFailureRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO jobs").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := s.Upsert(context.Background(), []model.Job{testJob("a", "A", 1, time.Now())})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListFilters(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "title", "company", "location", "description", "link", "source",
		"posted_at", "fetched_at", "score", "skills", "role_relevance", "similarity", "status"}).
		AddRow("a", "Go Engineer", "Acme", "Remote", "d", "https://x.io/a", "test",
			nil, int64(1772323200000), 7.0, `["go"]`, 0.0, nil, "new")

	mock.ExpectQuery(`FROM jobs WHERE LOWER\(title\) LIKE \$1 AND status = \$2 ORDER BY score DESC, COALESCE\(posted_at, 0\) DESC.* LIMIT \$3`).
		WithArgs("%engineer%", "new", int64(5)).
		WillReturnRows(rows)

	jobs, err := s.List(context.Background(), model.Query{Role: "Engineer", Status: model.StatusNew, Limit: 5})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Engineer", jobs[0].Title)
	assert.Nil(t, jobs[0].PostedAt)
	assert.Nil(t, jobs[0].Similarity)
	assert.Equal(t, []string{"go"}, jobs[0].Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SetStatusNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE jobs SET status = $1 WHERE id = $2")).
		WithArgs("applied", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetStatus(context.Background(), "nope", model.StatusApplied)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_MarkSeenOnConflictDoNothing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO seen_jobs .* ON CONFLICT \(job_id\) DO NOTHING`).
		WithArgs("a", "T", "https://x.io/a", "src", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.MarkSeen(context.Background(), "a", model.SeenMeta{Title: "T", Link: "https://x.io/a", Source: "src"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`FROM jobs WHERE id = \$1`).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
