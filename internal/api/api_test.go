package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobrank/internal/model"
	"github.com/amishk599/jobrank/internal/pipeline"
	"github.com/amishk599/jobrank/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	jobs := []model.Job{
		{ID: "a", Title: "Backend Engineer", Company: "Acme", Location: "Remote", Link: "https://x.io/a", Source: "acme", FetchedAt: now, Score: 12, Skills: []string{"go"}, Status: model.StatusNew},
		{ID: "b", Title: "Data Analyst", Company: "Beta", Location: "Berlin", Link: "https://x.io/b", Source: "beta", FetchedAt: now, Score: 4, Status: model.StatusNew},
	}
	require.NoError(t, s.Upsert(context.Background(), jobs))
	return s
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := New(store.NewNopGateway(), nil, nil, discardLogger())
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListJobs(t *testing.T) {
	srv := New(seededStore(t), nil, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/jobs")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs  []jobResponse `json:"jobs"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	assert.Equal(t, "a", body.Jobs[0].ID, "highest score first")
	assert.Equal(t, []string{}, body.Jobs[1].Skills)
}

func TestListJobsFilters(t *testing.T) {
	srv := New(seededStore(t), nil, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/jobs?role=analyst&min_score=1&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []jobResponse `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Jobs, 1)
	assert.Equal(t, "b", body.Jobs[0].ID)
}

func TestListJobsBadParams(t *testing.T) {
	srv := New(store.NewNopGateway(), nil, nil, discardLogger())

	for _, path := range []string{
		"/api/v1/jobs?status=archived",
		"/api/v1/jobs?min_score=high",
		"/api/v1/jobs?limit=-1",
	} {
		rec := do(t, srv.Handler(), http.MethodGet, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetJob(t *testing.T) {
	srv := New(seededStore(t), nil, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/api/v1/jobs/a")
	require.Equal(t, http.StatusOK, rec.Code)
	var job jobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "Backend Engineer", job.Title)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/v1/jobs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkApplied(t *testing.T) {
	s := seededStore(t)
	srv := New(s, nil, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/jobs/b/applied")
	require.Equal(t, http.StatusOK, rec.Code)

	job, err := s.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, job.Status)

	rec = do(t, srv.Handler(), http.MethodPost, "/api/v1/jobs/missing/applied")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTriggerRun(t *testing.T) {
	run := func(context.Context) (*pipeline.Result, error) {
		return &pipeline.Result{
			RunID:     "run-1",
			Fetched:   3,
			Persisted: 2,
			Sources: []pipeline.SourceReport{
				{Name: "acme", Kind: model.KindLever, Records: 3},
				{Name: "beta", Kind: model.KindFeed, Err: errors.New("timeout")},
			},
		}, nil
	}
	srv := New(store.NewNopGateway(), run, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/runs")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body runResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	assert.Equal(t, "1 of 2 sources returned results", body.Summary)
	assert.Equal(t, 2, body.Persisted)
	require.Len(t, body.Sources, 2)
	assert.Equal(t, "timeout", body.Sources[1].Error)
}

func TestTriggerRunTotalFailure(t *testing.T) {
	run := func(context.Context) (*pipeline.Result, error) {
		return nil, &pipeline.TotalFailureError{Sources: []pipeline.SourceReport{
			{Name: "acme", Kind: model.KindLever, Err: errors.New("boom")},
		}}
	}
	srv := New(store.NewNopGateway(), run, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "boom")
}

func TestTriggerRunWhileBusy(t *testing.T) {
	run := func(context.Context) (*pipeline.Result, error) {
		return nil, fmt.Errorf("notify run: %w", pipeline.ErrRunInProgress)
	}
	srv := New(store.NewNopGateway(), run, nil, discardLogger())

	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in progress")
}

func TestRunsRouteAbsentWithoutRunner(t *testing.T) {
	srv := New(store.NewNopGateway(), nil, nil, discardLogger())
	rec := do(t, srv.Handler(), http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "jobrank_runs_total 1\n")
	})
	srv := New(store.NewNopGateway(), nil, metrics, discardLogger())

	rec := do(t, srv.Handler(), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jobrank_runs_total")
}
