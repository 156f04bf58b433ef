package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobrank/internal/pipeline"
)

var _ pipeline.Recorder = (*Metrics)(nil)

func TestRecorder(t *testing.T) {
	m := New()

	m.SourceFetched("acme", 12)
	m.SourceFetched("acme", 3)
	m.SourceFailed("beta")
	m.RecordsDropped("acme", 2)
	m.RunFinished("ok", 13, 2*time.Second)
	m.RunFinished("failed", 0, time.Second)

	assert.Equal(t, 15.0, testutil.ToFloat64(m.RecordsFetched.WithLabelValues("acme")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceFailures.WithLabelValues("beta")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedRecords.WithLabelValues("acme")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, 13.0, testutil.ToFloat64(m.PostingsPersisted))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RunDuration))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.SourceFailed("acme")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SourceFailures.WithLabelValues("acme")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SourceFailures.WithLabelValues("acme")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RunFinished("ok", 4, time.Second)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `jobrank_runs_total{outcome="ok"} 1`)
	assert.Contains(t, string(body), "jobrank_postings_persisted_total 4")
	assert.Contains(t, string(body), "go_goroutines")
}
