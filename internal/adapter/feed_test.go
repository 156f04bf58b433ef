package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Remote Jobs</title>
    <item>
      <title>Senior Go Engineer</title>
      <link>https://example.com/jobs/1</link>
      <guid>job-1</guid>
      <description>&lt;p&gt;Build &lt;b&gt;services&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Data Engineer</title>
      <guid>https://example.com/jobs/2</guid>
      <description>Pipelines</description>
    </item>
  </channel>
</rss>`

func TestFeedAdapter_FetchRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFixture))
	}))
	defer srv.Close()

	records, err := NewFeedAdapter(srv.URL+"/feed", "Remote Board", srv.Client()).FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.Title != "Senior Go Engineer" {
		t.Errorf("unexpected title %q", r.Title)
	}
	if r.Link != "https://example.com/jobs/1" {
		t.Errorf("unexpected link %q", r.Link)
	}
	if r.ExternalID != "job-1" {
		t.Errorf("unexpected external id %q", r.ExternalID)
	}
	if r.Company != "Remote Board" {
		t.Errorf("expected fallback company, got %q", r.Company)
	}
	if r.Date != "2006-01-02T15:04:05Z" {
		t.Errorf("unexpected date %q", r.Date)
	}

	if records[1].Link != "https://example.com/jobs/2" {
		t.Errorf("expected GUID link fallback, got %q", records[1].Link)
	}
	if records[1].Date != "" {
		t.Errorf("expected empty date, got %q", records[1].Date)
	}
}

func TestFeedAdapter_FetchRecords_NotAFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not xml"))
	}))
	defer srv.Close()

	_, err := NewFeedAdapter(srv.URL, "", srv.Client()).FetchRecords(context.Background())
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
