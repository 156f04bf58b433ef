package adapter

import (
	"context"
	"testing"
)

func TestJSONAdapter_FetchRecords_Envelope(t *testing.T) {
	payload := `{
		"job-count": 2,
		"jobs": [
			{
				"id": 1837,
				"title": "ML Engineer",
				"company_name": "Acme",
				"candidate_required_location": "Worldwide",
				"url": "https://remotive.com/jobs/1837",
				"publication_date": "2026-02-01T10:00:00",
				"description": "<p>Train models</p>"
			},
			{
				"slug": "data-analyst-berlin",
				"position": "Data Analyst",
				"company": {"display_name": "Globex"},
				"location": {"display_name": "Berlin"},
				"redirect_url": "https://jobs.example.com/da",
				"created": "2026-02-02"
			},
			"not an object"
		]
	}`
	srv := serveJSON(payload)
	defer srv.Close()

	records, err := NewJSONAdapter(srv.URL, "Fallback Co", srv.Client()).FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	r := records[0]
	if r.ExternalID != "1837" || r.Title != "ML Engineer" || r.Company != "Acme" {
		t.Errorf("unexpected first record %+v", r)
	}
	if r.Location != "Worldwide" || r.Link != "https://remotive.com/jobs/1837" {
		t.Errorf("unexpected first record %+v", r)
	}
	if r.Date != "2026-02-01T10:00:00" || r.Description != "<p>Train models</p>" {
		t.Errorf("unexpected first record %+v", r)
	}

	r2 := records[1]
	if r2.ExternalID != "data-analyst-berlin" || r2.Title != "Data Analyst" {
		t.Errorf("unexpected second record %+v", r2)
	}
	if r2.Company != "Globex" || r2.Location != "Berlin" {
		t.Errorf("expected nested display_name values, got %+v", r2)
	}
	if r2.Link != "https://jobs.example.com/da" || r2.Date != "2026-02-02" {
		t.Errorf("unexpected second record %+v", r2)
	}
}

func TestJSONAdapter_FetchRecords_RootArray(t *testing.T) {
	srv := serveJSON(`[{"title": "SRE", "apply_url": "https://x.io/1", "locations": ["Remote", "EU"]}]`)
	defer srv.Close()

	records, err := NewJSONAdapter(srv.URL, "X", srv.Client()).FetchRecords(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Company != "X" {
		t.Errorf("expected descriptor company fallback, got %q", records[0].Company)
	}
	if records[0].Location != "Remote, EU" {
		t.Errorf("expected joined locations, got %q", records[0].Location)
	}
}

func TestJSONAdapter_FetchRecords_NoArray(t *testing.T) {
	srv := serveJSON(`{"status": "ok"}`)
	defer srv.Close()

	_, err := NewJSONAdapter(srv.URL, "", srv.Client()).FetchRecords(context.Background())
	if err == nil {
		t.Fatal("expected error when no job array is present")
	}
}
