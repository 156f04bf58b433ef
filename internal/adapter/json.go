package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/amishk599/jobrank/internal/model"
)

// Field aliases seen across public job-board APIs (remotive, arbeitnow,
// remoteok, adzuna, themuse and friends). First non-empty wins.
var (
	jsonTitleKeys       = []string{"position", "title", "name"}
	jsonDescriptionKeys = []string{"description", "body", "content", "contents"}
	jsonLinkKeys        = []string{"url", "apply_url", "applyUrl", "absolute_url", "redirect_url", "job_url"}
	jsonDateKeys        = []string{"date", "published_at", "created_at", "publication_date", "created", "updated_at"}
	jsonCompanyKeys     = []string{"company", "company_name", "employer_name"}
	jsonLocationKeys    = []string{"location", "candidate_required_location", "locations"}
	jsonIDKeys          = []string{"id", "slug", "job_id"}

	// envelope keys under which APIs nest their result array
	jsonListKeys = []string{"jobs", "data", "results", "items"}
)

// JSONAdapter fetches postings from a generic JSON job-board API.
type JSONAdapter struct {
	url     string
	company string
	client  *http.Client
}

// NewJSONAdapter creates a new adapter for the JSON endpoint at url.
func NewJSONAdapter(url, company string, client *http.Client) *JSONAdapter {
	return &JSONAdapter{url: url, company: company, client: client}
}

// FetchRecords downloads the endpoint and maps each object in its result
// array onto a raw record using the alias tables above.
func (a *JSONAdapter) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	label := "json fetch for " + a.url

	resp, err := get(ctx, a.client, a.url, label, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	items, err := jsonItems(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	records := make([]model.RawRecord, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		company := pickString(obj, jsonCompanyKeys)
		if company == "" {
			company = a.company
		}
		records = append(records, model.RawRecord{
			ExternalID:  pickString(obj, jsonIDKeys),
			Title:       pickString(obj, jsonTitleKeys),
			Link:        pickString(obj, jsonLinkKeys),
			Description: pickString(obj, jsonDescriptionKeys),
			Company:     company,
			Location:    pickString(obj, jsonLocationKeys),
			Date:        pickString(obj, jsonDateKeys),
		})
	}
	return records, nil
}

// jsonItems finds the result array at the document root or under a known envelope key.
func jsonItems(doc any) ([]any, error) {
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, k := range jsonListKeys {
			if arr, ok := v[k].([]any); ok {
				return arr, nil
			}
		}
	}
	return nil, fmt.Errorf("no job array found in response")
}

// pickString returns the first non-empty value among keys, flattened to a string.
func pickString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		if s := flatten(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

// flatten renders scalars, {display_name|name} objects and lists of either.
func flatten(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return ""
	case map[string]any:
		for _, k := range []string{"display_name", "name", "label"} {
			if s, ok := t[k].(string); ok && s != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := flatten(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}
