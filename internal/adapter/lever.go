package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/jobrank/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverCategories represents the categories object in a Lever job.
type leverCategories struct {
	Team         string   `json:"team"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

// leverJob represents a single job in the Lever API response.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Description      string          `json:"description"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"`
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
	ApplyURL         string          `json:"applyUrl"`
}

// LeverAdapter fetches postings from the Lever public postings API.
type LeverAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverAdapter creates a new adapter for a Lever board.
func NewLeverAdapter(companySlug string, companyName string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

// FetchRecords retrieves all postings from the Lever board.
func (a *LeverAdapter) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)
	label := "lever fetch for " + a.companySlug

	resp, err := get(ctx, a.client, url, label, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var leverJobs []leverJob
	if err := json.NewDecoder(resp.Body).Decode(&leverJobs); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	records := make([]model.RawRecord, 0, len(leverJobs))
	for _, lj := range leverJobs {
		// Prefer allLocations if available, fallback to location
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}
		if lj.WorkplaceType == "remote" && !strings.Contains(strings.ToLower(location), "remote") {
			location = strings.TrimPrefix(location+", Remote", ", ")
		}

		description := lj.DescriptionPlain
		if description == "" {
			description = lj.Description
		}

		// createdAt is Unix milliseconds
		var date string
		if lj.CreatedAt > 0 {
			date = time.UnixMilli(lj.CreatedAt).UTC().Format(time.RFC3339)
		}

		records = append(records, model.RawRecord{
			ExternalID:  lj.ID,
			Title:       lj.Text,
			Link:        lj.HostedURL,
			Description: description,
			Company:     a.companyName,
			Location:    location,
			Date:        date,
		})
	}

	return records, nil
}
