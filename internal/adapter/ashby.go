package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/jobrank/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

// ashbyJob represents a single job in the Ashby API response.
type ashbyJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	IsRemote         bool   `json:"isRemote"`
	JobURL           string `json:"jobUrl"`
	ApplyURL         string `json:"applyUrl"`
	PublishedAt      string `json:"publishedAt"`
	IsListed         bool   `json:"isListed"`
	DescriptionPlain string `json:"descriptionPlain"`
	DescriptionHTML  string `json:"descriptionHtml"`
}

// ashbyResponse is the top-level Ashby job board API response.
type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyAdapter fetches postings from the Ashby public job board API.
type AshbyAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewAshbyAdapter creates a new adapter for an Ashby job board.
func NewAshbyAdapter(boardToken string, companyName string, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

// FetchRecords retrieves all listed postings from the Ashby job board.
func (a *AshbyAdapter) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, a.boardToken)
	label := "ashby fetch for " + a.boardToken

	resp, err := get(ctx, a.client, url, label, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ashbyResp ashbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ashbyResp); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	records := make([]model.RawRecord, 0, len(ashbyResp.Jobs))
	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}

		description := aj.DescriptionPlain
		if description == "" {
			description = aj.DescriptionHTML
		}
		location := aj.Location
		if aj.IsRemote && location == "" {
			location = "Remote"
		}

		records = append(records, model.RawRecord{
			ExternalID:  aj.ID,
			Title:       aj.Title,
			Link:        aj.JobURL,
			Description: description,
			Company:     a.companyName,
			Location:    location,
			Date:        aj.PublishedAt,
		})
	}

	return records, nil
}
