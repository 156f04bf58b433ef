package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amishk599/jobrank/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob represents a single job in the Greenhouse API response.
type greenhouseJob struct {
	ID             int64              `json:"id"`
	Title          string             `json:"title"`
	Location       greenhouseLocation `json:"location"`
	AbsoluteURL    string             `json:"absolute_url"`
	UpdatedAt      string             `json:"updated_at"`
	FirstPublished string             `json:"first_published"`
	Content        string             `json:"content"` // HTML, entity-encoded
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// greenhouseResponse is the top-level Greenhouse jobs API response.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseAdapter fetches postings from the Greenhouse public boards API.
type GreenhouseAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

// NewGreenhouseAdapter creates a new adapter for a Greenhouse board.
func NewGreenhouseAdapter(boardToken string, companyName string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

// FetchRecords retrieves all postings, with content, from the Greenhouse board.
func (a *GreenhouseAdapter) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)
	label := "greenhouse fetch for " + a.boardToken

	resp, err := get(ctx, a.client, url, label, "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var ghResp greenhouseResponse
	if err := json.NewDecoder(resp.Body).Decode(&ghResp); err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	records := make([]model.RawRecord, 0, len(ghResp.Jobs))
	for _, gj := range ghResp.Jobs {
		date := gj.FirstPublished
		if date == "" {
			date = gj.UpdatedAt
		}
		records = append(records, model.RawRecord{
			ExternalID:  fmt.Sprintf("%d", gj.ID),
			Title:       gj.Title,
			Link:        gj.AbsoluteURL,
			Description: gj.Content,
			Company:     a.companyName,
			Location:    gj.Location.Name,
			Date:        date,
		})
	}

	return records, nil
}
