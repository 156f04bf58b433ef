package api

import (
	"time"

	"github.com/amishk599/jobrank/internal/model"
	"github.com/amishk599/jobrank/internal/pipeline"
)

type jobResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Company       string     `json:"company"`
	Location      string     `json:"location"`
	Link          string     `json:"link"`
	Source        string     `json:"source"`
	PostedAt      *time.Time `json:"posted_at,omitempty"`
	FetchedAt     time.Time  `json:"fetched_at"`
	Score         float64    `json:"score"`
	RoleRelevance float64    `json:"role_relevance"`
	Similarity    *float64   `json:"similarity,omitempty"`
	Skills        []string   `json:"skills"`
	Status        string     `json:"status"`
	Description   string     `json:"description,omitempty"`
}

func toResponse(j model.Job) jobResponse {
	skills := j.Skills
	if skills == nil {
		skills = []string{}
	}
	return jobResponse{
		ID:            j.ID,
		Title:         j.Title,
		Company:       j.Company,
		Location:      j.Location,
		Link:          j.Link,
		Source:        j.Source,
		PostedAt:      j.PostedAt,
		FetchedAt:     j.FetchedAt,
		Score:         j.Score,
		RoleRelevance: j.RoleRelevance,
		Similarity:    j.Similarity,
		Skills:        skills,
		Status:        string(j.Status),
		Description:   j.Description,
	}
}

type sourceResponse struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Records int    `json:"records"`
	Error   string `json:"error,omitempty"`
}

type runResponse struct {
	RunID      string           `json:"run_id"`
	Summary    string           `json:"summary"`
	Fetched    int              `json:"fetched"`
	Dropped    int              `json:"dropped"`
	Duplicates int              `json:"duplicates"`
	Filtered   int              `json:"filtered"`
	Persisted  int              `json:"persisted"`
	Sources    []sourceResponse `json:"sources"`
}

func sourceResponses(reports []pipeline.SourceReport) []sourceResponse {
	out := make([]sourceResponse, 0, len(reports))
	for _, r := range reports {
		sr := sourceResponse{Name: r.Name, Kind: string(r.Kind), Records: r.Records}
		if r.Err != nil {
			sr.Error = r.Err.Error()
		}
		out = append(out, sr)
	}
	return out
}
