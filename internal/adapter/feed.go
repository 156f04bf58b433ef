package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/amishk599/jobrank/internal/model"
)

// FeedAdapter fetches postings from an RSS or Atom feed.
type FeedAdapter struct {
	url     string
	company string
	client  *http.Client
}

// NewFeedAdapter creates a new adapter for the feed at url.
func NewFeedAdapter(url, company string, client *http.Client) *FeedAdapter {
	return &FeedAdapter{url: url, company: company, client: client}
}

// FetchRecords downloads and parses the feed. Items without a usable link are
// still returned; the normalizer rejects them.
func (a *FeedAdapter) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	label := "feed fetch for " + a.url

	resp, err := get(ctx, a.client, a.url, label, "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse feed: %w", label, err)
	}

	records := make([]model.RawRecord, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		description := item.Content
		if description == "" {
			description = item.Description
		}
		records = append(records, model.RawRecord{
			ExternalID:  item.GUID,
			Title:       item.Title,
			Link:        feedLink(item),
			Description: description,
			Company:     feedCompany(item, a.company),
			Date:        feedDate(item),
		})
	}
	return records, nil
}

// feedLink prefers the explicit link, falling back to the GUID when it looks like a URL.
func feedLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if strings.HasPrefix(item.GUID, "http") {
		return item.GUID
	}
	return ""
}

// feedCompany uses the item author when present; many job feeds put the employer there.
func feedCompany(item *gofeed.Item, fallback string) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return fallback
}

func feedDate(item *gofeed.Item) string {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	case item.Published != "":
		return item.Published
	default:
		return item.Updated
	}
}
