package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobrank/internal/model"
)

// HTMLAdapter scrapes postings from a static HTML listing page using CSS
// selectors. Each match of the item selector yields one record; the other
// selectors are evaluated inside it.
type HTMLAdapter struct {
	url       string
	company   string
	selectors model.HTMLSelectors
	client    *http.Client
}

// NewHTMLAdapter creates a new adapter for the page at pageURL.
func NewHTMLAdapter(pageURL, company string, selectors model.HTMLSelectors, client *http.Client) *HTMLAdapter {
	return &HTMLAdapter{url: pageURL, company: company, selectors: selectors, client: client}
}

// FetchRecords downloads the page and extracts one record per item node.
func (a *HTMLAdapter) FetchRecords(ctx context.Context) ([]model.RawRecord, error) {
	label := "html fetch for " + a.url
	if a.selectors.Item == "" {
		return nil, fmt.Errorf("%s: item selector is required", label)
	}

	resp, err := get(ctx, a.client, a.url, label, "text/html")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: parse html: %w", label, err)
	}

	base, _ := url.Parse(a.url)
	sel := a.selectors

	var records []model.RawRecord
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		rec := model.RawRecord{
			Title:       selectText(item, sel.Title),
			Link:        resolveLink(base, selectLink(item, sel.Link)),
			Description: selectHTML(item, sel.Description),
			Company:     selectText(item, sel.Company),
			Location:    selectText(item, sel.Location),
			Date:        selectDate(item, sel.Date),
		}
		if rec.Company == "" {
			rec.Company = a.company
		}
		records = append(records, rec)
	})
	return records, nil
}

func selectText(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(item.Find(selector).First().Text())
}

// selectHTML keeps markup so the normalizer sees the same shape as API descriptions.
func selectHTML(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	h, err := item.Find(selector).First().Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

// selectLink reads href from the link selector, or from the item itself / its first anchor.
func selectLink(item *goquery.Selection, selector string) string {
	target := item
	if selector != "" {
		target = item.Find(selector).First()
	}
	if href, ok := target.Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if href, ok := target.Find("a[href]").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	return ""
}

// selectDate prefers a datetime attribute (as on <time>) over the element text.
func selectDate(item *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	node := item.Find(selector).First()
	if dt, ok := node.Attr("datetime"); ok && dt != "" {
		return dt
	}
	return strings.TrimSpace(node.Text())
}

func resolveLink(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
