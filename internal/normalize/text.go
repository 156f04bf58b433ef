package normalize

import (
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockElements get a separating space so adjacent blocks don't glue words together.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "table": true, "section": true,
	"article": true, "header": true, "footer": true, "blockquote": true, "pre": true,
}

// ExtractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), drops script and style content, strips all
// tags, then collapses whitespace.
func ExtractText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	unescaped := html.UnescapeString(content)
	if !strings.Contains(unescaped, "<") {
		return collapse(unescaped)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(unescaped))
	if err != nil {
		return collapse(unescaped)
	}

	var b strings.Builder
	walkText(doc.Selection, &b)
	return collapse(b.String())
}

func walkText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			b.WriteString(c.Text())
		case name == "script" || name == "style" || name == "noscript" || name == "#comment":
		case blockElements[name]:
			b.WriteByte(' ')
			walkText(c, b)
			b.WriteByte(' ')
		default:
			walkText(c, b)
		}
	})
}

// collapse trims and folds every whitespace run into one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
