package normalize

import (
	"errors"
	"net/url"
	"strings"
)

var (
	errEmptyLink   = errors.New("missing link")
	errBadScheme   = errors.New("link is not http(s)")
	errNoHost      = errors.New("link has no host")
	errRedirectURL = errors.New("link points at a redirect or tracking portal")
)

// redirectMarkers flag aggregator portals that bounce through tracking pages
// instead of linking the posting directly.
var redirectMarkers = []string{"redirect", "trk=", "tracking", "portal", "apply-now"}

// CanonicalLink resolves raw against base (when relative), keeps only http and
// https, lower-cases scheme and host, drops the fragment and utm_* parameters.
func CanonicalLink(raw, base string, dropRedirects bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errEmptyLink
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() && base != "" {
		b, err := url.Parse(base)
		if err == nil {
			u = b.ResolveReference(u)
		}
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errBadScheme
	}
	u.Host = strings.ToLower(u.Host)
	if u.Host == "" {
		return "", errNoHost
	}
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if strings.HasPrefix(strings.ToLower(k), "utm_") {
				q.Del(k)
			}
		}
		u.RawQuery = q.Encode()
	}

	out := u.String()
	if dropRedirects && looksLikeRedirect(out) {
		return "", errRedirectURL
	}
	return out, nil
}

func looksLikeRedirect(link string) bool {
	l := strings.ToLower(link)
	for _, m := range redirectMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// hostCompany derives a company name from the link host, e.g. "jobs.acme.io" stays
// as is but "www.acme.io" becomes "acme.io".
func hostCompany(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
