package scoring

import "strings"

var anywhereMarkers = []string{"remote", "anywhere", "worldwide"}

// regionGroups map a country to names that fall inside it.
var regionGroups = map[string][]string{
	"india":   {"india", "bangalore", "mumbai", "delhi", "hyderabad", "pune", "chennai", "kolkata", "bengaluru", "noida", "gurgaon"},
	"usa":     {"usa", "united states", "california", "new york", "texas", "washington", "boston", "san francisco", "seattle"},
	"uk":      {"uk", "united kingdom", "london", "manchester", "edinburgh", "birmingham"},
	"germany": {"germany", "berlin", "munich", "frankfurt", "hamburg"},
	"canada":  {"canada", "toronto", "vancouver", "montreal", "ottawa"},
}

// LocationMatches reports whether jobLocation satisfies any target. A location
// matches when it names the target literally, is remote/anywhere/worldwide, or
// falls in the same region group as the target ("Bangalore" for "India").
// No targets means no match; callers treat that as "no location preference".
func LocationMatches(jobLocation string, targets []string) bool {
	loc := strings.ToLower(strings.TrimSpace(jobLocation))
	if loc == "" || len(targets) == 0 {
		return false
	}

	for _, m := range anywhereMarkers {
		if strings.Contains(loc, m) {
			return true
		}
	}

	for _, target := range targets {
		tgt := strings.ToLower(strings.TrimSpace(target))
		if tgt == "" {
			continue
		}
		if strings.Contains(loc, tgt) {
			return true
		}
		for _, members := range regionGroups {
			if anyWord(tgt, members) && anyWord(loc, members) {
				return true
			}
		}
	}
	return false
}

// mentionsLocation reports whether text names any target literally. Free text
// gets no region or remote expansion: "not remote" and "join us" would match.
func mentionsLocation(text string, targets []string) bool {
	lower := strings.ToLower(text)
	for _, target := range targets {
		tgt := strings.ToLower(strings.TrimSpace(target))
		if tgt != "" && strings.Contains(lower, tgt) {
			return true
		}
	}
	return false
}
