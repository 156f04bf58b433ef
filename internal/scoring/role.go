package scoring

import "strings"

// Role relevance tiers.
const (
	RoleExact   = 100.0
	RoleGroup   = 85.0
	roleOverlap = 25.0
	roleMaxWord = 70.0
)

// roleGroups are synonym clusters; a role naming any member matches a title naming any member.
var roleGroups = [][]string{
	{"ml", "machine learning", "data scientist", "ai engineer"},
	{"data scientist", "ml", "analytics", "machine learning"},
	{"software engineer", "developer", "swe", "backend", "frontend"},
	{"data engineer", "etl", "pipeline", "data infrastructure"},
	{"data analyst", "business analyst", "analytics"},
	{"devops", "sre", "site reliability", "infrastructure"},
	{"full stack", "fullstack", "web developer"},
}

// RoleRelevance rates how well title fits a single target role, 0..100.
// The role as a substring of the title scores RoleExact; a shared synonym
// group scores RoleGroup; otherwise each shared word is worth 25, capped at 70.
func RoleRelevance(title, role string) float64 {
	t := strings.ToLower(strings.Join(strings.Fields(title), " "))
	r := strings.ToLower(strings.Join(strings.Fields(role), " "))
	if t == "" || r == "" {
		return 0
	}

	if strings.Contains(t, r) {
		return RoleExact
	}

	for _, group := range roleGroups {
		if !anyWord(r, group) {
			continue
		}
		if anyWord(t, group) {
			return RoleGroup
		}
	}

	roleWords := make(map[string]bool)
	for _, w := range strings.Fields(r) {
		roleWords[w] = true
	}
	common := 0
	for _, w := range strings.Fields(t) {
		if roleWords[w] {
			common++
			delete(roleWords, w)
		}
	}
	return min(roleMaxWord, float64(common)*roleOverlap)
}

func anyWord(text string, phrases []string) bool {
	for _, p := range phrases {
		if containsWord(text, p) {
			return true
		}
	}
	return false
}
