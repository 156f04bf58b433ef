// Package scoring computes keyword relevance, extracted skills and role
// relevance for postings.
package scoring

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"

	"github.com/amishk599/jobrank/internal/model"
)

// Weights are the per-signal contributions to the keyword score.
type Weights struct {
	Title    float64 `yaml:"title"`
	Include  float64 `yaml:"include"`
	Exclude  float64 `yaml:"exclude"`
	Location float64 `yaml:"location"`
	SkillCap int     `yaml:"skill_cap"`
}

// DefaultWeights returns the stock weights.
func DefaultWeights() Weights {
	return Weights{Title: 5, Include: 3, Exclude: 4, Location: 2, SkillCap: 8}
}

// Options configure a Scorer beyond the user's preferences.
type Options struct {
	Weights Weights
	// Vocabulary is the canonical skill list. Empty selects the token heuristic.
	Vocabulary []string
}

// Result is the outcome of scoring one posting.
type Result struct {
	Score  float64
	Skills []string
}

// Scorer scores postings against one set of preferences. It is safe for
// concurrent use.
type Scorer struct {
	prefs   model.Preferences
	weights Weights
	vocab   *Vocabulary
	titles  []string

	mu      sync.Mutex // guards the matchers, which keep per-call state
	include *keywordSet
	exclude *keywordSet
}

// New builds a Scorer for prefs. Zero weights select DefaultWeights.
func New(prefs model.Preferences, opts Options) *Scorer {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights()
	}
	s := &Scorer{
		prefs:   prefs,
		weights: opts.Weights,
		vocab:   NewVocabulary(opts.Vocabulary),
		include: newKeywordSet(prefs.IncludeKeywords),
		exclude: newKeywordSet(prefs.ExcludeKeywords),
	}
	for _, t := range prefs.Titles {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			s.titles = append(s.titles, t)
		}
	}
	return s
}

// Score computes the keyword score and skill list for job:
//
//	title weight if a configured title occurs in the posting title
//	+ include weight per distinct include keyword in title+description
//	- exclude weight per distinct exclude keyword
//	+ location weight if the location matches
//	+ min(len(skills), skill cap)
//
// clamped at zero.
func (s *Scorer) Score(job model.Job) Result {
	text := strings.ToLower(job.Text())
	title := strings.ToLower(job.Title)

	var score float64
	for _, t := range s.titles {
		if strings.Contains(title, t) {
			score += s.weights.Title
			break
		}
	}

	s.mu.Lock()
	included := s.include.count(text)
	excluded := s.exclude.count(text)
	s.mu.Unlock()
	score += float64(included) * s.weights.Include
	score -= float64(excluded) * s.weights.Exclude

	if s.locationMatch(job) {
		score += s.weights.Location
	}

	skills := ExtractSkills(job.Text(), s.vocab)
	score += float64(min(len(skills), s.weights.SkillCap))

	return Result{Score: max(score, 0), Skills: skills}
}

// Apply scores job in place, including role relevance when a target role is set.
func (s *Scorer) Apply(job *model.Job) {
	r := s.Score(*job)
	job.Score = r.Score
	job.Skills = r.Skills
	job.RoleRelevance = 0
	if s.prefs.Role != "" {
		job.RoleRelevance = RoleRelevance(job.Title, s.prefs.Role)
	}
}

// locationMatch reads the posting location, or searches its text for a
// literal target when the location is unknown.
func (s *Scorer) locationMatch(job model.Job) bool {
	if len(s.prefs.Locations) == 0 {
		return false
	}
	if strings.TrimSpace(job.Location) == "" {
		return mentionsLocation(job.Text(), s.prefs.Locations)
	}
	return LocationMatches(job.Location, s.prefs.Locations)
}

// keywordSet counts distinct keywords occurring in a text in one pass.
type keywordSet struct {
	matcher *ahocorasick.Matcher
	size    int
}

func newKeywordSet(keywords []string) *keywordSet {
	seen := make(map[string]bool)
	var dict []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		dict = append(dict, kw)
	}
	if len(dict) == 0 {
		return &keywordSet{}
	}
	return &keywordSet{matcher: ahocorasick.NewStringMatcher(dict), size: len(dict)}
}

func (k *keywordSet) count(text string) int {
	if k.matcher == nil {
		return 0
	}
	hits := make(map[int]bool, k.size)
	for _, idx := range k.matcher.Match([]byte(text)) {
		hits[idx] = true
	}
	return len(hits)
}
