package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/jobrank/internal/model"
)

func scenarioPrefs() model.Preferences {
	return model.Preferences{
		Titles:          []string{"ML Engineer"},
		IncludeKeywords: []string{"python", "pytorch"},
		ExcludeKeywords: []string{"senior"},
		Locations:       []string{"India", "Remote"},
	}
}

func TestScore_Composition(t *testing.T) {
	s := New(scenarioPrefs(), Options{Weights: DefaultWeights(), Vocabulary: DefaultSkills})
	job := model.Job{Title: "Senior ML Engineer", Location: "India", Description: "python pytorch"}

	r := s.Score(job)

	w := DefaultWeights()
	want := w.Title + 2*w.Include - 1*w.Exclude + w.Location + 2
	assert.Equal(t, want, r.Score)
	assert.Equal(t, 11.0, r.Score)
	assert.Equal(t, []string{"python", "pytorch"}, r.Skills)
}

func TestScore_IncludeMonotonic(t *testing.T) {
	prefs := model.Preferences{IncludeKeywords: []string{"go", "kafka", "postgres"}}
	s := New(prefs, Options{Vocabulary: DefaultSkills})

	base := model.Job{Title: "Backend Engineer", Description: "We use go."}
	more := base
	more.Description = "We use go and kafka."

	assert.Greater(t, s.Score(more).Score, s.Score(base).Score)
}

func TestScore_ExcludeDecreases(t *testing.T) {
	prefs := model.Preferences{
		Titles:          []string{"engineer"},
		IncludeKeywords: []string{"python"},
		ExcludeKeywords: []string{"clearance", "onsite"},
	}
	s := New(prefs, Options{Vocabulary: DefaultSkills})

	base := model.Job{Title: "Engineer", Description: "python docker aws"}
	worse := base
	worse.Description = "python docker aws, clearance required"

	assert.Less(t, s.Score(worse).Score, s.Score(base).Score)
}

func TestScore_Floor(t *testing.T) {
	prefs := model.Preferences{ExcludeKeywords: []string{"senior", "staff", "principal", "lead", "manager"}}
	s := New(prefs, Options{Vocabulary: DefaultSkills})

	r := s.Score(model.Job{Title: "Senior Staff Principal Lead Manager", Description: "python"})
	assert.Equal(t, 0.0, r.Score)
}

func TestScore_DistinctKeywordsCountOnce(t *testing.T) {
	prefs := model.Preferences{IncludeKeywords: []string{"python", "Python", " python "}}
	s := New(prefs, Options{Vocabulary: []string{"nothing-matches"}})

	r := s.Score(model.Job{Title: "Dev", Description: "python python python"})
	assert.Equal(t, DefaultWeights().Include, r.Score)
}

func TestScore_EmptyPreferences(t *testing.T) {
	s := New(model.Preferences{}, Options{Vocabulary: DefaultSkills})
	r := s.Score(model.Job{Title: "Data Engineer", Location: "Berlin", Description: "sql, docker"})
	assert.Equal(t, 2.0, r.Score, "only the skill bonus applies")
}

func TestScore_SkillCap(t *testing.T) {
	s := New(model.Preferences{}, Options{Weights: Weights{Title: 5, Include: 3, Exclude: 4, Location: 2, SkillCap: 3}, Vocabulary: DefaultSkills})
	r := s.Score(model.Job{Description: "python sql pandas numpy docker aws"})
	assert.Len(t, r.Skills, 6)
	assert.Equal(t, 3.0, r.Score)
}

func TestScore_LocationFromTextWhenUnknown(t *testing.T) {
	s := New(model.Preferences{Locations: []string{"Canada"}}, Options{Vocabulary: []string{"fortran"}})
	r := s.Score(model.Job{Title: "Engineer", Description: "Based in our Toronto office, Canada."})
	assert.Equal(t, DefaultWeights().Location, r.Score)
}

func TestScore_LocationTextFallbackIsLiteral(t *testing.T) {
	tests := []struct {
		name   string
		target string
		desc   string
	}{
		{"pronoun us", "USA", "Join us in Lagos, Nigeria"},
		{"negated remote", "India", "This role is not remote. Office in Berlin."},
		{"region member only", "Canada", "Based in our Toronto office."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(model.Preferences{Locations: []string{tc.target}}, Options{Vocabulary: []string{"fortran"}})
			r := s.Score(model.Job{Title: "Engineer", Description: tc.desc})
			assert.Equal(t, 0.0, r.Score)
		})
	}
}

func TestApply_RoleRelevance(t *testing.T) {
	prefs := scenarioPrefs()
	prefs.Role = "Machine Learning Engineer"
	s := New(prefs, Options{Vocabulary: DefaultSkills})

	job := model.Job{Title: "ML Engineer II", Location: "Remote", Description: "pytorch"}
	s.Apply(&job)
	assert.Equal(t, RoleGroup, job.RoleRelevance)
	assert.Positive(t, job.Score)
	assert.Equal(t, []string{"pytorch"}, job.Skills)

	noRole := New(scenarioPrefs(), Options{Vocabulary: DefaultSkills})
	noRole.Apply(&job)
	assert.Zero(t, job.RoleRelevance)
}

func TestScore_Deterministic(t *testing.T) {
	s := New(scenarioPrefs(), Options{Vocabulary: DefaultSkills})
	job := model.Job{Title: "ML Engineer", Description: "pytorch, python, docker, python"}
	first := s.Score(job)
	for range 5 {
		require.Equal(t, first, s.Score(job))
	}
}
