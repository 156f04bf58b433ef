package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRelevance(t *testing.T) {
	tests := []struct {
		name  string
		title string
		role  string
		want  float64
	}{
		{"exact substring", "Machine Learning Engineer Intern", "Machine Learning Engineer", RoleExact},
		{"synonym group", "ML Engineer II", "Machine Learning Engineer", RoleGroup},
		{"devops group", "Site Reliability Engineer", "DevOps Engineer", RoleGroup},
		{"one shared word", "Product Engineer", "Platform Engineer", 25},
		{"capped overlap", "senior staff platform engineer", "staff platform engineer senior lead", 70},
		{"no overlap", "Accountant", "Software Engineer", 0},
		{"empty role", "Anything", "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoleRelevance(tc.title, tc.role))
		})
	}
}

func TestRoleRelevance_Tiering(t *testing.T) {
	role := "Machine Learning Engineer"
	group := RoleRelevance("ML Engineer II", role)
	exact := RoleRelevance("Machine Learning Engineer Intern", role)
	assert.Less(t, group, exact)
	assert.Equal(t, RoleGroup, group)
}

func TestLocationMatches(t *testing.T) {
	tests := []struct {
		name    string
		loc     string
		targets []string
		want    bool
	}{
		{"literal", "Pune, India", []string{"India"}, true},
		{"region group", "Bangalore", []string{"India"}, true},
		{"remote", "Remote - EMEA", []string{"Germany"}, true},
		{"worldwide", "Worldwide", []string{"Canada"}, true},
		{"other region", "London, UK", []string{"India"}, false},
		{"us not inside australia", "Sydney, Australia", []string{"USA"}, false},
		{"us group", "Seattle, WA", []string{"United States"}, true},
		{"bare us is not a region name", "Join us, Lagos", []string{"USA"}, false},
		{"no targets", "Berlin", nil, false},
		{"empty location", "", []string{"India"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LocationMatches(tc.loc, tc.targets))
		})
	}
}
