package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The C++ and C# devs use Node.js, Go and a REST API. X")
	assert.Equal(t, []string{"c++", "c#", "devs", "use", "node.js", "go", "rest", "api"}, got)
}

func TestExtractSkills_Vocabulary(t *testing.T) {
	vocab := NewVocabulary(DefaultSkills)
	text := "Docker and Python. Deep learning with PyTorch; python again, scikit-learn and Power BI. Machine learning."

	got := ExtractSkills(text, vocab)
	assert.Equal(t, []string{"docker", "python", "deep learning", "pytorch", "scikit-learn", "power bi", "machine learning"}, got)
}

func TestExtractSkills_LongestPhraseWins(t *testing.T) {
	vocab := NewVocabulary([]string{"learning", "machine learning"})
	assert.Equal(t, []string{"machine learning"}, ExtractSkills("machine learning", vocab))
	assert.Equal(t, []string{"learning"}, ExtractSkills("continuous learning", vocab))
}

func TestExtractSkills_Fallback(t *testing.T) {
	got := ExtractSkills("We build Go services on k8s with Go and gRPC for the team", nil)
	assert.Equal(t, []string{"build", "services", "k8s", "grpc", "team"}, got)

	long := ""
	for i := range 30 {
		long += " word" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}
	assert.Len(t, ExtractSkills(long, NewVocabulary(nil)), fallbackSkillCount)
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("ml engineer", "ml"))
	assert.False(t, containsWord("html developer", "ml"))
	assert.True(t, containsWord("remote, us", "us"))
	assert.False(t, containsWord("australia", "us"))
	assert.True(t, containsWord("html and ml", "ml"))
}
