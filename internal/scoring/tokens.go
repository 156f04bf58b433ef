package scoring

import (
	"regexp"
	"strings"
)

// fallbackSkillCount bounds the heuristic skill list used without a vocabulary.
const fallbackSkillCount = 20

var tokenRegex = regexp.MustCompile(`[a-z0-9][a-z0-9+#.]*`)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "of": true,
	"to": true, "for": true, "with": true, "in": true, "on": true, "at": true,
	"by": true, "from": true, "as": true, "is": true, "are": true, "were": true,
	"be": true, "been": true, "being": true,
}

// Tokenize case-folds text and splits it into alphanumeric runs. A run may
// continue with '+', '#' or '.' so that c++, c# and node.js survive; trailing
// dots are sentence punctuation and are dropped. Tokens of one character and
// stopwords are removed.
func Tokenize(text string) []string {
	raw := tokenRegex.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		tok = strings.TrimRight(tok, ".")
		if len(tok) <= 1 || stopwords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Vocabulary is a canonical skill list matched against tokenized text.
// Entries may span up to three words ("machine learning", "power bi").
type Vocabulary struct {
	phrases map[string]string // token sequence joined by spaces -> canonical entry
	maxLen  int
}

// NewVocabulary builds a vocabulary. Empty entries are ignored; the first
// spelling of an entry is the canonical one.
func NewVocabulary(entries []string) *Vocabulary {
	v := &Vocabulary{phrases: make(map[string]string)}
	for _, e := range entries {
		toks := Tokenize(e)
		if len(toks) == 0 || len(toks) > 3 {
			continue
		}
		key := strings.Join(toks, " ")
		if _, ok := v.phrases[key]; ok {
			continue
		}
		v.phrases[key] = strings.ToLower(strings.TrimSpace(e))
		v.maxLen = max(v.maxLen, len(toks))
	}
	return v
}

// Len returns the number of distinct entries.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.phrases)
}

// ExtractSkills returns the skills found in text in first-seen order without
// duplicates. With an empty vocabulary it falls back to the first distinct
// tokens longer than two characters. That fallback is a crude heuristic that
// surfaces frequent words, not skills, and exists so scoring still has a
// breadth signal when no vocabulary is configured.
func ExtractSkills(text string, vocab *Vocabulary) []string {
	tokens := Tokenize(text)
	if vocab.Len() == 0 {
		return fallbackSkills(tokens)
	}

	seen := make(map[string]bool)
	var skills []string
	for i := 0; i < len(tokens); i++ {
		// longest phrase first so "machine learning" wins over a one-word entry
		for n := min(vocab.maxLen, len(tokens)-i); n >= 1; n-- {
			canonical, ok := vocab.phrases[strings.Join(tokens[i:i+n], " ")]
			if !ok {
				continue
			}
			if !seen[canonical] {
				seen[canonical] = true
				skills = append(skills, canonical)
			}
			i += n - 1
			break
		}
	}
	return skills
}

func fallbackSkills(tokens []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokens {
		if len(tok) <= 2 || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) == fallbackSkillCount {
			break
		}
	}
	return out
}

// containsWord reports whether phrase occurs in text on word boundaries.
// Both arguments must already be lower-case.
func containsWord(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for start := 0; ; {
		i := strings.Index(text[start:], phrase)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(phrase)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
