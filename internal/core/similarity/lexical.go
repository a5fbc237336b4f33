package similarity

import (
	"context"
	"strings"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

// LexicalScorer is the default scorer: deterministic, dependency-free token
// and edit-distance arithmetic. Good enough to drive dedup and conflict
// thresholds; swap in the embedding scorer when an embedder is configured.
type LexicalScorer struct {
	TermWeight       float64
	DefinitionWeight float64
}

func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{
		TermWeight:       0.55,
		DefinitionWeight: 0.45,
	}
}

func (s *LexicalScorer) Score(ctx context.Context, a, b model.Concept) (float64, error) {
	termA := NormalizeTerm(a.Term)
	termB := NormalizeTerm(b.Term)

	termSim := termSimilarity(termA, termB)
	defSim := tokenJaccard(tokenize(a.Definition), tokenize(b.Definition))

	score := s.TermWeight*termSim + s.DefinitionWeight*defSim
	if score > 1 {
		score = 1
	}
	return score, nil
}

func termSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if isAbbreviation(a, b) || isAbbreviation(b, a) {
		return 0.9
	}
	dist := levenshtein(a, b)
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return 1.0 - float64(dist)/float64(longer)
}

// isAbbreviation reports whether short looks like an abbreviation of long:
// at most four letters, each appearing in order in the longer term
// ("db" -> "database", "ocr" -> "optical character recognition").
func isAbbreviation(short, long string) bool {
	if len(short) >= len(long) || len(short) > 4 || len(short) < 2 {
		return false
	}
	i := 0
	for _, c := range long {
		if i < len(short) && byte(c) == short[i] {
			i++
		}
	}
	return i == len(short)
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = strings.Trim(f, ".,;:!?()[]\"'")
		if len(f) > 2 { // drop stopword-sized tokens
			tokens[f] = true
		}
	}
	return tokens
}

func tokenJaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	inter := 0
	for t := range a {
		if b[t] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
