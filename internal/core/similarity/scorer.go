package similarity

import (
	"context"
	"strings"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

// Scorer computes a [0,1] similarity between two concepts (term plus
// definition). Implementations must be reflexive: Score(c, c) == 1.0.
// The engine depends only on this contract; the modeling behind it is
// pluggable.
type Scorer interface {
	Score(ctx context.Context, a, b model.Concept) (float64, error)
}

// NormalizeTerm lowercases and collapses whitespace so "  Data Base " and
// "data base" group together for conflict detection and dedup scans.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
