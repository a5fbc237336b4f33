package similarity

import (
	"context"
	"fmt"
	"math"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/llm"
)

// EmbeddingScorer scores concepts by cosine similarity of their embedded
// term+definition text. Requires a provider with embedding support.
type EmbeddingScorer struct {
	Embedder llm.EmbedderClient
}

func NewEmbeddingScorer(embedder llm.EmbedderClient) *EmbeddingScorer {
	return &EmbeddingScorer{Embedder: embedder}
}

func (s *EmbeddingScorer) Score(ctx context.Context, a, b model.Concept) (float64, error) {
	// Identical content short-circuits so reflexivity does not depend on
	// float arithmetic.
	if NormalizeTerm(a.Term) == NormalizeTerm(b.Term) && a.Definition == b.Definition {
		return 1.0, nil
	}

	va, err := s.Embedder.Embed(ctx, embedText(a))
	if err != nil {
		return 0, fmt.Errorf("failed to embed concept '%s': %w", a.Term, err)
	}
	vb, err := s.Embedder.Embed(ctx, embedText(b))
	if err != nil {
		return 0, fmt.Errorf("failed to embed concept '%s': %w", b.Term, err)
	}

	sim := cosine(va, vb)
	// Embedding cosine lands in [-1,1]; clamp into the scorer contract.
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, nil
}

func embedText(c model.Concept) string {
	return c.Term + ": " + c.Definition
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
