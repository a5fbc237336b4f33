package similarity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

func TestEmbeddingScorerCosine(t *testing.T) {
	a := model.Concept{Term: "Database", Definition: "stores data"}
	b := model.Concept{Term: "Spreadsheet", Definition: "tabular tool"}

	embedder := &MockEmbedderClient{
		Vectors: map[string][]float32{
			embedText(a): {1, 0},
			embedText(b): {0, 1},
		},
	}
	scorer := NewEmbeddingScorer(embedder)

	score, err := scorer.Score(context.Background(), a, b)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, score, "orthogonal embeddings score zero")
}

func TestEmbeddingScorerIdenticalContentShortCircuits(t *testing.T) {
	c := model.Concept{Term: "Schema", Definition: "layout of a database"}

	// No vectors registered: the identity path must not call the embedder.
	scorer := NewEmbeddingScorer(&MockEmbedderClient{Vectors: map[string][]float32{}})

	score, err := scorer.Score(context.Background(), c, c)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, score)
}
