package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

func TestIngestBatchResolvesTermsToRelationships(t *testing.T) {
	s := store.New()
	ing := NewIngestor(s, nil)

	summary, err := ing.IngestBatch("doc-1",
		[]model.ConceptCandidate{
			{Term: "Database", Definition: "stores data", ImportanceScore: 0.7},
			{Term: "Schema", Definition: "layout of tables", ImportanceScore: 1.4}, // clamped
		},
		[]model.RelationshipCandidate{
			{SourceTerm: "database", TargetTerm: "SCHEMA", RelationshipType: "has-component", Confidence: 0.6},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, Summary{ConceptsAdded: 2, RelationshipsAdded: 1}, summary)

	sn, err := s.Snapshot("doc-1")
	require.NoError(t, err)
	require.Len(t, sn.Concepts, 2)
	for _, c := range sn.Concepts {
		assert.False(t, c.Validated, "ingested concepts start unvalidated")
		assert.LessOrEqual(t, c.ImportanceScore, 1.0)
	}
	require.Len(t, sn.Relationships, 1)
	assert.Equal(t, "has-component", sn.Relationships[0].RelationshipType)
	assert.Equal(t, 0.6, sn.Relationships[0].Strength)
}

func TestIngestBatchResolvesAgainstExistingConcepts(t *testing.T) {
	s := store.New()
	existing := s.AddConcept("doc-1", model.Concept{Term: "Database"})
	ing := NewIngestor(s, nil)

	summary, err := ing.IngestBatch("doc-1",
		[]model.ConceptCandidate{{Term: "Index"}},
		[]model.RelationshipCandidate{
			{SourceTerm: "Database", TargetTerm: "Index", RelationshipType: "has-component"},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RelationshipsAdded)

	sn, err := s.Snapshot("doc-1")
	require.NoError(t, err)
	require.Len(t, sn.Relationships, 1)
	assert.Equal(t, existing.ID, sn.Relationships[0].SourceConceptID)
}

func TestIngestBatchSkipsNoiseCandidates(t *testing.T) {
	s := store.New()
	ing := NewIngestor(s, nil)

	summary, err := ing.IngestBatch("doc-1",
		[]model.ConceptCandidate{{Term: "Database"}},
		[]model.RelationshipCandidate{
			{SourceTerm: "Database", TargetTerm: "Ghost", RelationshipType: "is-a"},   // unknown target
			{SourceTerm: "Database", TargetTerm: "database", RelationshipType: "is-a"}, // self-reference
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ConceptsAdded)
	assert.Equal(t, 0, summary.RelationshipsAdded)
	assert.Equal(t, 2, summary.RelationshipsSkipped)
}

func TestIngestBatchValidatesBeforeWriting(t *testing.T) {
	s := store.New()
	ing := NewIngestor(s, nil)

	_, err := ing.IngestBatch("doc-1",
		[]model.ConceptCandidate{
			{Term: "Database"},
			{Term: "   "}, // malformed: fails the whole batch
		},
		nil,
	)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, snErr := s.Snapshot("doc-1")
	assert.ErrorIs(t, snErr, model.ErrNotFound, "a failed batch writes nothing")

	_, err = ing.IngestBatch("  ", []model.ConceptCandidate{{Term: "Database"}}, nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = ing.IngestBatch("doc-1",
		[]model.ConceptCandidate{{Term: "Database"}},
		[]model.RelationshipCandidate{{SourceTerm: "a", TargetTerm: "b", RelationshipType: ""}},
	)
	assert.ErrorIs(t, err, model.ErrValidation)
}
