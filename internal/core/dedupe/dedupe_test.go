package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/similarity"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

func newDedupeStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New()
}

func TestFindDuplicatesThreshold(t *testing.T) {
	s := newDedupeStore(t)
	s.AddConcept("doc-1", model.Concept{
		Term: "Database", Definition: "A structured collection of data stored electronically", Validated: true,
	})
	s.AddConcept("doc-1", model.Concept{
		Term: "DB", Definition: "A structured collection of data stored electronically",
	})
	s.AddConcept("doc-1", model.Concept{
		Term: "Mortgage", Definition: "A loan secured against real property",
	})

	d := NewDeduplicator(similarity.NewLexicalScorer(), config.Default().Thresholds)
	sn, err := s.Snapshot("doc-1")
	require.NoError(t, err)

	pairs, err := d.FindDuplicates(context.Background(), sn)
	require.NoError(t, err)
	require.Len(t, pairs, 1, "only the abbreviation pair clears the threshold")
	assert.GreaterOrEqual(t, pairs[0].SimilarityScore, config.Default().Thresholds.Duplicate)
}

func TestFindDuplicatesSkipsDistinctPairs(t *testing.T) {
	s := newDedupeStore(t)
	a := s.AddConcept("doc-1", model.Concept{Term: "Database", Definition: "stores data"})
	b := s.AddConcept("doc-1", model.Concept{Term: "Database", Definition: "stores data"})
	_, err := s.MarkDistinct("doc-1", s.Version("doc-1"), a.ID, b.ID)
	require.NoError(t, err)

	d := NewDeduplicator(similarity.NewLexicalScorer(), config.Default().Thresholds)
	sn, err := s.Snapshot("doc-1")
	require.NoError(t, err)

	pairs, err := d.FindDuplicates(context.Background(), sn)
	require.NoError(t, err)
	assert.Empty(t, pairs, "pairs the user marked distinct are never re-proposed")
}

func TestFindDuplicatesReason(t *testing.T) {
	s := newDedupeStore(t)
	s.AddConcept("doc-1", model.Concept{Term: "Database", Definition: "stores structured data", Validated: true})
	s.AddConcept("doc-1", model.Concept{Term: "database", Definition: "stores structured data"})

	d := NewDeduplicator(similarity.NewLexicalScorer(), config.Default().Thresholds)
	sn, err := s.Snapshot("doc-1")
	require.NoError(t, err)

	pairs, err := d.FindDuplicates(context.Background(), sn)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Contains(t, pairs[0].Reason, "identical term")
}

func TestPickPrimaryOrdering(t *testing.T) {
	now := time.Now().UTC()

	validated := model.Concept{ID: "b", Validated: true, CreatedAt: now}
	unvalidated := model.Concept{ID: "a", CreatedAt: now.Add(-time.Hour)}
	primary, duplicate := pickPrimary(unvalidated, validated)
	assert.Equal(t, "b", primary.ID, "validated beats age")
	assert.Equal(t, "a", duplicate.ID)

	important := model.Concept{ID: "b", ImportanceScore: 0.9, CreatedAt: now}
	minor := model.Concept{ID: "a", ImportanceScore: 0.2, CreatedAt: now.Add(-time.Hour)}
	primary, _ = pickPrimary(minor, important)
	assert.Equal(t, "b", primary.ID, "importance beats age")

	older := model.Concept{ID: "b", CreatedAt: now.Add(-time.Hour)}
	newer := model.Concept{ID: "a", CreatedAt: now}
	primary, _ = pickPrimary(newer, older)
	assert.Equal(t, "b", primary.ID, "older record survives")

	tied := model.Concept{ID: "a", CreatedAt: now}
	tiedToo := model.Concept{ID: "b", CreatedAt: now}
	primary, _ = pickPrimary(tiedToo, tied)
	assert.Equal(t, "a", primary.ID, "full tie falls back to the smaller ID")
}
