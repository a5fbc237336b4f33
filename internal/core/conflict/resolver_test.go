package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

func recordedConflict(t *testing.T) (*store.Store, model.Concept, model.ConceptConflict) {
	t.Helper()
	s := store.New()
	c := s.AddConcept("doc-1", model.Concept{Term: "Schema", Definition: "the layout of tables"})
	s.AddConcept("doc-2", model.Concept{Term: "Schema", Definition: "a cognitive framework for prior knowledge"})

	conflict := s.AddConflict(model.ConceptConflict{
		ConceptID:   c.ID,
		ConceptName: "Schema",
		Source1:     model.ConflictSource{DocumentID: "doc-1", Definition: "the layout of tables", Confidence: 0.6},
		Source2:     model.ConflictSource{DocumentID: "doc-2", Definition: "a cognitive framework for prior knowledge", Confidence: 0.8},
	})
	return s, c, conflict
}

func TestResolveSelectsSource2(t *testing.T) {
	s, seeded, conflict := recordedConflict(t)
	r := NewResolver(s)

	concept, err := r.Resolve(conflict.ConflictID, model.SelectSource2, "", "user-7")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, concept.ID)
	assert.Equal(t, "a cognitive framework for prior knowledge", concept.Definition)
	assert.True(t, concept.Validated)

	got, err := s.GetConflict(conflict.ConflictID)
	require.NoError(t, err)
	assert.Equal(t, model.ConflictResolved, got.Status)
	assert.Equal(t, "user-7", got.ResolvedBy)
}

func TestResolveCustomDefinition(t *testing.T) {
	s, _, conflict := recordedConflict(t)
	r := NewResolver(s)

	concept, err := r.Resolve(conflict.ConflictID, model.SelectCustom, "  a blueprint, in either sense  ", "user-7")
	require.NoError(t, err)
	assert.Equal(t, "a blueprint, in either sense", concept.Definition)
}

func TestResolveEmptyCustomDefinitionLeavesConflictPending(t *testing.T) {
	s, _, conflict := recordedConflict(t)
	r := NewResolver(s)

	_, err := r.Resolve(conflict.ConflictID, model.SelectCustom, "   ", "user-7")
	assert.ErrorIs(t, err, model.ErrValidation)

	got, err := s.GetConflict(conflict.ConflictID)
	require.NoError(t, err)
	assert.Equal(t, model.ConflictPending, got.Status)
}

func TestResolveUnknownSelection(t *testing.T) {
	s, _, conflict := recordedConflict(t)
	r := NewResolver(s)

	_, err := r.Resolve(conflict.ConflictID, "source9", "", "user-7")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestResolveTwiceFails(t *testing.T) {
	s, _, conflict := recordedConflict(t)
	r := NewResolver(s)

	_, err := r.Resolve(conflict.ConflictID, model.SelectSource1, "", "user-7")
	require.NoError(t, err)

	_, err = r.Resolve(conflict.ConflictID, model.SelectSource2, "", "user-8")
	assert.ErrorIs(t, err, model.ErrConflictAlreadyResolved)
}

func TestDismissLeavesConceptUntouched(t *testing.T) {
	s, seeded, conflict := recordedConflict(t)
	r := NewResolver(s)

	dismissed, err := r.Dismiss(conflict.ConflictID, "user-7")
	require.NoError(t, err)
	assert.Equal(t, model.ConflictDismissed, dismissed.Status)

	fresh, err := s.GetConcept("doc-1", seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "the layout of tables", fresh.Definition)
	assert.False(t, fresh.Validated)
}
