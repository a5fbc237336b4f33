package conflict

import (
	"strings"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

// Resolver drives the human resolution workflow over recorded conflicts.
type Resolver struct {
	Store *store.Store
}

func NewResolver(s *store.Store) *Resolver {
	return &Resolver{Store: s}
}

// Resolve applies the selected definition to the canonical concept and marks
// the conflict resolved. selectedSource must be source1, source2, or custom;
// custom requires a non-empty definition. The status transition and the
// concept write-back happen atomically in the store, so of two racing calls
// exactly one succeeds and the other gets ConflictAlreadyResolvedError.
func (r *Resolver) Resolve(conflictID, selectedSource, customDefinition, resolvedBy string) (model.Concept, error) {
	c, err := r.Store.GetConflict(conflictID)
	if err != nil {
		return model.Concept{}, err
	}

	var definition string
	switch selectedSource {
	case model.SelectSource1:
		definition = c.Source1.Definition
	case model.SelectSource2:
		definition = c.Source2.Definition
	case model.SelectCustom:
		definition = strings.TrimSpace(customDefinition)
		if definition == "" {
			return model.Concept{}, model.ValidationError("custom definition must not be empty")
		}
	default:
		return model.Concept{}, model.ValidationError("selected source must be source1, source2, or custom")
	}

	_, concept, err := r.Store.CompleteConflict(conflictID, model.ConflictResolved, definition, resolvedBy)
	if err != nil {
		return model.Concept{}, err
	}
	return concept, nil
}

// Dismiss closes a conflict without touching any concept.
func (r *Resolver) Dismiss(conflictID, dismissedBy string) (model.ConceptConflict, error) {
	c, _, err := r.Store.CompleteConflict(conflictID, model.ConflictDismissed, "", dismissedBy)
	if err != nil {
		return model.ConceptConflict{}, err
	}
	return c, nil
}
