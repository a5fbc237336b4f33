package store

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

// AddConflict records a detected conflict. Detection is a read-side scan, so
// a duplicate of an existing pending conflict (same concept, same opposing
// document) is silently coalesced into the existing record.
func (s *Store) AddConflict(c model.ConceptConflict) model.ConceptConflict {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.conflicts {
		if existing.Status == model.ConflictPending &&
			existing.ConceptID == c.ConceptID &&
			existing.Source2.DocumentID == c.Source2.DocumentID {
			return *existing
		}
	}

	if c.ConflictID == "" {
		c.ConflictID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = model.ConflictPending
	}
	if c.DetectedAt.IsZero() {
		c.DetectedAt = time.Now().UTC()
	}
	s.conflicts[c.ConflictID] = &c
	return c
}

func (s *Store) GetConflict(conflictID string) (model.ConceptConflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conflicts[conflictID]
	if !ok {
		return model.ConceptConflict{}, model.NotFoundError("conflict", conflictID)
	}
	return *c, nil
}

// ListConflicts returns conflicts filtered by status ("" for all), newest first.
func (s *Store) ListConflicts(status model.ConflictStatus) []model.ConceptConflict {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.ConceptConflict
	for _, c := range s.conflicts {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DetectedAt.Equal(out[j].DetectedAt) {
			return out[i].ConflictID < out[j].ConflictID
		}
		return out[i].DetectedAt.After(out[j].DetectedAt)
	})
	return out
}

// CompleteConflict performs the one-shot pending->resolved / pending->dismissed
// transition and, when resolving, writes the winning definition onto the
// canonical concept in the same critical section. Concurrent calls on one
// conflict see exactly one success; the rest fail with
// ConflictAlreadyResolvedError.
func (s *Store) CompleteConflict(conflictID string, status model.ConflictStatus, definition, resolvedBy string) (model.ConceptConflict, model.Concept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conflicts[conflictID]
	if !ok {
		return model.ConceptConflict{}, model.Concept{}, model.NotFoundError("conflict", conflictID)
	}
	if c.Status != model.ConflictPending {
		return model.ConceptConflict{}, model.Concept{}, model.ConflictAlreadyResolvedError(conflictID, c.Status)
	}

	var concept model.Concept
	if status == model.ConflictResolved {
		d, ok := s.docs[c.Source1.DocumentID]
		if !ok {
			return model.ConceptConflict{}, model.Concept{}, model.NotFoundError("document", c.Source1.DocumentID)
		}
		target, ok := d.concepts[c.ConceptID]
		if !ok {
			return model.ConceptConflict{}, model.Concept{}, model.NotFoundError("concept", c.ConceptID)
		}
		target.Definition = definition
		target.Validated = true
		d.version++
		concept = *target
	}

	now := time.Now().UTC()
	c.Status = status
	c.ResolvedBy = resolvedBy
	c.ResolvedAt = &now
	return *c, concept, nil
}
