package store

import (
	"github.com/studymesh/conceptgraph/internal/core/model"
)

// Merge absorbs duplicateID into primaryID. Relationships referencing the
// duplicate are rewritten to the primary, parallel edges collapse keeping the
// higher strength, and validation/importance carry over conservatively.
// Idempotent: merging an already-absorbed duplicate is a no-op returning the
// current primary. All checks run before any mutation, so a failed merge
// leaves the store untouched.
func (s *Store) Merge(documentID string, version int64, primaryID, duplicateID string) (model.Concept, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[documentID]
	if !ok {
		return model.Concept{}, 0, model.NotFoundError("document", documentID)
	}

	if primaryID == duplicateID {
		return model.Concept{}, 0, model.InvalidMergeError("cannot merge a concept into itself")
	}

	// Already absorbed: follow the absorption chain and report the survivor.
	if _, present := d.concepts[duplicateID]; !present {
		if survivor, absorbed := d.absorbed[duplicateID]; absorbed {
			for {
				next, ok := d.absorbed[survivor]
				if !ok {
					break
				}
				survivor = next
			}
			if c, ok := d.concepts[survivor]; ok {
				return *c, d.version, nil
			}
			return model.Concept{}, 0, model.NotFoundError("concept", survivor)
		}
		return model.Concept{}, 0, model.NotFoundError("concept", duplicateID)
	}

	if err := s.checkVersion(d, documentID, version); err != nil {
		return model.Concept{}, 0, err
	}

	primary, ok := d.concepts[primaryID]
	if !ok {
		return model.Concept{}, 0, model.NotFoundError("concept", primaryID)
	}
	duplicate := d.concepts[duplicateID]

	// Rewrite relationships that touch the duplicate. An edge between the
	// pair becomes a self-loop after rewriting and is dropped; parallel
	// edges keep the stronger one.
	type endpoint struct{ source, target string }
	kept := make(map[endpoint]*model.Relationship)
	var removed []string

	for id, r := range d.relationships {
		source, target := r.SourceConceptID, r.TargetConceptID
		if source == duplicateID {
			source = primaryID
		}
		if target == duplicateID {
			target = primaryID
		}
		if source == target {
			removed = append(removed, id)
			continue
		}
		key := endpoint{source, target}
		if prev, exists := kept[key]; exists {
			loser := r
			if r.Strength > prev.Strength || (r.Strength == prev.Strength && r.ID < prev.ID) {
				loser = prev
				kept[key] = r
			}
			removed = append(removed, loser.ID)
			continue
		}
		kept[key] = r
	}

	for key, r := range kept {
		r.SourceConceptID = key.source
		r.TargetConceptID = key.target
	}
	for _, id := range removed {
		delete(d.relationships, id)
	}

	primary.Validated = primary.Validated || duplicate.Validated
	if duplicate.ImportanceScore > primary.ImportanceScore {
		primary.ImportanceScore = duplicate.ImportanceScore
	}
	primary.SourceSentences = appendUnique(primary.SourceSentences, duplicate.SourceSentences)

	delete(d.concepts, duplicateID)
	d.absorbed[duplicateID] = primaryID
	d.version++
	return *primary, d.version, nil
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}
