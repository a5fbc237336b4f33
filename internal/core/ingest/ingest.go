package ingest

import (
	"strings"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/similarity"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

// Ingestor loads extraction-produced candidate batches into the store. The
// extractor itself (OCR, prompting) is an external collaborator; by the time
// a batch arrives here it is plain data keyed by document ID.
type Ingestor struct {
	Store *store.Store
	Log   *zap.Logger
}

func NewIngestor(s *store.Store, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{Store: s, Log: log}
}

// Summary reports what a batch produced.
type Summary struct {
	ConceptsAdded        int `json:"concepts_added"`
	RelationshipsAdded   int `json:"relationships_added"`
	RelationshipsSkipped int `json:"relationships_skipped"`
}

// IngestBatch validates the whole batch up front, then inserts concepts
// (unvalidated) and resolves relationship candidates by normalized term
// against both the batch and the document's existing concepts. Candidates
// referencing unknown terms are extraction noise: skipped and logged, not
// fatal. A malformed candidate fails the batch before anything is written.
func (i *Ingestor) IngestBatch(documentID string, concepts []model.ConceptCandidate, relationships []model.RelationshipCandidate) (Summary, error) {
	if strings.TrimSpace(documentID) == "" {
		return Summary{}, model.ValidationError("document id must not be empty")
	}
	for _, c := range concepts {
		if strings.TrimSpace(c.Term) == "" {
			return Summary{}, model.ValidationError("concept candidate term must not be empty")
		}
	}
	for _, r := range relationships {
		if strings.TrimSpace(r.RelationshipType) == "" {
			return Summary{}, model.ValidationError("relationship candidate type must not be empty")
		}
	}

	byTerm := make(map[string]string) // normalized term -> concept ID
	if sn, err := i.Store.Snapshot(documentID); err == nil {
		for _, c := range sn.Concepts {
			byTerm[similarity.NormalizeTerm(c.Term)] = c.ID
		}
	}

	var summary Summary
	for _, cand := range concepts {
		c := i.Store.AddConcept(documentID, model.Concept{
			Term:                cand.Term,
			Definition:          cand.Definition,
			SourceSentences:     cand.SourceSentences,
			PageNumber:          cand.PageNumber,
			SurroundingConcepts: cand.SurroundingConcepts,
			ImportanceScore:     clamp01(cand.ImportanceScore),
		})
		byTerm[similarity.NormalizeTerm(c.Term)] = c.ID
		summary.ConceptsAdded++
	}

	for _, cand := range relationships {
		sourceID, okS := byTerm[similarity.NormalizeTerm(cand.SourceTerm)]
		targetID, okT := byTerm[similarity.NormalizeTerm(cand.TargetTerm)]
		if !okS || !okT || sourceID == targetID {
			i.Log.Debug("skipping unresolvable relationship candidate",
				zap.String("document_id", documentID),
				zap.String("source_term", cand.SourceTerm),
				zap.String("target_term", cand.TargetTerm))
			summary.RelationshipsSkipped++
			continue
		}
		_, err := i.Store.AddRelationship(documentID, model.Relationship{
			SourceConceptID:  sourceID,
			TargetConceptID:  targetID,
			RelationshipType: cand.RelationshipType,
			Strength:         clamp01(cand.Confidence),
		})
		if err != nil {
			return summary, err
		}
		summary.RelationshipsAdded++
	}

	return summary, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
