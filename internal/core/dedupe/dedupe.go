package dedupe

import (
	"context"
	"fmt"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/similarity"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

type Deduplicator struct {
	Scorer     similarity.Scorer
	Thresholds config.ThresholdConfig
}

func NewDeduplicator(scorer similarity.Scorer, thresholds config.ThresholdConfig) *Deduplicator {
	return &Deduplicator{
		Scorer:     scorer,
		Thresholds: thresholds,
	}
}

// FindDuplicates pairwise-compares the concepts of one document snapshot and
// proposes merges at or above the duplicate threshold. Pairs the user already
// confirmed as distinct are skipped. O(n^2) is fine at the expected scale of
// hundreds of concepts per document.
func (d *Deduplicator) FindDuplicates(ctx context.Context, sn store.Snapshot) ([]model.DuplicatePair, error) {
	var pairs []model.DuplicatePair

	for i := 0; i < len(sn.Concepts); i++ {
		for j := i + 1; j < len(sn.Concepts); j++ {
			a, b := sn.Concepts[i], sn.Concepts[j]
			if sn.IsDistinct(a.ID, b.ID) {
				continue
			}

			score, err := d.Scorer.Score(ctx, a, b)
			if err != nil {
				return nil, fmt.Errorf("failed to score pair ('%s','%s'): %w", a.Term, b.Term, err)
			}
			if score < d.Thresholds.Duplicate {
				continue
			}

			primary, duplicate := pickPrimary(a, b)
			pairs = append(pairs, model.DuplicatePair{
				PrimaryID:       primary.ID,
				DuplicateID:     duplicate.ID,
				SimilarityScore: score,
				Reason:          d.reason(primary, duplicate, score),
			})
		}
	}

	return pairs, nil
}

// pickPrimary chooses the surviving side of a proposed merge: validated wins,
// then higher importance, then older record.
func pickPrimary(a, b model.Concept) (primary, duplicate model.Concept) {
	switch {
	case a.Validated != b.Validated:
		if a.Validated {
			return a, b
		}
		return b, a
	case a.ImportanceScore != b.ImportanceScore:
		if a.ImportanceScore > b.ImportanceScore {
			return a, b
		}
		return b, a
	case a.CreatedAt.Before(b.CreatedAt):
		return a, b
	case b.CreatedAt.Before(a.CreatedAt):
		return b, a
	case a.ID < b.ID:
		return a, b
	default:
		return b, a
	}
}

func (d *Deduplicator) reason(primary, duplicate model.Concept, score float64) string {
	termA := similarity.NormalizeTerm(primary.Term)
	termB := similarity.NormalizeTerm(duplicate.Term)

	switch {
	case termA == termB:
		return fmt.Sprintf("identical term '%s' with overlapping definitions", primary.Term)
	case score >= d.Thresholds.HighConfidence:
		return fmt.Sprintf("near-identical term and overlapping definition ('%s' vs '%s')", primary.Term, duplicate.Term)
	default:
		return fmt.Sprintf("similar term and definition ('%s' vs '%s', score %.2f)", primary.Term, duplicate.Term, score)
	}
}
