package conflict

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/similarity"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

// Detector finds same-term concepts contributed by different documents whose
// definitions diverge beyond the configured cutoff. Divergence reuses the
// similarity scorer: divergence = 1 - similarity.
type Detector struct {
	Scorer      similarity.Scorer
	Recommender *Recommender // optional; conflicts without a recommendation are valid
	Thresholds  config.ThresholdConfig
	Log         *zap.Logger
}

func NewDetector(scorer similarity.Scorer, recommender *Recommender, thresholds config.ThresholdConfig, log *zap.Logger) *Detector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Detector{
		Scorer:      scorer,
		Recommender: recommender,
		Thresholds:  thresholds,
		Log:         log,
	}
}

// DetectConflicts scans snapshots of all documents, grouping concepts by
// normalized term. docNames maps document IDs to display names and may be
// sparse. The scan is read-only; returned conflicts are not yet recorded.
func (d *Detector) DetectConflicts(ctx context.Context, snapshots []store.Snapshot, docNames map[string]string) ([]model.ConceptConflict, error) {
	byTerm := make(map[string][]model.Concept)
	var termOrder []string
	for _, sn := range snapshots {
		for _, c := range sn.Concepts {
			key := similarity.NormalizeTerm(c.Term)
			if key == "" {
				continue
			}
			if _, seen := byTerm[key]; !seen {
				termOrder = append(termOrder, key)
			}
			byTerm[key] = append(byTerm[key], c)
		}
	}

	var conflicts []model.ConceptConflict
	for _, term := range termOrder {
		group := byTerm[term]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.DocumentID == b.DocumentID {
					continue
				}

				sim, err := d.Scorer.Score(ctx, a, b)
				if err != nil {
					return nil, fmt.Errorf("failed to score definitions of '%s': %w", a.Term, err)
				}
				if 1-sim <= d.Thresholds.ConflictDivergence {
					continue
				}

				c := model.ConceptConflict{
					ConceptID:   a.ID,
					ConceptName: a.Term,
					Source1:     toSource(a, docNames),
					Source2:     toSource(b, docNames),
					Status:      model.ConflictPending,
					DetectedAt:  time.Now().UTC(),
				}

				// Recommendation is best-effort and never blocks detection.
				if d.Recommender != nil {
					rec, err := d.Recommender.Recommend(ctx, c)
					if err != nil {
						d.Log.Warn("conflict recommendation unavailable",
							zap.String("term", a.Term),
							zap.Error(err))
					} else {
						c.AIRecommendation = rec
					}
				}

				conflicts = append(conflicts, c)
			}
		}
	}

	return conflicts, nil
}

func toSource(c model.Concept, docNames map[string]string) model.ConflictSource {
	name := docNames[c.DocumentID]
	if name == "" {
		name = c.DocumentID
	}
	return model.ConflictSource{
		DocumentID:   c.DocumentID,
		DocumentName: name,
		Definition:   c.Definition,
		PageNumber:   c.PageNumber,
		Confidence:   c.ImportanceScore,
	}
}
