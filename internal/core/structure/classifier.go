package structure

import (
	"strings"

	"github.com/studymesh/conceptgraph/internal/core/model"
)

// categoryByType maps the known relationship vocabulary to structural
// categories. Anything else degrades to unclassified rather than erroring.
var categoryByType = map[string]model.StructureType{
	"is-a":          model.StructureHierarchical,
	"part-of":       model.StructureHierarchical,
	"has-component": model.StructureHierarchical,
	"causes":        model.StructureSequential,
	"enables":       model.StructureSequential,
	"precedes":      model.StructureSequential,
}

// Classification is the classifier's output for one relationship.
type Classification struct {
	StructureCategory model.StructureType
	Strength          float64
}

// Classifier is a pure function over already-validated inputs; it has no
// failure modes.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify assigns a structural category from the relationship type and a
// strength blending extractor confidence (the relationship's current
// strength, when the extractor supplied one) with normalized co-occurrence
// of the two endpoint concepts across their source sentences.
func (cl *Classifier) Classify(r model.Relationship, source, target model.Concept) Classification {
	key := strings.ToLower(strings.TrimSpace(r.RelationshipType))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")

	category, ok := categoryByType[key]
	if !ok {
		category = model.StructureUnclassified
	}

	return Classification{
		StructureCategory: category,
		Strength:          clamp01(blend(r.Strength, coOccurrence(source, target))),
	}
}

// blend weights extractor confidence over co-occurrence when both exist and
// falls back to whichever signal is present.
func blend(confidence, cooc float64) float64 {
	switch {
	case confidence > 0 && cooc > 0:
		return 0.7*confidence + 0.3*cooc
	case confidence > 0:
		return confidence
	case cooc > 0:
		return cooc
	default:
		return 0.5
	}
}

// coOccurrence counts sentences mentioning both terms, normalized by the
// number of distinct sentences attached to either concept.
func coOccurrence(a, b model.Concept) float64 {
	sentences := make(map[string]bool)
	for _, s := range a.SourceSentences {
		sentences[s] = true
	}
	for _, s := range b.SourceSentences {
		sentences[s] = true
	}
	if len(sentences) == 0 {
		return 0
	}

	termA := strings.ToLower(a.Term)
	termB := strings.ToLower(b.Term)
	both := 0
	for s := range sentences {
		lower := strings.ToLower(s)
		if strings.Contains(lower, termA) && strings.Contains(lower, termB) {
			both++
		}
	}
	return float64(both) / float64(len(sentences))
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
