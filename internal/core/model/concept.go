package model

import "time"

// StructureType classifies how a concept or relationship participates in the
// document's structure.
type StructureType string

const (
	StructureHierarchical StructureType = "hierarchical"
	StructureSequential   StructureType = "sequential"
	StructureUnclassified StructureType = "unclassified"
	StructureNone         StructureType = "none"
)

type Concept struct {
	ID                  string        `json:"id"`
	DocumentID          string        `json:"document_id"`
	Term                string        `json:"term"`
	Definition          string        `json:"definition"`
	SourceSentences     []string      `json:"source_sentences"`
	PageNumber          int           `json:"page_number"`
	SurroundingConcepts []string      `json:"surrounding_concepts,omitempty"`
	StructureType       StructureType `json:"structure_type"`
	ImportanceScore     float64       `json:"importance_score"`
	Validated           bool          `json:"validated"`
	CreatedAt           time.Time     `json:"created_at"`
}

// ConceptCandidate is what the extraction collaborator hands us: a concept
// before it has an identity in the store.
type ConceptCandidate struct {
	Term                string   `json:"term"`
	Definition          string   `json:"definition"`
	SourceSentences     []string `json:"source_sentences"`
	PageNumber          int      `json:"page_number"`
	SurroundingConcepts []string `json:"surrounding_concepts,omitempty"`
	ImportanceScore     float64  `json:"importance_score"`
}

type RelationshipCandidate struct {
	SourceTerm       string  `json:"source_term"`
	TargetTerm       string  `json:"target_term"`
	RelationshipType string  `json:"relationship_type"`
	Confidence       float64 `json:"confidence"`
}
