package model

import "time"

type ConflictStatus string

const (
	ConflictPending   ConflictStatus = "pending"
	ConflictResolved  ConflictStatus = "resolved"
	ConflictDismissed ConflictStatus = "dismissed"
)

// ConflictSource identifies one side of a conflicting definition.
type ConflictSource struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	Definition   string  `json:"definition"`
	PageNumber   int     `json:"page_number,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
}

// AIRecommendation is the optional output of the LLM collaborator. Absence is
// a valid state; the resolver never requires one.
type AIRecommendation struct {
	RecommendedSource string  `json:"recommended_source"` // "source1" or "source2"
	Reasoning         string  `json:"reasoning"`
	Confidence        float64 `json:"confidence"`
}

// ConceptConflict records two diverging definitions of the same term coming
// from different documents. Status moves pending->resolved or
// pending->dismissed exactly once; after that the record is immutable.
type ConceptConflict struct {
	ConflictID       string            `json:"conflict_id"`
	ConceptID        string            `json:"concept_id"`
	ConceptName      string            `json:"concept_name"`
	Source1          ConflictSource    `json:"source1"`
	Source2          ConflictSource    `json:"source2"`
	AIRecommendation *AIRecommendation `json:"ai_recommendation,omitempty"`
	Status           ConflictStatus    `json:"status"`
	DetectedAt       time.Time         `json:"detected_at"`
	ResolvedBy       string            `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time        `json:"resolved_at,omitempty"`
}

// Selected sources accepted by Resolve.
const (
	SelectSource1 = "source1"
	SelectSource2 = "source2"
	SelectCustom  = "custom"
)
