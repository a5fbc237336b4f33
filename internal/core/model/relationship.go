package model

type Relationship struct {
	ID                string        `json:"id"`
	SourceConceptID   string        `json:"source_concept_id"`
	TargetConceptID   string        `json:"target_concept_id"`
	RelationshipType  string        `json:"relationship_type"`
	StructureCategory StructureType `json:"structure_category"`
	Strength          float64       `json:"strength"`
	ValidatedByUser   bool          `json:"validated_by_user"`
}
