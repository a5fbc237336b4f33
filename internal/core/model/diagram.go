package model

// Position is a point in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DiagramNode and DiagramEdge are derived view models for the rendering
// layer. They are never authoritative; the layout engine may recompute them
// freely without touching the store.
type DiagramNode struct {
	ID            string        `json:"id"`
	ConceptID     string        `json:"concept_id"`
	Label         string        `json:"label"`
	Position      Position      `json:"position"`
	StructureType StructureType `json:"structure_type"`
	Style         string        `json:"style,omitempty"`
}

type DiagramEdge struct {
	ID               string `json:"id"`
	SourceNodeID     string `json:"source_node_id"`
	TargetNodeID     string `json:"target_node_id"`
	RelationshipType string `json:"relationship_type"`
	Label            string `json:"label,omitempty"`
	Style            string `json:"style,omitempty"`
}

// Viewport is user navigation state, persisted per (document, user, layout).
// Layout recomputation never touches it.
type Viewport struct {
	Zoom float64  `json:"zoom"`
	Pan  Position `json:"pan"`
}
