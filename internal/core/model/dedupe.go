package model

// DuplicatePair is a proposed merge between two concepts of the same
// document. Ephemeral: recomputed per scan, never persisted once resolved.
type DuplicatePair struct {
	PrimaryID       string  `json:"primary_id"`
	DuplicateID     string  `json:"duplicate_id"`
	SimilarityScore float64 `json:"similarity_score"`
	Reason          string  `json:"reason"`
}
