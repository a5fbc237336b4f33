package driver

import (
	"context"
	"fmt"

	"github.com/studymesh/conceptgraph/internal/core/store"
)

// SaveSnapshot mirrors one document snapshot into the graph database:
// clears the document's subgraph, then re-saves every concept and
// relationship.
func SaveSnapshot(ctx context.Context, d GraphDriver, sn store.Snapshot) error {
	if _, err := d.ExecuteQuery(ctx, ClearDocumentQuery, map[string]interface{}{
		"document_id": sn.DocumentID,
	}); err != nil {
		return fmt.Errorf("failed to clear document '%s': %w", sn.DocumentID, err)
	}

	for _, c := range sn.Concepts {
		params := map[string]interface{}{
			"id":               c.ID,
			"document_id":      c.DocumentID,
			"term":             c.Term,
			"definition":       c.Definition,
			"page_number":      c.PageNumber,
			"structure_type":   string(c.StructureType),
			"importance_score": c.ImportanceScore,
			"validated":        c.Validated,
		}
		if _, err := d.ExecuteQuery(ctx, SaveConceptQuery, params); err != nil {
			return fmt.Errorf("failed to save concept '%s': %w", c.Term, err)
		}
	}

	for _, r := range sn.Relationships {
		params := map[string]interface{}{
			"id":                 r.ID,
			"source_id":          r.SourceConceptID,
			"target_id":          r.TargetConceptID,
			"relationship_type":  r.RelationshipType,
			"structure_category": string(r.StructureCategory),
			"strength":           r.Strength,
			"validated_by_user":  r.ValidatedByUser,
		}
		if _, err := d.ExecuteQuery(ctx, SaveRelationshipQuery, params); err != nil {
			return fmt.Errorf("failed to save relationship '%s': %w", r.ID, err)
		}
	}

	return nil
}
