package driver

const (
	// ClearDocumentQuery removes a document's mirrored graph before a
	// re-save. Merges and rejects delete concepts, so the mirror is always
	// rewritten whole rather than patched.
	ClearDocumentQuery = `
		MATCH (n:Concept {document_id: $document_id})
		DETACH DELETE n
	`

	SaveConceptQuery = `
		MERGE (n:Concept {id: $id})
		SET n.document_id = $document_id,
			n.term = $term,
			n.definition = $definition,
			n.page_number = $page_number,
			n.structure_type = $structure_type,
			n.importance_score = $importance_score,
			n.validated = $validated
		RETURN n.id AS id
	`

	SaveRelationshipQuery = `
		MATCH (source:Concept {id: $source_id})
		MATCH (target:Concept {id: $target_id})
		MERGE (source)-[e:RELATES_TO {id: $id}]->(target)
		SET e.relationship_type = $relationship_type,
			e.structure_category = $structure_category,
			e.strength = $strength,
			e.validated_by_user = $validated_by_user
		RETURN e.id AS id
	`

	GetDocumentConceptsQuery = `
		MATCH (n:Concept {document_id: $document_id})
		RETURN n.id AS id, n.term AS term, n.definition AS definition
	`
)
