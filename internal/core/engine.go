package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core/conflict"
	"github.com/studymesh/conceptgraph/internal/core/dedupe"
	"github.com/studymesh/conceptgraph/internal/core/ingest"
	"github.com/studymesh/conceptgraph/internal/core/layout"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/similarity"
	"github.com/studymesh/conceptgraph/internal/core/store"
	"github.com/studymesh/conceptgraph/internal/core/structure"
	"github.com/studymesh/conceptgraph/internal/driver"
	"github.com/studymesh/conceptgraph/internal/llm"
)

// Engine wires the reconciliation pipeline: ingestion -> deduplication ->
// conflict detection/resolution -> structure classification -> layout. The
// store is the single source of truth; layout reads immutable snapshots.
type Engine struct {
	Store        *store.Store
	Scorer       similarity.Scorer
	Ingestor     *ingest.Ingestor
	Deduplicator *dedupe.Deduplicator
	Detector     *conflict.Detector
	Resolver     *conflict.Resolver
	Classifier   *structure.Classifier
	Layout       *layout.Engine
	Driver       driver.GraphDriver // optional graph persistence
	Log          *zap.Logger
}

// NewEngine builds an engine from configuration. llmClient may be nil (no
// conflict recommendations); graphDriver may be nil (no graph persistence);
// scorer may be nil (defaults to the lexical scorer).
func NewEngine(cfg *config.Config, scorer similarity.Scorer, llmClient llm.LLMClient, graphDriver driver.GraphDriver, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if scorer == nil {
		scorer = similarity.NewLexicalScorer()
	}

	s := store.New()
	var recommender *conflict.Recommender
	if llmClient != nil {
		recommender = conflict.NewRecommender(llmClient)
	}

	return &Engine{
		Store:        s,
		Scorer:       scorer,
		Ingestor:     ingest.NewIngestor(s, log),
		Deduplicator: dedupe.NewDeduplicator(scorer, cfg.Thresholds),
		Detector:     conflict.NewDetector(scorer, recommender, cfg.Thresholds, log),
		Resolver:     conflict.NewResolver(s),
		Classifier:   structure.NewClassifier(),
		Layout:       layout.NewEngine(cfg.Layout, log),
		Driver:       graphDriver,
		Log:          log,
	}
}

// IngestBatch loads one extraction batch and mirrors the document to the
// graph database when one is configured.
func (e *Engine) IngestBatch(ctx context.Context, documentID string, concepts []model.ConceptCandidate, relationships []model.RelationshipCandidate) (ingest.Summary, error) {
	summary, err := e.Ingestor.IngestBatch(documentID, concepts, relationships)
	if err != nil {
		return summary, err
	}
	e.persist(ctx, documentID)
	return summary, nil
}

// FindDuplicates scans one document for likely duplicate concepts.
func (e *Engine) FindDuplicates(ctx context.Context, documentID string) ([]model.DuplicatePair, error) {
	sn, err := e.Store.Snapshot(documentID)
	if err != nil {
		return nil, err
	}
	return e.Deduplicator.FindDuplicates(ctx, sn)
}

// Merge absorbs duplicateID into primaryID under the caller's version token.
func (e *Engine) Merge(ctx context.Context, documentID string, version int64, primaryID, duplicateID string) (model.Concept, int64, error) {
	merged, newVersion, err := e.Store.Merge(documentID, version, primaryID, duplicateID)
	if err != nil {
		return model.Concept{}, 0, err
	}
	e.persist(ctx, documentID)
	return merged, newVersion, nil
}

// DetectConflicts scans all documents for diverging same-term definitions
// and records the findings. docNames maps document IDs to display names.
func (e *Engine) DetectConflicts(ctx context.Context, docNames map[string]string) ([]model.ConceptConflict, error) {
	found, err := e.Detector.DetectConflicts(ctx, e.Store.SnapshotAll(), docNames)
	if err != nil {
		return nil, err
	}
	recorded := make([]model.ConceptConflict, 0, len(found))
	for _, c := range found {
		recorded = append(recorded, e.Store.AddConflict(c))
	}
	return recorded, nil
}

// ResolveConflict applies the selected definition and closes the conflict.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID, selectedSource, customDefinition, resolvedBy string) (model.Concept, error) {
	concept, err := e.Resolver.Resolve(conflictID, selectedSource, customDefinition, resolvedBy)
	if err != nil {
		return model.Concept{}, err
	}
	e.persist(ctx, concept.DocumentID)
	return concept, nil
}

// DismissConflict closes a conflict without touching any concept.
func (e *Engine) DismissConflict(conflictID, dismissedBy string) (model.ConceptConflict, error) {
	return e.Resolver.Dismiss(conflictID, dismissedBy)
}

// ClassifyRelationships runs the structure classifier over every
// relationship of a document and writes the results back.
func (e *Engine) ClassifyRelationships(documentID string, version int64) (int64, error) {
	sn, err := e.Store.Snapshot(documentID)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]model.Concept, len(sn.Concepts))
	for _, c := range sn.Concepts {
		byID[c.ID] = c
	}

	results := make(map[string]model.Relationship, len(sn.Relationships))
	for _, r := range sn.Relationships {
		cl := e.Classifier.Classify(r, byID[r.SourceConceptID], byID[r.TargetConceptID])
		r.StructureCategory = cl.StructureCategory
		r.Strength = cl.Strength
		results[r.ID] = r
	}

	return e.Store.ApplyClassification(documentID, version, results)
}

// ComputeLayout positions the document's reconciled graph under the named
// strategy. The snapshot is immutable; results are memoized per
// (version, layout type).
func (e *Engine) ComputeLayout(documentID string, layoutType layout.Type) (layout.Result, int64, error) {
	sn, err := e.Store.Snapshot(documentID)
	if err != nil {
		return layout.Result{}, 0, err
	}
	result, err := e.Layout.Compute(sn, layoutType)
	if err != nil {
		return layout.Result{}, 0, err
	}
	return result, sn.Version, nil
}

// persist mirrors a document's reconciled graph to the graph database,
// best-effort: persistence failures are logged, never surfaced to the
// mutation that triggered them.
func (e *Engine) persist(ctx context.Context, documentID string) {
	if e.Driver == nil || documentID == "" {
		return
	}
	sn, err := e.Store.Snapshot(documentID)
	if err != nil {
		return
	}
	if err := driver.SaveSnapshot(ctx, e.Driver, sn); err != nil {
		e.Log.Warn("failed to persist document graph",
			zap.String("document_id", documentID),
			zap.Error(err))
	}
}
