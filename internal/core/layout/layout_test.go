package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

func testEngine() *Engine {
	return NewEngine(config.Default().Layout, nil)
}

func snapshotOf(concepts []model.Concept, relationships []model.Relationship) store.Snapshot {
	return store.Snapshot{
		DocumentID:    "doc-1",
		Version:       1,
		Concepts:      concepts,
		Relationships: relationships,
	}
}

func hier(id, from, to string) model.Relationship {
	return model.Relationship{
		ID: id, SourceConceptID: from, TargetConceptID: to,
		RelationshipType: "is-a", StructureCategory: model.StructureHierarchical,
	}
}

func seq(id, from, to string) model.Relationship {
	return model.Relationship{
		ID: id, SourceConceptID: from, TargetConceptID: to,
		RelationshipType: "precedes", StructureCategory: model.StructureSequential,
	}
}

func concepts(ids ...string) []model.Concept {
	out := make([]model.Concept, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Concept{ID: id, DocumentID: "doc-1", Term: "term " + id})
	}
	return out
}

func nodeByConcept(t *testing.T, r Result, conceptID string) model.DiagramNode {
	t.Helper()
	for _, n := range r.Nodes {
		if n.ConceptID == conceptID {
			return n
		}
	}
	t.Fatalf("no node for concept %s", conceptID)
	return model.DiagramNode{}
}

func TestComputeRejectsUnknownType(t *testing.T) {
	_, err := testEngine().Compute(snapshotOf(nil, nil), Type("starburst"))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestTreeChildrenBelowParents(t *testing.T) {
	sn := snapshotOf(concepts("a", "b", "c", "d", "e"), []model.Relationship{
		hier("r1", "a", "b"),
		hier("r2", "a", "c"),
		hier("r3", "b", "d"),
		hier("r4", "c", "d"), // diamond: d must sit below both parents
		hier("r5", "d", "e"),
	})

	result, err := testEngine().Compute(sn, TypeTree)
	require.NoError(t, err)
	require.Len(t, result.Nodes, 5)

	pos := make(map[string]model.Position)
	for _, n := range result.Nodes {
		pos[n.ConceptID] = n.Position
	}
	for _, r := range sn.Relationships {
		parent, child := pos[r.SourceConceptID], pos[r.TargetConceptID]
		assert.Greater(t, child.Y, parent.Y,
			"hierarchical edge %s->%s must point downward", r.SourceConceptID, r.TargetConceptID)
	}
	assert.Len(t, result.Edges, 5)
}

func TestTreeBreaksHierarchicalCycle(t *testing.T) {
	sn := snapshotOf(concepts("a", "b", "c"), []model.Relationship{
		hier("r1", "a", "b"),
		hier("r2", "b", "c"),
		hier("r3", "c", "a"), // back-edge: dropped, not fatal
	})

	result, err := testEngine().Compute(sn, TypeTree)
	require.NoError(t, err)

	a := nodeByConcept(t, result, "a")
	b := nodeByConcept(t, result, "b")
	c := nodeByConcept(t, result, "c")
	assert.Greater(t, b.Position.Y, a.Position.Y)
	assert.Greater(t, c.Position.Y, b.Position.Y)
	// The broken edge still renders; only positioning ignores it.
	assert.Len(t, result.Edges, 3)
}

func TestTreeFallsBackToGridOnWideLevel(t *testing.T) {
	cfg := config.Default().Layout
	cfg.MaxPerLevel = 3
	e := NewEngine(cfg, nil)

	cs := concepts("root")
	var rels []model.Relationship
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("leaf-%d", i)
		cs = append(cs, model.Concept{ID: id, DocumentID: "doc-1", Term: id})
		rels = append(rels, hier(fmt.Sprintf("r%d", i), "root", id))
	}
	sn := snapshotOf(cs, rels)

	result, err := e.Compute(sn, TypeTree)
	require.NoError(t, err)

	// Grid: row-major on GridCellSize, no node deeper than the cell rows.
	ys := make(map[float64]bool)
	for _, n := range result.Nodes {
		ys[n.Position.Y] = true
	}
	assert.LessOrEqual(t, len(ys), 3, "grid fallback packs rows instead of tree levels")
}

func TestMindmapCenterAndRadius(t *testing.T) {
	sn := snapshotOf(concepts("hub", "x", "y", "z"), []model.Relationship{
		hier("r1", "hub", "x"),
		hier("r2", "hub", "y"),
		seq("r3", "hub", "z"),
	})

	e := testEngine()
	result, err := e.Compute(sn, TypeMindmap)
	require.NoError(t, err)

	hub := nodeByConcept(t, result, "hub")
	assert.Equal(t, model.Position{X: 0, Y: 0}, hub.Position, "most-connected concept anchors the origin")

	// Each satellite has degree 1: r = BaseRadius / (1+1).
	wantR := e.Config.BaseRadius / 2
	for _, id := range []string{"x", "y", "z"} {
		n := nodeByConcept(t, result, id)
		r := n.Position.X*n.Position.X + n.Position.Y*n.Position.Y
		assert.InDelta(t, wantR*wantR, r, 1e-6, "satellite %s", id)
	}
}

func TestFlowchartOrdersChain(t *testing.T) {
	sn := snapshotOf(concepts("a", "b", "c"), []model.Relationship{
		seq("r1", "a", "b"),
		seq("r2", "b", "c"),
		hier("r3", "a", "c"), // hierarchical edges are ignored by flowchart
	})

	e := testEngine()
	result, err := e.Compute(sn, TypeFlowchart)
	require.NoError(t, err)

	a := nodeByConcept(t, result, "a")
	b := nodeByConcept(t, result, "b")
	c := nodeByConcept(t, result, "c")
	assert.Equal(t, 0.0, a.Position.X)
	assert.Equal(t, e.Config.Step, b.Position.X)
	assert.Equal(t, 2*e.Config.Step, c.Position.X)

	require.Len(t, result.Edges, 2, "flowchart projects sequential edges only")
	for _, edge := range result.Edges {
		assert.Equal(t, string(model.StructureSequential), edge.Style)
	}
}

func TestFlowchartStacksIndependentChainsInLanes(t *testing.T) {
	sn := snapshotOf(concepts("a", "b", "p", "q"), []model.Relationship{
		seq("r1", "a", "b"),
		seq("r2", "p", "q"),
	})

	result, err := testEngine().Compute(sn, TypeFlowchart)
	require.NoError(t, err)

	a := nodeByConcept(t, result, "a")
	p := nodeByConcept(t, result, "p")
	assert.NotEqual(t, a.Position.Y, p.Position.Y, "independent chains occupy separate lanes")
	assert.Equal(t, a.Position.X, p.Position.X, "both chains start at column zero")
}

func TestFlowchartRejectsSequentialCycle(t *testing.T) {
	sn := snapshotOf(concepts("a", "b", "c"), []model.Relationship{
		seq("r1", "a", "b"),
		seq("r2", "b", "c"),
		seq("r3", "c", "a"),
	})

	_, err := testEngine().Compute(sn, TypeFlowchart)
	assert.ErrorIs(t, err, model.ErrCyclicSequence)
}

func TestHybridSeparatesClustersAndChains(t *testing.T) {
	// Cluster 1: a->b hierarchical with b->c sequential inside it.
	// Cluster 2: singleton z.
	sn := snapshotOf(concepts("a", "b", "c", "z"), []model.Relationship{
		hier("r1", "a", "b"),
		hier("r2", "a", "c"),
		seq("r3", "b", "c"),
	})

	e := testEngine()
	result, err := e.Compute(sn, TypeHybrid)
	require.NoError(t, err)

	a := nodeByConcept(t, result, "a")
	b := nodeByConcept(t, result, "b")
	c := nodeByConcept(t, result, "c")
	z := nodeByConcept(t, result, "z")

	assert.Greater(t, b.Position.Y, a.Position.Y)
	assert.Greater(t, c.Position.Y, a.Position.Y)
	// b and c participate in a chain: c sits one step right of b.
	assert.Equal(t, b.Position.X+e.Config.Step, c.Position.X)
	// The singleton cluster is pushed right of the first cluster's box.
	assert.Greater(t, z.Position.X, a.Position.X)
	assert.Greater(t, z.Position.X, c.Position.X)
}

func TestHybridPropagatesSequentialCycle(t *testing.T) {
	sn := snapshotOf(concepts("a", "b", "c"), []model.Relationship{
		hier("r1", "a", "b"),
		hier("r2", "a", "c"),
		seq("r3", "b", "c"),
		seq("r4", "c", "b"),
	})

	_, err := testEngine().Compute(sn, TypeHybrid)
	assert.ErrorIs(t, err, model.ErrCyclicSequence)
}

func TestComputeMemoizesByDocumentVersionAndType(t *testing.T) {
	e := testEngine()
	sn := snapshotOf(concepts("a", "b"), []model.Relationship{hier("r1", "a", "b")})

	first, err := e.Compute(sn, TypeTree)
	require.NoError(t, err)

	// Same key: served from cache even if the snapshot content changed
	// (which cannot happen for real snapshots, versions are monotonic).
	mutated := sn
	mutated.Concepts = concepts("a")
	cached, err := e.Compute(mutated, TypeTree)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	// New version recomputes.
	bumped := sn
	bumped.Version = 2
	bumped.Concepts = concepts("a")
	fresh, err := e.Compute(bumped, TypeTree)
	require.NoError(t, err)
	assert.Len(t, fresh.Nodes, 1)
}

func TestEmptySnapshotYieldsEmptyResult(t *testing.T) {
	e := testEngine()
	for _, lt := range []Type{TypeTree, TypeMindmap, TypeFlowchart, TypeHybrid} {
		result, err := e.Compute(snapshotOf(nil, nil), lt)
		require.NoError(t, err, "layout %s", lt)
		assert.Empty(t, result.Nodes, "layout %s", lt)
	}
}
