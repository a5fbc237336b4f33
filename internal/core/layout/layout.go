package layout

import (
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/config"
	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

// Type names a layout strategy. The set is closed: four strategies
// dispatched through a lookup table, not an open plugin surface.
type Type string

const (
	TypeTree      Type = "tree"
	TypeMindmap   Type = "mindmap"
	TypeFlowchart Type = "flowchart"
	TypeHybrid    Type = "hybrid"
)

// Result is the renderable projection of one snapshot under one strategy.
type Result struct {
	Nodes []model.DiagramNode `json:"nodes"`
	Edges []model.DiagramEdge `json:"edges"`
}

var strategies = map[Type]func(*Engine, store.Snapshot) (Result, error){
	TypeTree:      (*Engine).treeLayout,
	TypeMindmap:   (*Engine).mindmapLayout,
	TypeFlowchart: (*Engine).flowchartLayout,
	TypeHybrid:    (*Engine).hybridLayout,
}

// Engine computes node/edge positions from immutable snapshots. Computation
// is pure and side-effect free, so results are memoized by
// (document, version, layout type) and safe to compute concurrently across
// visualizations. The viewport is user navigation state and never touched
// here.
type Engine struct {
	Config config.LayoutConfig
	Log    *zap.Logger

	mu    sync.Mutex
	cache map[cacheKey]Result
}

type cacheKey struct {
	documentID string
	version    int64
	layoutType Type
}

func NewEngine(cfg config.LayoutConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		Config: cfg,
		Log:    log,
		cache:  make(map[cacheKey]Result),
	}
}

// Compute runs the named strategy over the snapshot. Unknown strategy names
// fail with ValidationError.
func (e *Engine) Compute(sn store.Snapshot, layoutType Type) (Result, error) {
	strategy, ok := strategies[layoutType]
	if !ok {
		return Result{}, model.ValidationError("unknown layout type '" + string(layoutType) + "'")
	}

	key := cacheKey{sn.DocumentID, sn.Version, layoutType}
	e.mu.Lock()
	if cached, hit := e.cache[key]; hit {
		e.mu.Unlock()
		return cached, nil
	}
	e.mu.Unlock()

	result, err := strategy(e, sn)
	if err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	e.cache[key] = result
	e.mu.Unlock()
	return result, nil
}

// graph is the working form of a snapshot: concepts sorted by ID plus
// adjacency filtered per structure category.
type graph struct {
	concepts []model.Concept
	index    map[string]int // concept ID -> concepts slice position

	hierOut map[string][]string // hierarchical source -> targets
	hierIn  map[string]int      // hierarchical incoming count
	seqOut  map[string][]string // sequential source -> targets
	seqIn   map[string]int
	degree  map[string]int // total degree over all relationships
}

func buildGraph(sn store.Snapshot) *graph {
	g := &graph{
		concepts: sn.Concepts,
		index:    make(map[string]int, len(sn.Concepts)),
		hierOut:  make(map[string][]string),
		hierIn:   make(map[string]int),
		seqOut:   make(map[string][]string),
		seqIn:    make(map[string]int),
		degree:   make(map[string]int),
	}
	for i, c := range sn.Concepts {
		g.index[c.ID] = i
	}
	for _, r := range sn.Relationships {
		if _, ok := g.index[r.SourceConceptID]; !ok {
			continue
		}
		if _, ok := g.index[r.TargetConceptID]; !ok {
			continue
		}
		g.degree[r.SourceConceptID]++
		g.degree[r.TargetConceptID]++
		switch r.StructureCategory {
		case model.StructureHierarchical:
			g.hierOut[r.SourceConceptID] = append(g.hierOut[r.SourceConceptID], r.TargetConceptID)
			g.hierIn[r.TargetConceptID]++
		case model.StructureSequential:
			g.seqOut[r.SourceConceptID] = append(g.seqOut[r.SourceConceptID], r.TargetConceptID)
			g.seqIn[r.TargetConceptID]++
		}
	}
	for id := range g.hierOut {
		sort.Strings(g.hierOut[id])
	}
	for id := range g.seqOut {
		sort.Strings(g.seqOut[id])
	}
	return g
}

func diagramNode(c model.Concept, x, y float64) model.DiagramNode {
	return model.DiagramNode{
		ID:            "node-" + c.ID,
		ConceptID:     c.ID,
		Label:         c.Term,
		Position:      model.Position{X: x, Y: y},
		StructureType: c.StructureType,
		Style:         string(c.StructureType),
	}
}

func diagramEdges(sn store.Snapshot) []model.DiagramEdge {
	present := make(map[string]bool, len(sn.Concepts))
	for _, c := range sn.Concepts {
		present[c.ID] = true
	}
	edges := make([]model.DiagramEdge, 0, len(sn.Relationships))
	for _, r := range sn.Relationships {
		if !present[r.SourceConceptID] || !present[r.TargetConceptID] {
			continue
		}
		edges = append(edges, model.DiagramEdge{
			ID:               "edge-" + r.ID,
			SourceNodeID:     "node-" + r.SourceConceptID,
			TargetNodeID:     "node-" + r.TargetConceptID,
			RelationshipType: r.RelationshipType,
			Label:            r.RelationshipType,
			Style:            string(r.StructureCategory),
		})
	}
	return edges
}

// gridLayout is the bounded fallback for pathological fan-out: a plain
// row-major grid, O(n), no graph reasoning.
func (e *Engine) gridLayout(sn store.Snapshot) Result {
	cols := int(math.Ceil(math.Sqrt(float64(len(sn.Concepts)))))
	if cols < 1 {
		cols = 1
	}
	cell := e.Config.GridCellSize

	nodes := make([]model.DiagramNode, 0, len(sn.Concepts))
	for i, c := range sn.Concepts {
		x := float64(i%cols) * cell
		y := float64(i/cols) * cell
		nodes = append(nodes, diagramNode(c, x, y))
	}
	return Result{Nodes: nodes, Edges: diagramEdges(sn)}
}
