package layout

import (
	"sort"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/core/store"
)

// treeLayout builds a forest from hierarchical edges: roots at the top,
// y growing with depth, x spread evenly per level and ordered so children
// sit under their parents. Cycles in hierarchical edges are broken by
// dropping the back-edge that would revisit a node already on the DFS stack;
// each break is logged, never fatal.
func (e *Engine) treeLayout(sn store.Snapshot) (Result, error) {
	g := buildGraph(sn)

	type edge struct{ from, to string }
	skipped := make(map[edge]bool)

	// DFS in ID order marks back-edges.
	state := make(map[string]int) // 0 unvisited, 1 on stack, 2 done
	var visit func(u string)
	visit = func(u string) {
		state[u] = 1
		for _, v := range g.hierOut[u] {
			if state[v] == 1 {
				skipped[edge{u, v}] = true
				e.Log.Warn("breaking hierarchical cycle",
					zap.String("document_id", sn.DocumentID),
					zap.String("source", u),
					zap.String("target", v))
				continue
			}
			if state[v] == 0 {
				visit(v)
			}
		}
		state[u] = 2
	}
	for _, c := range g.concepts {
		if state[c.ID] == 0 {
			visit(c.ID)
		}
	}

	// Longest-path depth over the remaining DAG (Kahn order).
	out := make(map[string][]string)
	inDeg := make(map[string]int)
	parents := make(map[string][]string)
	for u, targets := range g.hierOut {
		for _, v := range targets {
			if skipped[edge{u, v}] {
				continue
			}
			out[u] = append(out[u], v)
			inDeg[v]++
			parents[v] = append(parents[v], u)
		}
	}

	depth := make(map[string]int)
	var queue []string
	for _, c := range g.concepts {
		if inDeg[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range out[u] {
			if depth[u]+1 > depth[v] {
				depth[v] = depth[u] + 1
			}
			inDeg[v]--
			if inDeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	// Group into levels.
	levels := make(map[int][]string)
	maxDepth := 0
	for _, c := range g.concepts {
		d := depth[c.ID]
		levels[d] = append(levels[d], c.ID)
		if d > maxDepth {
			maxDepth = d
		}
	}
	for d := 0; d <= maxDepth; d++ {
		if len(levels[d]) > e.Config.MaxPerLevel {
			e.Log.Warn("tree level exceeds fan-out cap, falling back to grid",
				zap.String("document_id", sn.DocumentID),
				zap.Int("level", d),
				zap.Int("count", len(levels[d])))
			return e.gridLayout(sn), nil
		}
	}

	// Assign x level by level, ordering each level by the mean x of its
	// parents so subtrees stay together.
	x := make(map[string]float64)
	for d := 0; d <= maxDepth; d++ {
		ids := levels[d]
		type slot struct {
			id      string
			desired float64
		}
		slots := make([]slot, 0, len(ids))
		for _, id := range ids {
			desired := 0.0
			if ps := parents[id]; len(ps) > 0 {
				for _, p := range ps {
					desired += x[p]
				}
				desired /= float64(len(ps))
			}
			slots = append(slots, slot{id, desired})
		}
		sort.Slice(slots, func(i, j int) bool {
			if slots[i].desired != slots[j].desired {
				return slots[i].desired < slots[j].desired
			}
			return slots[i].id < slots[j].id
		})
		for i, sl := range slots {
			x[sl.id] = (float64(i) - float64(len(slots)-1)/2) * e.Config.LevelWidth
		}
	}

	result := Result{Edges: diagramEdges(sn)}
	for _, c := range g.concepts {
		result.Nodes = append(result.Nodes, diagramNode(c, x[c.ID], float64(depth[c.ID])*e.Config.LevelHeight))
	}
	return result, nil
}
