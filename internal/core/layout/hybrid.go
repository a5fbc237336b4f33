package layout

import (
	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

// hybridLayout partitions the graph into hierarchical clusters, lays each
// cluster out as a small tree, then re-orders sequential chains inside each
// cluster with the flowchart rule. Cluster bounding boxes form the outer
// structure, placed left to right. A sequential cycle inside a cluster is
// the same data error flowchart reports.
func (e *Engine) hybridLayout(sn store.Snapshot) (Result, error) {
	g := buildGraph(sn)
	clusters := hierarchicalClusters(g)

	for _, cluster := range clusters {
		if len(cluster) > e.Config.MaxPerLevel {
			e.Log.Warn("hybrid cluster exceeds fan-out cap, falling back to grid",
				zap.String("document_id", sn.DocumentID),
				zap.Int("count", len(cluster)))
			return e.gridLayout(sn), nil
		}
	}

	pos := make(map[string][2]float64, len(g.concepts))
	xOffset := 0.0
	for _, cluster := range clusters {
		members := make(map[string]bool, len(cluster))
		for _, id := range cluster {
			members[id] = true
		}

		depth := e.clusterDepths(sn.DocumentID, g, cluster, members)

		seqOrder, err := clusterSequence(g, cluster, members)
		if err != nil {
			return Result{}, err
		}

		// Tree position inside the cluster; sequential participants take
		// their chain position on the x axis instead.
		col := make(map[int]int)
		width := 1.0
		for _, id := range cluster {
			d := depth[id]
			var x float64
			if ord, onChain := seqOrder[id]; onChain {
				x = float64(ord) * e.Config.Step
			} else {
				x = float64(col[d]) * e.Config.LevelWidth
			}
			col[d]++
			if x+e.Config.LevelWidth > width {
				width = x + e.Config.LevelWidth
			}
			pos[id] = [2]float64{xOffset + x, float64(d) * e.Config.LevelHeight}
		}
		xOffset += width + e.Config.ClusterGap
	}

	result := Result{Edges: diagramEdges(sn)}
	for _, c := range g.concepts {
		p := pos[c.ID]
		result.Nodes = append(result.Nodes, diagramNode(c, p[0], p[1]))
	}
	return result, nil
}

// clusterDepths assigns hierarchical depths within one cluster, breaking
// cycles the same way the tree strategy does (drop and log the back-edge).
func (e *Engine) clusterDepths(documentID string, g *graph, cluster []string, members map[string]bool) map[string]int {
	type edge struct{ from, to string }
	skipped := make(map[edge]bool)
	state := make(map[string]int)
	var visit func(u string)
	visit = func(u string) {
		state[u] = 1
		for _, v := range g.hierOut[u] {
			if !members[v] {
				continue
			}
			if state[v] == 1 {
				skipped[edge{u, v}] = true
				e.Log.Warn("breaking hierarchical cycle",
					zap.String("document_id", documentID),
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
	for _, id := range cluster {
		if state[id] == 0 {
			visit(id)
		}
	}

	inDeg := make(map[string]int)
	out := make(map[string][]string)
	for _, u := range cluster {
		for _, v := range g.hierOut[u] {
			if !members[v] || skipped[edge{u, v}] {
				continue
			}
			out[u] = append(out[u], v)
			inDeg[v]++
		}
	}

	depth := make(map[string]int)
	var queue []string
	for _, id := range cluster {
		if inDeg[id] == 0 {
			queue = append(queue, id)
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
	return depth
}

// clusterSequence runs Kahn over the sequential edges restricted to one
// cluster. Only nodes that actually participate in a sequential edge appear
// in the returned order map.
func clusterSequence(g *graph, cluster []string, members map[string]bool) (map[string]int, error) {
	inDeg := make(map[string]int)
	out := make(map[string][]string)
	onChain := make(map[string]bool)
	for _, u := range cluster {
		for _, v := range g.seqOut[u] {
			if !members[v] {
				continue
			}
			out[u] = append(out[u], v)
			inDeg[v]++
			onChain[u] = true
			onChain[v] = true
		}
	}
	if len(onChain) == 0 {
		return nil, nil
	}

	order := make(map[string]int)
	var queue []string
	for _, id := range cluster {
		if onChain[id] && inDeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	processed := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		processed++
		for _, v := range out[u] {
			if order[u]+1 > order[v] {
				order[v] = order[u] + 1
			}
			inDeg[v]--
			if inDeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	if processed < len(onChain) {
		for _, id := range cluster {
			if onChain[id] && inDeg[id] > 0 {
				return nil, model.CyclicSequenceError(id)
			}
		}
	}
	return order, nil
}
