package layout

import (
	"sort"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/core/model"
	"github.com/studymesh/conceptgraph/internal/core/store"
)

// flowchartLayout orders concepts along sequential edges only: Kahn's
// algorithm produces left-to-right chain positions, with independent chains
// stacked in separate lanes. A cycle in sequential edges is a data error the
// caller must see (CyclicSequenceError); sequence order is semantically
// meaningful, so it is never silently broken.
func (e *Engine) flowchartLayout(sn store.Snapshot) (Result, error) {
	g := buildGraph(sn)

	// Kahn over the sequential subgraph.
	inDeg := make(map[string]int)
	for _, c := range g.concepts {
		inDeg[c.ID] = g.seqIn[c.ID]
	}
	var queue []string
	for _, c := range g.concepts {
		if inDeg[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}

	order := make(map[string]int)
	processed := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		processed++
		for _, v := range g.seqOut[u] {
			if order[u]+1 > order[v] {
				order[v] = order[u] + 1
			}
			inDeg[v]--
			if inDeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	if processed < len(g.concepts) {
		for _, c := range g.concepts {
			if inDeg[c.ID] > 0 {
				return Result{}, model.CyclicSequenceError(c.ID)
			}
		}
	}

	// Lane assignment: weakly-connected components of the sequential
	// subgraph stack vertically; within a component, nodes sharing an order
	// column stack within the lane block.
	und := make(map[string][]string)
	for u, targets := range g.seqOut {
		for _, v := range targets {
			und[u] = append(und[u], v)
			und[v] = append(und[v], u)
		}
	}
	componentOf := make(map[string]int)
	var components [][]string
	for _, c := range g.concepts {
		if _, seen := componentOf[c.ID]; seen {
			continue
		}
		comp := []string{}
		stack := []string{c.ID}
		componentOf[c.ID] = len(components)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, u)
			for _, v := range und[u] {
				if _, seen := componentOf[v]; !seen {
					componentOf[v] = len(components)
					stack = append(stack, v)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}

	sort.SliceStable(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})

	pos := make(map[string][2]float64, len(g.concepts))
	yOffset := 0.0
	for _, comp := range components {
		rows := make(map[int]int) // order column -> next row
		height := 1
		for _, id := range comp {
			col := order[id]
			row := rows[col]
			rows[col]++
			if rows[col] > e.Config.MaxPerLevel {
				e.Log.Warn("flowchart column exceeds fan-out cap, falling back to grid",
					zap.String("document_id", sn.DocumentID),
					zap.Int("column", col))
				return e.gridLayout(sn), nil
			}
			if rows[col] > height {
				height = rows[col]
			}
			pos[id] = [2]float64{float64(col) * e.Config.Step, yOffset + float64(row)*e.Config.LaneGap}
		}
		yOffset += float64(height) * e.Config.LaneGap
	}

	result := Result{Edges: sequentialEdges(sn)}
	for _, c := range g.concepts {
		p := pos[c.ID]
		result.Nodes = append(result.Nodes, diagramNode(c, p[0], p[1]))
	}
	return result, nil
}

// sequentialEdges projects only the sequential relationships.
func sequentialEdges(sn store.Snapshot) []model.DiagramEdge {
	all := diagramEdges(sn)
	out := all[:0]
	for _, e := range all {
		if e.Style == string(model.StructureSequential) {
			out = append(out, e)
		}
	}
	return out
}
