package layout

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/studymesh/conceptgraph/internal/core/store"
)

// mindmapLayout places the most-connected concept at the origin and the rest
// radially: heavily-connected nodes orbit close (r = BASE_RADIUS/(1+degree)),
// leaves drift out, angles evenly divided among siblings.
func (e *Engine) mindmapLayout(sn store.Snapshot) (Result, error) {
	if len(sn.Concepts) == 0 {
		return Result{}, nil
	}

	g := buildGraph(sn)

	centerID := g.concepts[0].ID
	for _, c := range g.concepts {
		if g.degree[c.ID] > g.degree[centerID] ||
			(g.degree[c.ID] == g.degree[centerID] && c.ID < centerID) {
			centerID = c.ID
		}
	}

	others := make([]string, 0, len(g.concepts)-1)
	for _, c := range g.concepts {
		if c.ID != centerID {
			others = append(others, c.ID)
		}
	}
	if len(others) > e.Config.MaxPerLevel {
		e.Log.Warn("mindmap ring exceeds fan-out cap, falling back to grid",
			zap.String("document_id", sn.DocumentID),
			zap.Int("count", len(others)))
		return e.gridLayout(sn), nil
	}

	sort.Slice(others, func(i, j int) bool {
		if g.degree[others[i]] != g.degree[others[j]] {
			return g.degree[others[i]] > g.degree[others[j]]
		}
		return others[i] < others[j]
	})

	pos := make(map[string][2]float64, len(g.concepts))
	pos[centerID] = [2]float64{0, 0}
	for i, id := range others {
		angle := 2 * math.Pi * float64(i) / float64(len(others))
		r := e.Config.BaseRadius / float64(1+g.degree[id])
		pos[id] = [2]float64{r * math.Cos(angle), r * math.Sin(angle)}
	}

	result := Result{Edges: diagramEdges(sn)}
	for _, c := range g.concepts {
		p := pos[c.ID]
		result.Nodes = append(result.Nodes, diagramNode(c, p[0], p[1]))
	}
	return result, nil
}
