package layout

import "sort"

// hierarchicalClusters partitions concepts into connected components of the
// hierarchical subgraph (treating edges as undirected). Concepts with no
// hierarchical edges form singleton clusters. Components come back sorted by
// size descending, then by smallest member ID, so layout is deterministic.
func hierarchicalClusters(g *graph) [][]string {
	adj := make(map[string][]string)
	for u, targets := range g.hierOut {
		for _, v := range targets {
			adj[u] = append(adj[u], v)
			adj[v] = append(adj[v], u)
		}
	}

	visited := make(map[string]bool)
	var clusters [][]string
	for _, c := range g.concepts {
		if visited[c.ID] {
			continue
		}
		var comp []string
		stack := []string{c.ID}
		visited[c.ID] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, u)
			for _, v := range adj[u] {
				if !visited[v] {
					visited[v] = true
					stack = append(stack, v)
				}
			}
		}
		sort.Strings(comp)
		clusters = append(clusters, comp)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i]) != len(clusters[j]) {
			return len(clusters[i]) > len(clusters[j])
		}
		return clusters[i][0] < clusters[j][0]
	})
	return clusters
}
