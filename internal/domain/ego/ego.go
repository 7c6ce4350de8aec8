// Package ego extracts bounded-depth neighborhoods ("focus mode") around a
// root participant.
package ego

import (
	"github.com/creditmesh/netview/internal/domain/model"
)

// Depth bounds supported by focus mode.
const (
	MinDepth = 1
	MaxDepth = 2
)

// Spec describes an active focus request.
type Spec struct {
	Enabled bool
	RootPID string
	Depth   int
}

// Normalize clamps the depth into the supported range.
func (s Spec) Normalize() Spec {
	if s.Depth < MinDepth {
		s.Depth = MinDepth
	}
	if s.Depth > MaxDepth {
		s.Depth = MaxDepth
	}
	return s
}

// Extract breadth-first traverses the undirected adjacency of the given edge
// set from the root, up to depth hops, and returns the visited pid set. The
// root is always included, even with zero edges. The edge set must be the
// post-type-filter, pre-degree-filter set; degree pruning is disabled while
// focus is active because the hop bound already limits size.
func Extract(edges []model.Trustline, root string, depth int) map[string]bool {
	if depth < MinDepth {
		depth = MinDepth
	}
	if depth > MaxDepth {
		depth = MaxDepth
	}

	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], e.To)
		adj[e.To] = append(adj[e.To], e.From)
	}

	visited := map[string]bool{root: true}
	frontier := []string{root}
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, pid := range frontier {
			for _, nb := range adj[pid] {
				if !visited[nb] {
					visited[nb] = true
					next = append(next, nb)
				}
			}
		}
		frontier = next
	}
	return visited
}
