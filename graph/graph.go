// Package graph implements the conflict graph used to pick a globally
// consistent set of non-conflicting hypotheses, and an exact solver for
// the Maximum Weighted Independent Set (MWIS) problem over it.
package graph

import "sort"

// WeightedGraph is an undirected, loopless, simple graph with non-negative
// vertex weights. Vertices are identified by their insertion index.
type WeightedGraph struct {
	weights []float64
	adj     []map[int]struct{}
}

// NewWeightedGraph returns an empty graph.
func NewWeightedGraph() *WeightedGraph {
	return &WeightedGraph{}
}

// AddVertex appends a vertex with the given weight and returns its id.
func (g *WeightedGraph) AddVertex(weight float64) int {
	id := len(g.weights)
	g.weights = append(g.weights, weight)
	g.adj = append(g.adj, make(map[int]struct{}))
	return id
}

// AddEdge connects i and j. Self-loops and duplicate edges are no-ops.
func (g *WeightedGraph) AddEdge(i, j int) {
	if i == j {
		return
	}
	g.adj[i][j] = struct{}{}
	g.adj[j][i] = struct{}{}
}

// Adjacent reports whether i and j are connected.
func (g *WeightedGraph) Adjacent(i, j int) bool {
	_, ok := g.adj[i][j]
	return ok
}

// Len returns the vertex count.
func (g *WeightedGraph) Len() int { return len(g.weights) }

// Weight returns the weight of vertex i.
func (g *WeightedGraph) Weight(i int) float64 { return g.weights[i] }

// ErrInfeasible documents that MWIS has no feasible-vs-infeasible
// distinction: the empty set is always a valid independent set of weight
// zero. MWIS never returns this; it is declared purely for API
// completeness, mirroring the documented "cannot occur" contract.
var ErrInfeasible = newSentinelError("graph: MWIS has no infeasible case, empty set is always valid")

type sentinelError string

func newSentinelError(msg string) error { return sentinelError(msg) }
func (e sentinelError) Error() string { return string(e) }

// MWIS returns the exact maximum-weight independent set of g, along with
// its total weight. Ties are broken deterministically by preferring the
// lexicographically smaller sorted vertex-id list.
func (g *WeightedGraph) MWIS() ([]int, float64) {
	if g.Len() == 0 {
		return nil, 0
	}
	e := newMWISEngine(g)
	e.solve()
	sort.Ints(e.bestSet)
	return e.bestSet, e.bestWeight
}
