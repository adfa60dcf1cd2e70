package graph

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// mwisEngine is a dedicated branch-and-bound search over a WeightedGraph,
// structured in the idiom of a depth-first exact solver: explicit fields,
// no closures, deterministic branching order, admissible-bound pruning.
type mwisEngine struct {
	g             *WeightedGraph
	order         []int     // vertex ids, sorted by decreasing weight then ascending id
	suffixWeight  []float64 // suffixWeight[i] = sum of weights of order[i:]
	current       []int
	currentWeight float64
	bestSet       []int
	bestWeight    float64
}

func newMWISEngine(g *WeightedGraph) *mwisEngine {
	order := make([]int, g.Len())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		wa, wb := g.Weight(order[a]), g.Weight(order[b])
		if wa != wb {
			return wa > wb
		}
		return order[a] < order[b]
	})

	weights := make([]float64, len(order))
	for i, v := range order {
		weights[i] = g.Weight(v)
	}
	suffix := make([]float64, len(order)+1)
	for i := len(order) - 1; i >= 0; i-- {
		suffix[i] = floats.Sum(weights[i:])
	}

	return &mwisEngine{g: g, order: order, suffixWeight: suffix}
}

func (e *mwisEngine) solve() {
	e.dfs(0)
	if e.bestSet == nil {
		e.bestSet = []int{}
	}
}

// dfs decides, in order, whether order[idx] joins the independent set.
func (e *mwisEngine) dfs(idx int) {
	if idx == len(e.order) {
		e.consider()
		return
	}
	// Admissible bound: even if every remaining vertex could be added
	// (ignoring conflicts), the achievable weight cannot exceed this.
	bound := e.currentWeight + e.suffixWeight[idx]
	if bound < e.bestWeight {
		return
	}

	v := e.order[idx]

	// Branch A: include v, provided it conflicts with nothing chosen so far.
	if e.independentOf(v) {
		e.current = append(e.current, v)
		e.currentWeight += e.g.Weight(v)
		e.dfs(idx + 1)
		e.currentWeight -= e.g.Weight(v)
		e.current = e.current[:len(e.current)-1]
	}

	// Branch B: exclude v.
	e.dfs(idx + 1)
}

func (e *mwisEngine) independentOf(v int) bool {
	for _, u := range e.current {
		if e.g.Adjacent(u, v) {
			return false
		}
	}
	return true
}

// consider compares the just-completed candidate set against the best one
// found so far, preferring strictly higher weight and, on ties, the
// lexicographically smaller sorted vertex-id list.
func (e *mwisEngine) consider() {
	if e.bestSet == nil {
		e.bestWeight = e.currentWeight
		e.bestSet = append([]int(nil), e.current...)
		return
	}
	if e.currentWeight > e.bestWeight {
		e.bestWeight = e.currentWeight
		e.bestSet = append([]int(nil), e.current...)
		return
	}
	if e.currentWeight == e.bestWeight {
		candidate := append([]int(nil), e.current...)
		sort.Ints(candidate)
		best := append([]int(nil), e.bestSet...)
		sort.Ints(best)
		if lexLess(candidate, best) {
			e.bestSet = candidate
		}
	}
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
