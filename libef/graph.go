package libef

import (
	"math/bits"
	"sort"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// SimpleGraph is a connected undirected simple graph over vertices 0..n-1.
// Adjacency is kept as per-vertex bit rows so growth moves and iso checks
// stay allocation-light in the generation hot loop.
type SimpleGraph struct {
	n     int
	edges goef.EdgeList
	adj   []uint64 // adj[i] bit j set iff edge (i,j)
}

func NewSimpleGraph(n int, edges goef.EdgeList) (*SimpleGraph, error) {
	if err := edges.Validate(n); err != nil {
		return nil, err
	}
	X := &SimpleGraph{
		n:     n,
		edges: make(goef.EdgeList, 0, len(edges)),
		adj:   make([]uint64, n),
	}
	for _, edge := range edges {
		if X.HasEdge(edge[0], edge[1]) {
			return nil, goef.ErrInvalidGraph
		}
		X.AddEdge(edge[0], edge[1])
	}
	return X, nil
}

// SingleEdge returns the (n=2, e=1) seed graph.
func SingleEdge() *SimpleGraph {
	X, _ := NewSimpleGraph(2, goef.EdgeList{{0, 1}})
	return X
}

func (X *SimpleGraph) NumVerts() int         { return X.n }
func (X *SimpleGraph) NumEdges() int         { return len(X.edges) }
func (X *SimpleGraph) Edges() goef.EdgeList  { return X.edges }
func (X *SimpleGraph) HasEdge(a, b int) bool { return X.adj[a]&(1<<uint(b)) != 0 }

func (X *SimpleGraph) AddEdge(a, b int) {
	X.adj[a] |= 1 << uint(b)
	X.adj[b] |= 1 << uint(a)
	X.edges = append(X.edges, goef.Edge{a, b})
}

// GrowVertex returns a copy of X with one new vertex attached to vertex v.
func (X *SimpleGraph) GrowVertex(v int) *SimpleGraph {
	Xn := &SimpleGraph{
		n:     X.n + 1,
		edges: X.edges.Copy(),
		adj:   make([]uint64, X.n+1),
	}
	copy(Xn.adj, X.adj)
	Xn.AddEdge(v, X.n)
	return Xn
}

// GrowEdge returns a copy of X with a new edge between existing vertices a
// and b, or nil if the edge is already present.
func (X *SimpleGraph) GrowEdge(a, b int) *SimpleGraph {
	if X.HasEdge(a, b) {
		return nil
	}
	Xn := &SimpleGraph{
		n:     X.n,
		edges: X.edges.Copy(),
		adj:   make([]uint64, X.n),
	}
	copy(Xn.adj, X.adj)
	Xn.AddEdge(a, b)
	return Xn
}

func (X *SimpleGraph) Degree(v int) int {
	return bits.OnesCount64(X.adj[v])
}

func (X *SimpleGraph) MaxDegree() int {
	maxv := 0
	for v := 0; v < X.n; v++ {
		if deg := X.Degree(v); deg > maxv {
			maxv = deg
		}
	}
	return maxv
}

// MaxStrength returns the maximum weighted vertex degree under the given
// per-edge weights (parallel to X.Edges()).
func (X *SimpleGraph) MaxStrength(weights []int64) int64 {
	strength := make([]int64, X.n)
	for i, edge := range X.edges {
		strength[edge[0]] += weights[i]
		strength[edge[1]] += weights[i]
	}
	maxs := int64(0)
	for _, s := range strength {
		if s > maxs {
			maxs = s
		}
	}
	return maxs
}

func (X *SimpleGraph) IsConnected() bool {
	if X.n == 0 {
		return false
	}
	seen := uint64(1)
	stack := []int{0}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for m := X.adj[v] &^ seen; m != 0; m &= m - 1 {
			w := bits.TrailingZeros64(m)
			seen |= 1 << uint(w)
			stack = append(stack, w)
		}
	}
	return seen == (uint64(1)<<uint(X.n))-1
}

// SimplifyEdges reduces a multigraph edge list to its underlying simple edge
// list plus per-edge multiplicities.  Simple edges are emitted in sorted
// (lo,hi) order so the reduction is canonic.
func SimplifyEdges(edges goef.EdgeList) (simple goef.EdgeList, weights []int64) {
	counts := make(map[goef.Edge]int64, len(edges))
	for _, edge := range edges {
		a, b := edge[0], edge[1]
		if a > b {
			a, b = b, a
		}
		counts[goef.Edge{a, b}]++
	}
	simple = make(goef.EdgeList, 0, len(counts))
	for edge := range counts {
		simple = append(simple, edge)
	}
	sort.Slice(simple, func(i, j int) bool {
		if simple[i][0] != simple[j][0] {
			return simple[i][0] < simple[j][0]
		}
		return simple[i][1] < simple[j][1]
	})
	weights = make([]int64, len(simple))
	for i, edge := range simple {
		weights[i] = counts[edge]
	}
	return simple, weights
}

// ExpandEdges is the inverse of SimplifyEdges: each simple edge repeated
// by its weight.
func ExpandEdges(simple goef.EdgeList, weights []int64) goef.EdgeList {
	edges := make(goef.EdgeList, 0, len(simple))
	for i, edge := range simple {
		for w := int64(0); w < weights[i]; w++ {
			edges = append(edges, edge)
		}
	}
	return edges
}
