// Package ve computes tensor-contraction plans for multigraph polynomials:
// an elimination order over the graph's vertices, an einsum-style expression,
// and a replayable pairwise execution path, plus the complexity measure chi.
package ve

import (
	"math/bits"
	"strings"

	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// Alg selects the contraction-planning algorithm.
type Alg int32

const (
	// AlgEinsum delegates path search to the einsum path optimizer
	// (pairwise contraction search, strategy-selectable).
	AlgEinsum Alg = iota

	// AlgElim uses the custom greedy min-degree variable elimination order.
	AlgElim
)

func (alg Alg) String() string {
	switch alg {
	case AlgEinsum:
		return "einsum"
	case AlgElim:
		return "elim"
	}
	return "???"
}

func ParseAlg(tag string) (Alg, error) {
	switch tag {
	case "einsum":
		return AlgEinsum, nil
	case "elim":
		return AlgElim, nil
	}
	return 0, errors.Wrapf(goef.ErrUnsupportedAlg, "ve_alg %q", tag)
}

// Strategy selects how hard AlgEinsum searches for a path.
type Strategy int32

const (
	// StrategyGreedy contracts the cheapest pair at each step.
	StrategyGreedy Strategy = iota

	// StrategyOptimal exhaustively searches contraction orders, falling
	// back to greedy above optimalCutoff operands.
	StrategyOptimal
)

// Exhaustive path search is factorial in the operand count.
const optimalCutoff = 10

func ParseStrategy(tag string) (Strategy, error) {
	switch tag {
	case "greedy":
		return StrategyGreedy, nil
	case "optimal":
		return StrategyOptimal, nil
	}
	return 0, errors.Wrapf(goef.ErrUnsupportedAlg, "strategy %q", tag)
}

// VE computes and holds one graph's contraction plan.
type VE struct {
	alg     Alg
	strat   Strategy
	chi     int64
	einstr  string
	einpath [][2]int
}

func New(alg Alg, strat Strategy) *VE {
	return &VE{alg: alg, strat: strat}
}

func (ve *VE) Alg() Alg { return ve.alg }

// Chi is the complexity of the plan found by the last Run: the maximum
// number of distinct indices alive in any single contraction step.
func (ve *VE) Chi() int64 { return ve.chi }

// Einspecs returns the einsum expression and execution path of the last Run.
// Path entries index into the working operand list, with each contraction
// result appended at the end (einsum_path semantics).
func (ve *VE) Einspecs() (einstr string, einpath [][2]int) {
	return ve.einstr, ve.einpath
}

// Run computes a contraction plan for a simple graph given by its edge list
// and vertex count.  One operand per edge (two indices) and one per vertex
// (the energy vector, one index); all indices are summed.
func (ve *VE) Run(edges goef.EdgeList, n int) error {
	if err := edges.Validate(n); err != nil {
		return err
	}
	if n > len(IndexLetters) {
		return errors.Wrapf(goef.ErrInvalidGraph, "vertex count %d exceeds index alphabet", n)
	}

	ve.einstr = buildEinstr(edges, n)

	operands := make([]labelSet, 0, len(edges)+n)
	for _, edge := range edges {
		operands = append(operands, labelBit(edge[0])|labelBit(edge[1]))
	}
	for v := 0; v < n; v++ {
		operands = append(operands, labelBit(v))
	}

	switch ve.alg {
	case AlgElim:
		ve.einpath, ve.chi = elimPath(operands, edges, n)
	case AlgEinsum:
		if ve.strat == StrategyOptimal && len(operands) <= optimalCutoff {
			ve.einpath, ve.chi = optimalPath(operands)
		} else {
			ve.einpath, ve.chi = greedyPath(operands)
		}
	default:
		return errors.Wrapf(goef.ErrUnsupportedAlg, "ve_alg %d", ve.alg)
	}
	return nil
}

// PathFor computes a greedy pairwise execution path for an arbitrary
// scalar-output einsum expression (used for moment-decomposition plans,
// whose operands are not the per-edge/per-vertex ones Run assumes).
func PathFor(einstr string) ([][2]int, error) {
	terms, out, err := parseEinstr(einstr)
	if err != nil {
		return nil, err
	}
	if out != "" {
		return nil, errors.Wrap(goef.ErrInvalidGraph, "einsum output must be scalar")
	}

	var ids [256]int
	for i := range ids {
		ids[i] = -1
	}
	next := 0

	ops := make([]labelSet, len(terms))
	for i, term := range terms {
		for _, lb := range []byte(term) {
			if ids[lb] < 0 {
				if next >= 64 {
					return nil, errors.Wrap(goef.ErrInvalidGraph, "too many einsum indices")
				}
				ids[lb] = next
				next++
			}
			ops[i] |= labelBit(ids[lb])
		}
	}

	path, _ := greedyPath(ops)
	return path, nil
}

// labelSet is a bitset of vertex indices (contraction index labels).
type labelSet uint64

func labelBit(v int) labelSet { return 1 << uint(v) }

func (s labelSet) size() int {
	return bits.OnesCount64(uint64(s))
}

var IndexLetters = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

func buildEinstr(edges goef.EdgeList, n int) string {
	var b strings.Builder
	for _, edge := range edges {
		b.WriteByte(IndexLetters[edge[0]])
		b.WriteByte(IndexLetters[edge[1]])
		b.WriteByte(',')
	}
	for v := 0; v < n; v++ {
		b.WriteByte(IndexLetters[v])
		if v < n-1 {
			b.WriteByte(',')
		}
	}
	b.WriteString("->")
	return b.String()
}

// contractPair simulates one einsum_path step over ops: operands i and j
// (i < j) are removed, and their union, minus indices alive nowhere else,
// is appended.  Returns the new operand list and the step's live-index count.
func contractPair(ops []labelSet, i, j int) ([]labelSet, int) {
	union := ops[i] | ops[j]
	var elsewhere labelSet
	for k, op := range ops {
		if k != i && k != j {
			elsewhere |= op
		}
	}
	result := union & elsewhere

	next := make([]labelSet, 0, len(ops)-1)
	for k, op := range ops {
		if k != i && k != j {
			next = append(next, op)
		}
	}
	next = append(next, result)
	return next, union.size()
}

// greedyPath picks, at each step, the pair whose contraction leaves the
// smallest intermediate, breaking ties toward fewer live indices and then
// lower operand positions, so the path is deterministic.
func greedyPath(ops []labelSet) ([][2]int, int64) {
	var path [][2]int
	chi := int64(0)

	for len(ops) > 1 {
		bestI, bestJ := -1, -1
		bestResult, bestLive := 1<<30, 1<<30

		for i := 0; i < len(ops); i++ {
			for j := i + 1; j < len(ops); j++ {
				union := ops[i] | ops[j]
				var elsewhere labelSet
				for k, op := range ops {
					if k != i && k != j {
						elsewhere |= op
					}
				}
				result := (union & elsewhere).size()
				live := union.size()
				if result < bestResult || (result == bestResult && live < bestLive) {
					bestI, bestJ, bestResult, bestLive = i, j, result, live
				}
			}
		}

		var live int
		ops, live = contractPair(ops, bestI, bestJ)
		if int64(live) > chi {
			chi = int64(live)
		}
		path = append(path, [2]int{bestI, bestJ})
	}
	return path, chi
}

// optimalPath exhaustively searches pairwise contraction orders, minimizing
// chi first and the summed live-index count second.
func optimalPath(ops []labelSet) ([][2]int, int64) {
	bestChi, bestTotal := 1<<30, 1<<30
	var bestPath [][2]int

	var search func(ops []labelSet, path [][2]int, chi, total int)
	search = func(ops []labelSet, path [][2]int, chi, total int) {
		if len(ops) == 1 {
			if chi < bestChi || (chi == bestChi && total < bestTotal) {
				bestChi, bestTotal = chi, total
				bestPath = append([][2]int(nil), path...)
			}
			return
		}
		if chi > bestChi {
			return
		}
		for i := 0; i < len(ops); i++ {
			for j := i + 1; j < len(ops); j++ {
				next, live := contractPair(ops, i, j)
				nextChi := chi
				if live > nextChi {
					nextChi = live
				}
				search(next, append(path, [2]int{i, j}), nextChi, total+live)
			}
		}
	}
	search(ops, nil, 0, 0)
	return bestPath, int64(bestChi)
}

// elimPath orders vertices by greedy min-degree elimination and expands the
// order into a pairwise path: eliminating a vertex contracts together every
// operand carrying its index.
func elimPath(ops []labelSet, edges goef.EdgeList, n int) ([][2]int, int64) {
	// Min-degree order over the elimination graph: removing a vertex
	// connects its remaining neighbors into a clique.
	adj := make([]labelSet, n)
	for _, edge := range edges {
		adj[edge[0]] |= labelBit(edge[1])
		adj[edge[1]] |= labelBit(edge[0])
	}
	remaining := make([]int, n)
	for v := range remaining {
		remaining[v] = v
	}

	var order []int
	chi := int64(0)
	for len(remaining) > 0 {
		best, bestDeg := -1, 1<<30
		for _, v := range remaining {
			if deg := adj[v].size(); deg < bestDeg {
				best, bestDeg = v, deg
			}
		}
		if int64(bestDeg)+1 > chi {
			chi = int64(bestDeg) + 1
		}
		nbrs := adj[best]
		for m := nbrs; m != 0; m &= m - 1 {
			w := bits.TrailingZeros64(uint64(m))
			adj[w] = (adj[w] | nbrs) &^ (labelBit(w) | labelBit(best))
		}
		order = append(order, best)
		next := remaining[:0]
		for _, v := range remaining {
			if v != best {
				next = append(next, v)
			}
		}
		remaining = next
	}

	// Expand to pairwise einsum_path steps.
	var path [][2]int
	for _, v := range order {
		for {
			first, second := -1, -1
			for k, op := range ops {
				if op&labelBit(v) != 0 {
					if first < 0 {
						first = k
					} else {
						second = k
						break
					}
				}
			}
			if second < 0 {
				break
			}
			ops, _ = contractPair(ops, first, second)
			path = append(path, [2]int{first, second})
		}
	}
	// Mop up disconnected leftovers (scalars) so exactly one operand remains.
	for len(ops) > 1 {
		ops, _ = contractPair(ops, 0, 1)
		path = append(path, [2]int{0, 1})
	}
	return path, chi
}
