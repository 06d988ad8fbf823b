package efp

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/ve"
)

// efmSpec identifies one energy-flow-moment tensor: its rank and how many of
// its leading indices are metric-lowered.
type efmSpec struct {
	dim  int
	nlow int
}

// efmPlan decomposes a multigraph into one moment tensor per vertex.  Every
// unit of edge weight gets its own contraction index, shared by the tensors
// of the edge's two endpoints; the lower-numbered endpoint carries the index
// lowered, so each pairing contracts exactly one lowered with one raised
// index.  Lowered indices come first in each vertex term.
func efmPlan(simple goef.EdgeList, weights []int64, n int) (einstr string, specs []efmSpec, err error) {
	d := int64(0)
	for _, w := range weights {
		d += w
	}
	if int(d) > len(ve.IndexLetters) {
		return "", nil, errors.Wrapf(goef.ErrInvalidGraph, "degree %d exceeds index alphabet", d)
	}

	lowered := make([][]byte, n)
	raised := make([][]byte, n)
	next := 0
	for i, edge := range simple {
		lo, hi := edge[0], edge[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		for w := int64(0); w < weights[i]; w++ {
			letter := ve.IndexLetters[next]
			next++
			lowered[lo] = append(lowered[lo], letter)
			raised[hi] = append(raised[hi], letter)
		}
	}

	terms := make([]string, n)
	specs = make([]efmSpec, n)
	for v := 0; v < n; v++ {
		terms[v] = string(lowered[v]) + string(raised[v])
		specs[v] = efmSpec{
			dim:  len(lowered[v]) + len(raised[v]),
			nlow: len(lowered[v]),
		}
	}
	return strings.Join(terms, ",") + "->", specs, nil
}

// uniqueEFMSpecs dedups the per-vertex specs so each distinct (dim, nlow)
// moment is computed once per event.
func uniqueEFMSpecs(specs []efmSpec) []efmSpec {
	var unique []efmSpec
	for _, spec := range specs {
		seen := false
		for _, u := range unique {
			if u == spec {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, spec)
		}
	}
	return unique
}

// computeEFM builds the rank-dim moment tensor over the four-vector index:
// the z-weighted sum of dim-fold tensor powers of each particle's normalized
// momentum, with the metric applied to the first nlow slots.
func computeEFM(spec efmSpec, zs []float64, nhats [][4]float64) ve.Operand {
	dims := make([]int, spec.dim)
	size := 1
	for k := range dims {
		dims[k] = 4
		size *= 4
	}
	data := make([]float64, size)

	idx := make([]int, spec.dim)
	for pos := 0; pos < size; pos++ {
		total := 0.0
		for i := range zs {
			term := zs[i]
			for k, mu := range idx {
				comp := nhats[i][mu]
				if k < spec.nlow && mu > 0 {
					comp = -comp
				}
				term *= comp
			}
			total += term
		}
		data[pos] = total

		for k := spec.dim - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < 4 {
				break
			}
			idx[k] = 0
		}
	}
	return ve.Operand{Dims: dims, Data: data}
}
