package ve

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// Operand is one dense tensor argument to Execute.  Data is laid out
// row-major over Dims; its index labels come from the einsum expression.
type Operand struct {
	Dims []int
	Data []float64
}

// Execute replays a contraction plan produced by Run (or any einsum-style
// plan with a scalar output) against concrete operands.  Each path step
// contracts two operands from the working list and appends the result;
// indices no longer referenced by surviving operands are summed out.
func Execute(einstr string, path [][2]int, args []Operand) (float64, error) {
	terms, out, err := parseEinstr(einstr)
	if err != nil {
		return 0, err
	}
	if out != "" {
		return 0, errors.Wrap(goef.ErrInvalidGraph, "einsum output must be scalar")
	}
	if len(terms) != len(args) {
		return 0, errors.Wrapf(goef.ErrInvalidGraph, "einsum expects %d operands, got %d", len(terms), len(args))
	}

	tensors := make([]*tensor, len(args))
	for i, term := range terms {
		if len(term) != len(args[i].Dims) {
			return 0, errors.Wrapf(goef.ErrInvalidGraph, "operand %d rank mismatch", i)
		}
		size := 1
		for _, dim := range args[i].Dims {
			size *= dim
		}
		if size != len(args[i].Data) {
			return 0, errors.Wrapf(goef.ErrInvalidGraph, "operand %d has %d elements, dims imply %d", i, len(args[i].Data), size)
		}
		tensors[i] = &tensor{
			labels: []byte(term),
			dims:   args[i].Dims,
			data:   args[i].Data,
		}
	}

	for _, step := range path {
		i, j := step[0], step[1]
		if i > j {
			i, j = j, i
		}
		if i < 0 || j >= len(tensors) || i == j {
			return 0, errors.Wrapf(goef.ErrInvalidGraph, "bad einsum path step (%d,%d)", step[0], step[1])
		}

		var alive [256]bool
		for k, t := range tensors {
			if k != i && k != j {
				for _, lb := range t.labels {
					alive[lb] = true
				}
			}
		}
		res := contract(tensors[i], tensors[j], &alive)

		next := tensors[:0]
		for k, t := range tensors {
			if k != i && k != j {
				next = append(next, t)
			}
		}
		tensors = append(next, res)
	}

	if len(tensors) != 1 {
		return 0, errors.Wrap(goef.ErrInvalidGraph, "einsum path leaves multiple operands")
	}

	// Any labels the path never summed are fully summed here.
	total := 0.0
	for _, v := range tensors[0].data {
		total += v
	}
	return total, nil
}

func parseEinstr(einstr string) (terms []string, out string, err error) {
	arrow := strings.Index(einstr, "->")
	if arrow < 0 {
		return nil, "", errors.Wrapf(goef.ErrInvalidGraph, "einsum %q missing '->'", einstr)
	}
	return strings.Split(einstr[:arrow], ","), einstr[arrow+2:], nil
}

type tensor struct {
	labels []byte
	dims   []int
	data   []float64
}

// contract multiplies a and b, keeping only indices in the alive set and
// summing the rest.
func contract(a, b *tensor, alive *[256]bool) *tensor {
	labels := append([]byte(nil), a.labels...)
	dims := append([]int(nil), a.dims...)
	for i, lb := range b.labels {
		if !hasLabel(labels, lb) {
			labels = append(labels, lb)
			dims = append(dims, b.dims[i])
		}
	}

	var resLabels []byte
	var resDims []int
	for i, lb := range labels {
		if alive[lb] {
			resLabels = append(resLabels, lb)
			resDims = append(resDims, dims[i])
		}
	}

	resSize := 1
	for _, dim := range resDims {
		resSize *= dim
	}
	res := &tensor{
		labels: resLabels,
		dims:   resDims,
		data:   make([]float64, resSize),
	}

	// A zero-length dimension means there is nothing to accumulate.
	for _, dim := range dims {
		if dim == 0 {
			return res
		}
	}

	aStride := unionStrides(a, labels)
	bStride := unionStrides(b, labels)
	rStride := unionStrides(res, labels)

	idx := make([]int, len(labels))
	for {
		aPos, bPos, rPos := 0, 0, 0
		for k := range labels {
			aPos += idx[k] * aStride[k]
			bPos += idx[k] * bStride[k]
			rPos += idx[k] * rStride[k]
		}
		res.data[rPos] += a.data[aPos] * b.data[bPos]

		k := len(labels) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < dims[k] {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			break
		}
	}
	return res
}

func hasLabel(labels []byte, lb byte) bool {
	for _, l := range labels {
		if l == lb {
			return true
		}
	}
	return false
}

// unionStrides maps each union label to its row-major stride in t
// (zero if t does not carry that label).
func unionStrides(t *tensor, union []byte) []int {
	strides := make([]int, len(t.labels))
	acc := 1
	for i := len(t.labels) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= t.dims[i]
	}
	out := make([]int, len(union))
	for k, lb := range union {
		for i, l := range t.labels {
			if l == lb {
				out[k] = strides[i]
				break
			}
		}
	}
	return out
}
