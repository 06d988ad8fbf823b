// Package efp evaluates a single Energy Flow Polynomial: a multigraph whose
// edges index pairwise angular weights and whose vertices index particle
// energy weights, contracted over all particles of an event.
package efp

import (
	"math"

	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/ve"
)

// Opts configures an EFP evaluator.  Start from DefaultOpts.
type Opts struct {
	Measure Measure
	Beta    float64 // must be > 0
	Normed  bool    // normalize the energy weights to unit sum

	// UseEFM evaluates via the energy-flow-moment decomposition instead of
	// variable elimination.  Requires a dot-product measure with Beta = 2.
	UseEFM bool

	// Contraction planner selection (ignored when the plan comes from a
	// catalog row or UseEFM is set).
	Alg      ve.Alg
	Strategy ve.Strategy
}

func DefaultOpts() Opts {
	return Opts{
		Measure: MeasureHadr,
		Beta:    1,
		Normed:  true,
	}
}

// EFP holds one graph's contraction plan for the lifetime of the instance.
// It is read-only after construction and safe to share across goroutines.
type EFP struct {
	opts    Opts
	simple  goef.EdgeList
	weights []int64
	n       int
	d       int64
	chi     int64

	einstr  string
	einpath [][2]int

	// EFM mode
	useEFM   bool
	vtxSpecs []efmSpec
	pow2     float64

	// Composite EFPs evaluate as the product of their prime factors.
	factors []*EFP
}

// NewEFP builds an evaluator for the multigraph given by its (possibly
// repeated) edge list.
func NewEFP(edges goef.EdgeList, opts Opts) (*EFP, error) {
	if len(edges) == 0 {
		return nil, errors.Wrap(goef.ErrInvalidGraph, "empty edge list")
	}
	n := edges.NumVerts()
	if err := edges.Validate(n); err != nil {
		return nil, err
	}
	simple, weights := libef.SimplifyEdges(edges)
	return newFromSimple(simple, weights, n, opts, nil, 0)
}

// NewEFPFromExpr builds an evaluator from a graph expression such as
// "0-1-2,0=2".
func NewEFPFromExpr(expr string, opts Opts) (*EFP, error) {
	edges, err := libef.ParseGraphExpr(expr)
	if err != nil {
		return nil, err
	}
	return NewEFP(edges, opts)
}

// NewEFPFromSpec builds an evaluator from one row of a generated catalog,
// reusing the stored contraction plan rather than re-running planning.
// Composite rows recursively resolve their formula's prime factors.
func NewEFPFromSpec(t *goef.Tables, row int, opts Opts) (*EFP, error) {
	if row < 0 || row >= len(t.Specs) {
		return nil, errors.Wrapf(goef.ErrBadCatalogParam, "spec row %d of %d", row, len(t.Specs))
	}
	spec := t.Specs[row]

	if spec.IsPrime() {
		g, w := spec.G(), spec.W()
		if g < 0 || int(g) >= len(t.Edges) || w < 0 || int(w) >= len(t.Weights) {
			return nil, errors.Wrapf(goef.ErrBadCatalogParam, "spec row %d references missing tables", row)
		}
		plan := &goef.EinSpec{Str: t.Einstrs[g], Path: t.Einpaths[g]}
		return newFromSimple(t.Edges[g], t.Weights[w], int(spec.N()), opts, plan, spec.C())
	}

	numPrimes := 0
	for _, s := range t.Specs {
		if !s.IsPrime() {
			break
		}
		numPrimes++
	}
	ci := row - numPrimes
	if ci < 0 || ci >= len(t.DiscFormulae) {
		return nil, errors.Wrapf(goef.ErrBadCatalogParam, "composite row %d has no formula", row)
	}

	efp := &EFP{
		opts: opts,
		n:    int(spec.N()),
		d:    spec.D(),
		chi:  spec.C(),
	}
	for _, ndk := range t.DiscFormulae[ci] {
		prow := findPrimeRow(t, numPrimes, ndk)
		if prow < 0 {
			return nil, errors.Wrapf(goef.ErrBadCatalogParam, "formula factor (%d,%d,%d) not in catalog", ndk[0], ndk[1], ndk[2])
		}
		factor, err := NewEFPFromSpec(t, prow, opts)
		if err != nil {
			return nil, err
		}
		efp.factors = append(efp.factors, factor)
	}
	return efp, nil
}

func findPrimeRow(t *goef.Tables, numPrimes int, ndk goef.NDK) int {
	for row := 0; row < numPrimes; row++ {
		s := t.Specs[row]
		if s.N() == ndk[0] && s.D() == ndk[1] && s.K() == ndk[2] {
			return row
		}
	}
	return -1
}

func newFromSimple(simple goef.EdgeList, weights []int64, n int, opts Opts, plan *goef.EinSpec, chi int64) (*EFP, error) {
	if opts.Beta <= 0 {
		return nil, errors.Wrap(goef.ErrBadOption, "beta must be > 0")
	}

	efp := &EFP{
		opts:    opts,
		simple:  simple,
		weights: weights,
		n:       n,
	}
	for _, w := range weights {
		efp.d += w
	}

	if opts.UseEFM {
		if opts.Measure == MeasureHadr || opts.Beta != 2 {
			return nil, errors.Wrap(goef.ErrUnsupportedAlg, "EFM decomposition requires a dot-product measure with beta = 2")
		}
		einstr, specs, err := efmPlan(simple, weights, n)
		if err != nil {
			return nil, err
		}
		path, err := ve.PathFor(einstr)
		if err != nil {
			return nil, err
		}
		efp.useEFM = true
		efp.einstr = einstr
		efp.einpath = path
		efp.vtxSpecs = specs
		efp.pow2 = math.Pow(2, float64(efp.d))
		return efp, nil
	}

	if plan != nil {
		efp.einstr = plan.Str
		efp.einpath = plan.Path
		efp.chi = chi
		return efp, nil
	}

	v := ve.New(opts.Alg, opts.Strategy)
	if err := v.Run(simple, n); err != nil {
		return nil, err
	}
	efp.einstr, efp.einpath = v.Einspecs()
	efp.chi = v.Chi()
	return efp, nil
}

func (efp *EFP) N() int       { return efp.n }
func (efp *EFP) D() int64     { return efp.d }
func (efp *EFP) Chi() int64   { return efp.chi }
func (efp *EFP) Opts() Opts   { return efp.opts }
func (efp *EFP) UseEFM() bool { return efp.useEFM }

// SimpleGraph returns the underlying simple edge list and its parallel
// edge weights.
func (efp *EFP) SimpleGraph() (goef.EdgeList, []int64) {
	return efp.simple, efp.weights
}

// Graph returns the multigraph edge list, one entry per unit of weight.
func (efp *EFP) Graph() goef.EdgeList {
	return libef.ExpandEdges(efp.simple, efp.weights)
}

// Einspecs returns the contraction plan this EFP evaluates with.
func (efp *EFP) Einspecs() (string, [][2]int) {
	return efp.einstr, efp.einpath
}

// Compute substitutes the event's energy weights and pairwise angles into
// this EFP's contraction plan and executes it.
func (efp *EFP) Compute(event Event) (float64, error) {
	if len(efp.factors) > 0 {
		product := 1.0
		for _, factor := range efp.factors {
			val, err := factor.Compute(event)
			if err != nil {
				return 0, err
			}
			product *= val
		}
		return product, nil
	}

	zs := efp.opts.Measure.zWeights(event, efp.opts.Normed)

	if efp.useEFM {
		return efp.computeFromEFMs(zs, event)
	}

	N := len(event)
	thetas := efp.opts.Measure.thetas(event, efp.opts.Beta)

	operands := make([]ve.Operand, 0, len(efp.simple)+efp.n)
	for i := range efp.simple {
		operands = append(operands, ve.Operand{
			Dims: []int{N, N},
			Data: elementwisePow(thetas, efp.weights[i]),
		})
	}
	for v := 0; v < efp.n; v++ {
		operands = append(operands, ve.Operand{Dims: []int{N}, Data: zs})
	}

	return ve.Execute(efp.einstr, efp.einpath, operands)
}

func (efp *EFP) computeFromEFMs(zs []float64, event Event) (float64, error) {
	nhats := make([][4]float64, len(event))
	for i, p := range event {
		nhats[i] = normalizedMomentum(p, efp.opts.Measure)
	}

	cache := make(map[efmSpec]ve.Operand)
	for _, spec := range uniqueEFMSpecs(efp.vtxSpecs) {
		cache[spec] = computeEFM(spec, zs, nhats)
	}

	operands := make([]ve.Operand, len(efp.vtxSpecs))
	for v, spec := range efp.vtxSpecs {
		operands[v] = cache[spec]
	}

	val, err := ve.Execute(efp.einstr, efp.einpath, operands)
	if err != nil {
		return 0, err
	}
	return val * efp.pow2, nil
}

// elementwisePow raises every entry of the (already beta-exponentiated)
// theta matrix to the integer edge weight.
func elementwisePow(thetas []float64, weight int64) []float64 {
	if weight == 1 {
		return thetas
	}
	out := make([]float64, len(thetas))
	for i, theta := range thetas {
		v := theta
		for w := int64(1); w < weight; w++ {
			v *= theta
		}
		out[i] = v
	}
	return out
}
