// Package gen enumerates all non-isomorphic connected multigraphs ("primes")
// up to configured complexity bounds, combines them into disconnected
// composites, and emits the merged spec catalog.
package gen

import (
	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/ve"
)

// GenOpts are the five independent generation budgets plus the contraction
// planner selection.  Zero-valued fields assume their defaults on Run.
type GenOpts struct {
	DMax int // max total degree (required)
	NMax int // max vertex count; default DMax+1
	EMax int // max simple edge count; default DMax
	CMax int // max VE complexity chi; default NMax
	VMax int // max vertex valency; default DMax

	// CompDMaxs caps the composite degree per vertex count n.
	// Defaults to the max prime degree for every n in 4..2*DMax.
	CompDMaxs map[int]int

	Alg      ve.Alg
	Strategy ve.Strategy

	// Verbose logs per-phase generation counts via klog.
	Verbose bool
}

func (opts *GenOpts) SetDefaults() error {
	if opts.DMax < 1 {
		return errors.Wrap(goef.ErrBadCatalogParam, "DMax must be >= 1")
	}
	if opts.NMax == 0 {
		opts.NMax = opts.DMax + 1
	}
	if opts.EMax == 0 {
		opts.EMax = opts.DMax
	}
	if opts.CMax == 0 {
		opts.CMax = opts.NMax
	}
	if opts.VMax == 0 {
		opts.VMax = opts.DMax
	}
	if opts.NMax < 2 || opts.NMax > goef.MaxVtxID {
		return errors.Wrapf(goef.ErrBadCatalogParam, "NMax %d out of range", opts.NMax)
	}
	return nil
}

// Generator drives prime then composite generation and merges their results.
type Generator struct {
	Prime     *PrimeGenerator
	Composite *CompositeGenerator

	tables *goef.Tables
}

func NewGenerator(opts GenOpts) (*Generator, error) {
	prime, err := NewPrimeGenerator(opts)
	if err != nil {
		return nil, err
	}

	specs, edges, weights, einstrs, einpaths := prime.Results()

	composite, err := NewCompositeGenerator(specs, opts.CompDMaxs)
	if err != nil {
		return nil, err
	}
	discSpecs, discFormulae := composite.Results()

	gen := &Generator{
		Prime:     prime,
		Composite: composite,
		tables: &goef.Tables{
			VEAlg:        opts.Alg.String(),
			Cols:         goef.Cols[:],
			Specs:        append(specs, discSpecs...),
			DiscFormulae: discFormulae,
			Edges:        edges,
			Einstrs:      einstrs,
			Einpaths:     einpaths,
			Weights:      weights,
		},
	}
	return gen, nil
}

// Tables returns the merged catalog tables: prime rows first, composites after.
func (gen *Generator) Tables() *goef.Tables {
	return gen.tables
}

// Save persists this generator's results to the given catalog.
func (gen *Generator) Save(cat goef.Catalog) error {
	return cat.Save(gen.tables)
}
