package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef"
)

func generate(t *testing.T, opts GenOpts) *goef.Tables {
	g, err := NewGenerator(opts)
	require.NoError(t, err)
	return g.Tables()
}

func numPrimes(t *goef.Tables) int {
	n := 0
	for _, spec := range t.Specs {
		if !spec.IsPrime() {
			break
		}
		n++
	}
	return n
}

func TestGenerateDmax2(t *testing.T) {
	tables := generate(t, GenOpts{DMax: 2})

	// The single-edge graph carries exactly the weightings d=1 and d=2.
	var dumbbellDs []int64
	for row := 0; row < numPrimes(tables); row++ {
		spec := tables.Specs[row]
		if spec.N() == 2 {
			require.EqualValues(t, 1, spec.E())
			dumbbellDs = append(dumbbellDs, spec.D())
		}
	}
	require.ElementsMatch(t, []int64{1, 2}, dumbbellDs)

	// Two disjoint unit-weight edges form the one composite that fits:
	// two n=2 primes already cover its n=4, d=2 budget.
	twoDumbbells := goef.Formula{{2, 1, 0}, {2, 1, 0}}
	require.Len(t, tables.DiscFormulae, 1)
	require.True(t, tables.DiscFormulae[0].IsEqual(twoDumbbells))
	require.Equal(t, len(tables.Specs), numPrimes(tables)+1)

	comp := tables.Specs[len(tables.Specs)-1]
	require.False(t, comp.IsPrime())
	require.EqualValues(t, 4, comp.N())
	require.EqualValues(t, 2, comp.D())
}

func TestPrimeCountsByDegree(t *testing.T) {
	tables := generate(t, GenOpts{DMax: 4})
	require.Equal(t, len(tables.Specs), numPrimes(tables)+len(tables.DiscFormulae))

	// Connected multigraph counts per total degree.
	counts := map[int64]int{}
	for row := 0; row < numPrimes(tables); row++ {
		counts[tables.Specs[row].D()]++
	}
	require.Equal(t, map[int64]int{1: 1, 2: 2, 3: 5, 4: 12}, counts)
}

func TestPrimeRowInvariants(t *testing.T) {
	tables := generate(t, GenOpts{DMax: 3})
	require.Equal(t, len(tables.Einstrs), len(tables.Edges))
	require.Equal(t, len(tables.Einpaths), len(tables.Edges))

	kNext := map[[2]int64]int64{}
	for row := 0; row < numPrimes(tables); row++ {
		spec := tables.Specs[row]
		require.True(t, spec.IsPrime())

		g, w := spec.G(), spec.W()
		require.Less(t, int(g), len(tables.Edges))
		require.Less(t, int(w), len(tables.Weights))

		edges := tables.Edges[g]
		weights := tables.Weights[w]
		require.EqualValues(t, len(edges), spec.E())
		require.Len(t, weights, len(edges))

		// Total degree is the edge weight sum and never less than the
		// simple edge count.
		d := int64(0)
		for _, weight := range weights {
			require.GreaterOrEqual(t, weight, int64(1))
			d += weight
		}
		require.Equal(t, spec.D(), d)
		require.GreaterOrEqual(t, spec.D(), spec.E())

		// k runs within each (n, d) in row order.
		nd := [2]int64{spec.N(), spec.D()}
		require.Equal(t, kNext[nd], spec.K())
		kNext[nd]++
	}
}

func TestPrimeBucketsIsoFree(t *testing.T) {
	pg, err := NewPrimeGenerator(GenOpts{DMax: 4})
	require.NoError(t, err)
	specs, edges, weights, _, _ := pg.Results()

	// No two rows may share an isomorphic (graph, weighting) pair.
	for i := range specs {
		Xi, err := libef.NewSimpleGraph(int(specs[i].N()), edges[specs[i].G()])
		require.NoError(t, err)

		for j := i + 1; j < len(specs); j++ {
			if specs[i].N() != specs[j].N() || specs[i].D() != specs[j].D() ||
				specs[i].E() != specs[j].E() {
				continue
			}
			if specs[i].G() == specs[j].G() {
				require.False(t,
					libef.WeightsIsomorphic(Xi, weights[specs[i].W()], weights[specs[j].W()]),
					"rows %d and %d carry isomorphic weightings", i, j)
			}
		}
	}
}

func TestCompositeDmax4(t *testing.T) {
	tables := generate(t, GenOpts{DMax: 4, NMax: 4})
	require.NotEmpty(t, tables.DiscFormulae)

	primes := numPrimes(tables)
	for ci, formula := range tables.DiscFormulae {
		spec := tables.Specs[primes+ci]
		require.False(t, spec.IsPrime())
		require.GreaterOrEqual(t, len(formula), 2)

		// Vertex counts and degrees of the factors sum to the composite's.
		n, d := int64(0), int64(0)
		for _, ndk := range formula {
			n += ndk[0]
			d += ndk[1]
		}
		require.Equal(t, spec.N(), n)
		require.Equal(t, spec.D(), d)
	}

	// Two disjoint single edges with unit weights: factors (2,1,0)+(2,1,0).
	found := false
	for _, formula := range tables.DiscFormulae {
		if len(formula) == 2 &&
			formula[0] == (goef.NDK{2, 1, 0}) && formula[1] == (goef.NDK{2, 1, 0}) {
			found = true
		}
	}
	require.True(t, found, "missing the two-dumbbell composite")
}

func TestChiBudgetPrunes(t *testing.T) {
	// Under the defaults the triangle (n=3, e=3) survives with chi=3.
	full := generate(t, GenOpts{DMax: 3})
	hasTriangle := false
	for row := 0; row < numPrimes(full); row++ {
		spec := full.Specs[row]
		if spec.N() == 3 && spec.E() == 3 {
			hasTriangle = true
			require.EqualValues(t, 3, spec.C())
		}
	}
	require.True(t, hasTriangle)

	// cmax=2 prunes it; trees and the single edge keep chi <= 2.
	pruned := generate(t, GenOpts{DMax: 3, CMax: 2})
	require.NotZero(t, numPrimes(pruned))
	for row := 0; row < numPrimes(pruned); row++ {
		spec := pruned.Specs[row]
		require.LessOrEqual(t, spec.C(), int64(2))
		require.False(t, spec.N() == 3 && spec.E() == 3,
			"triangle row %d survived cmax=2", row)
	}
}

func TestValencyBudgetPrunes(t *testing.T) {
	// Under the defaults the path 0-1-2 carries the d=3 weighting (2,1),
	// whose center vertex has strength 3.
	full := generate(t, GenOpts{DMax: 3})
	hasHeavyPath := false
	for row := 0; row < numPrimes(full); row++ {
		spec := full.Specs[row]
		if spec.N() == 3 && spec.E() == 2 && spec.D() == 3 {
			hasHeavyPath = true
		}
	}
	require.True(t, hasHeavyPath)

	pruned := generate(t, GenOpts{DMax: 3, VMax: 2})
	require.NotZero(t, numPrimes(pruned))

	var dumbbellDs []int64
	for row := 0; row < numPrimes(pruned); row++ {
		spec := pruned.Specs[row]

		// The star K1,3 never enters: its hub degree exceeds vmax.
		require.LessOrEqual(t, spec.V(), int64(2))

		// Weightings whose strength exceeds vmax are dropped too.
		require.False(t, spec.N() == 3 && spec.E() == 2 && spec.D() == 3,
			"strength-3 path weighting row %d survived vmax=2", row)

		if spec.N() == 2 {
			dumbbellDs = append(dumbbellDs, spec.D())
		}
	}

	// The single edge is exempt from strength pruning: d=3 stays even
	// though both endpoints then carry strength 3.
	require.ElementsMatch(t, []int64{1, 2, 3}, dumbbellDs)
}

func TestGenOptsValidation(t *testing.T) {
	_, err := NewGenerator(GenOpts{})
	require.Error(t, err)

	opts := GenOpts{DMax: 3}
	require.NoError(t, opts.SetDefaults())
	require.Equal(t, 4, opts.NMax)
	require.Equal(t, 3, opts.EMax)
	require.Equal(t, 4, opts.CMax)
	require.Equal(t, 3, opts.VMax)
}
