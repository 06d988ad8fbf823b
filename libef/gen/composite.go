package gen

import (
	"sort"

	"github.com/emirpasic/gods/sets/treeset"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef"
)

// pairList is a sorted tuple of (n_i, d_i) component budgets naming one way
// to split a composite's vertices and degree across connected factors.
type pairList [][2]int64

func comparePairLists(a, b interface{}) int {
	pa, pb := a.(pairList), b.(pairList)
	if d := len(pa) - len(pb); d != 0 {
		return d
	}
	for i := range pa {
		for j := 0; j < 2; j++ {
			if d := int(pa[i][j]) - int(pb[i][j]); d != 0 {
				return d
			}
		}
	}
	return 0
}

func compareFormulas(a, b interface{}) int {
	return goef.FormulaComparator(a.(goef.Formula), b.(goef.Formula))
}

// CompositeGenerator combines prime specs into disconnected multigraphs:
// products of primes subject to per-n vertex and degree budgets, deduplicated
// by canonic sorted formula.
type CompositeGenerator struct {
	cspecs []goef.Spec
	dmaxs  map[int]int
	ns     []int

	ks        map[int64]int64     // (n<<32 | d) -> number of primes
	ndk2w     map[goef.NDK]int64  // (n,d,k) -> prime spec row
	nmaxAvail int64

	discSpecs    []goef.Spec
	discFormulae []goef.Formula
}

// NewCompositeGenerator takes the prime spec table and optional per-n degree
// caps.  A nil dmaxs defaults every n in 4..2*dmax to the max prime degree.
func NewCompositeGenerator(cspecs []goef.Spec, dmaxs map[int]int) (*CompositeGenerator, error) {
	cg := &CompositeGenerator{
		cspecs: cspecs,
		ks:     make(map[int64]int64),
		ndk2w:  make(map[goef.NDK]int64),
	}

	for _, spec := range cspecs {
		cg.ks[ndKey(spec.N(), spec.D())]++
		cg.ndk2w[goef.NDK{spec.N(), spec.D(), spec.K()}] = spec.W()
		if spec.N() > cg.nmaxAvail {
			cg.nmaxAvail = spec.N()
		}
	}

	if dmaxs == nil {
		dmax := int64(0)
		for _, spec := range cspecs {
			if spec.D() > dmax {
				dmax = spec.D()
			}
		}
		dmaxs = make(map[int]int)
		for n := 4; n <= int(2*dmax); n++ {
			dmaxs[n] = int(dmax)
		}
	}
	cg.dmaxs = dmaxs
	for n := range dmaxs {
		cg.ns = append(cg.ns, n)
	}
	sort.Ints(cg.ns)

	cg.generateDisconnected()
	return cg, nil
}

func ndKey(n, d int64) int64 { return n<<32 | d }

func (cg *CompositeGenerator) generateDisconnected() {
	var discSpecs []goef.Spec
	var discFormulae []goef.Formula

	for _, n := range cg.ns {

		// Vertex partitions with no 1s, no part beyond the largest prime,
		// and more than one part.
		var nParts [][]int
		for _, part := range libef.UnorderedPartitions(n) {
			if len(part) > 1 && part[0] <= int(cg.nmaxAvail) && part[len(part)-1] > 1 {
				nParts = append(nParts, part)
			}
		}
		sort.SliceStable(nParts, func(i, j int) bool {
			return len(nParts[i]) < len(nParts[j])
		})

		for d := (n-1)/2 + 1; d <= cg.dmaxs[n]; d++ {

			for _, nPart := range nParts {

				var dParts [][]int
				for _, part := range libef.UnorderedPartitions(d) {
					if len(part) == len(nPart) {
						dParts = append(dParts, part)
					}
				}
				if len(dParts) == 0 {
					continue
				}

				// Canonic (sorted) pair groups; the treeset both dedups the
				// permutation/degree pairings and fixes their emission order.
				groups := treeset.NewWith(comparePairLists)

				for _, nOrd := range uniquePermutations(nPart) {
					for _, dPart := range dParts {
						pairs := make(pairList, len(nOrd))
						for i := range nOrd {
							pairs[i] = [2]int64{int64(nOrd[i]), int64(dPart[i])}
						}
						sort.Slice(pairs, func(i, j int) bool {
							if pairs[i][0] != pairs[j][0] {
								return pairs[i][0] < pairs[j][0]
							}
							return pairs[i][1] < pairs[j][1]
						})

						good := true
						for _, pair := range pairs {
							if cg.ks[ndKey(pair[0], pair[1])] == 0 {
								good = false
								break
							}
						}
						if good {
							groups.Add(pairs)
						}
					}
				}

				it := groups.Iterator()
				for it.Next() {
					pairs := it.Value().(pairList)

					kcount := cg.ks[ndKey(int64(n), int64(d))]

					// Cartesian product over the available prime index k of
					// every factor.
					kspec := make([]int64, len(pairs))
					counts := make([]int64, len(pairs))
					for i, pair := range pairs {
						counts[i] = cg.ks[ndKey(pair[0], pair[1])]
					}

					for {
						formula := make(goef.Formula, len(pairs))
						var cmax, emax, vmax int64
						for i, pair := range pairs {
							ndk := goef.NDK{pair[0], pair[1], kspec[i]}
							formula[i] = ndk
							row := cg.cspecs[cg.ndk2w[ndk]]
							if row.C() > cmax {
								cmax = row.C()
							}
							if row.E() > emax {
								emax = row.E()
							}
							if row.V() > vmax {
								vmax = row.V()
							}
						}
						formula.Canonize()

						discFormulae = append(discFormulae, formula)
						discSpecs = append(discSpecs, goef.Spec{
							int64(n), emax, int64(d), vmax, kcount,
							goef.NoIndex, goef.NoIndex, cmax, int64(len(pairs)),
						})
						kcount++

						i := len(kspec) - 1
						for ; i >= 0; i-- {
							kspec[i]++
							if kspec[i] < counts[i] {
								break
							}
							kspec[i] = 0
						}
						if i < 0 {
							break
						}
					}
				}
			}
		}
	}

	// Degenerate factor selections can repeat a formula; the first
	// occurrence wins.
	seen := treeset.NewWith(compareFormulas)
	for i, formula := range discFormulae {
		if seen.Contains(formula) {
			continue
		}
		seen.Add(formula)
		cg.discFormulae = append(cg.discFormulae, formula)
		cg.discSpecs = append(cg.discSpecs, discSpecs[i])
	}
}

// Results returns the composite spec table and its parallel formula table.
func (cg *CompositeGenerator) Results() ([]goef.Spec, []goef.Formula) {
	return cg.discSpecs, cg.discFormulae
}

// uniquePermutations yields every distinct ordering of part, in
// lexicographic order.
func uniquePermutations(part []int) [][]int {
	cur := append([]int(nil), part...)
	sort.Ints(cur)

	var perms [][]int
	for {
		perms = append(perms, append([]int(nil), cur...))

		// next_permutation
		i := len(cur) - 2
		for i >= 0 && cur[i] >= cur[i+1] {
			i--
		}
		if i < 0 {
			return perms
		}
		j := len(cur) - 1
		for cur[j] <= cur[i] {
			j--
		}
		cur[i], cur[j] = cur[j], cur[i]
		for lo, hi := i+1, len(cur)-1; lo < hi; lo, hi = lo+1, hi-1 {
			cur[lo], cur[hi] = cur[hi], cur[lo]
		}
	}
}
