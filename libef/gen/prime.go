package gen

import (
	"github.com/plan-systems/klog"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/ve"
)

// bucket holds every accepted simple graph for one (n,e) pair, plus the
// per-graph data cached at acceptance time.  Buckets live in a flat arena
// indexed by integer id, so the hot loops never hash tuple keys.
type bucket struct {
	n, e     int
	graphs   []*libef.SimpleGraph
	chis     []int64
	maxvs    []int64
	einstrs  []string
	einpaths [][][2]int
	weights  [][][]int64 // per graph: accepted weightings
}

// PrimeGenerator enumerates non-isomorphic connected multigraphs in two
// phases: simple-graph search by (n,e), then weighting search per graph.
type PrimeGenerator struct {
	opts GenOpts
	ve   *ve.VE

	ns       []int   // 2..NMax
	buckets  []*bucket
	bucketIx [][]int // [n][e] -> arena index, -1 if out of bounds

	parts map[[2]int][][]int64 // (d,e) -> ordered partition cache
}

func NewPrimeGenerator(opts GenOpts) (*PrimeGenerator, error) {
	if err := opts.SetDefaults(); err != nil {
		return nil, err
	}

	pg := &PrimeGenerator{
		opts:     opts,
		ve:       ve.New(opts.Alg, opts.Strategy),
		bucketIx: make([][]int, opts.NMax+1),
		parts:    make(map[[2]int][][]int64),
	}

	for n := 2; n <= opts.NMax; n++ {
		pg.ns = append(pg.ns, n)
		pg.bucketIx[n] = make([]int, pg.emaxFor(n)+1)
		for e := range pg.bucketIx[n] {
			pg.bucketIx[n][e] = -1
		}
		for e := n - 1; e <= pg.emaxFor(n); e++ {
			pg.bucketIx[n][e] = len(pg.buckets)
			pg.buckets = append(pg.buckets, &bucket{n: n, e: e})
		}
	}

	if err := pg.generateSimple(); err != nil {
		return nil, err
	}
	pg.generateWeights()

	return pg, nil
}

func (pg *PrimeGenerator) emaxFor(n int) int {
	return min(pg.opts.EMax, n*(n-1)/2)
}

// bucketAt returns the (n,e) bucket, or nil when out of bounds.
func (pg *PrimeGenerator) bucketAt(n, e int) *bucket {
	if n < 2 || n >= len(pg.bucketIx) || e < 0 || e >= len(pg.bucketIx[n]) {
		return nil
	}
	if ix := pg.bucketIx[n][e]; ix >= 0 {
		return pg.buckets[ix]
	}
	return nil
}

// generateSimple grows non-isomorphic connected simple graphs from the
// single edge upward, via two moves: attach a fresh vertex to an (n-1,e-1)
// graph, or add a missing edge to an (n,e-1) graph.
func (pg *PrimeGenerator) generateSimple() error {
	if err := pg.addIfNew(libef.SingleEdge(), pg.bucketAt(2, 1)); err != nil {
		return err
	}

	for _, n := range pg.ns[1:] {
		for e := n - 1; e <= pg.emaxFor(n); e++ {
			target := pg.bucketAt(n, e)

			if seeds := pg.bucketAt(n-1, e-1); seeds != nil {
				for _, seed := range seeds.graphs {
					for v := 0; v < n-1; v++ {
						if err := pg.addIfNew(seed.GrowVertex(v), target); err != nil {
							return err
						}
					}
				}
			}

			if seeds := pg.bucketAt(n, e-1); seeds != nil {
				for _, seed := range seeds.graphs {
					for a := 0; a < n; a++ {
						for b := a + 1; b < n; b++ {
							if seed.HasEdge(a, b) {
								continue
							}
							if err := pg.addIfNew(seed.GrowEdge(a, b), target); err != nil {
								return err
							}
						}
					}
				}
			}
		}
	}

	if pg.opts.Verbose {
		klog.Infof("simple graphs by n: %v", pg.countSimpleByN())
	}
	return nil
}

// addIfNew accepts a candidate unless it is isomorphic to a prior graph in
// the bucket, its chi exceeds CMax, or its max valency exceeds VMax.
// Rejections are silent; they are pruning, not errors.
func (pg *PrimeGenerator) addIfNew(X *libef.SimpleGraph, b *bucket) error {
	if b == nil {
		return nil
	}
	for _, prior := range b.graphs {
		if libef.Isomorphic(X, prior) {
			return nil
		}
	}

	if err := pg.ve.Run(X.Edges(), X.NumVerts()); err != nil {
		return err
	}
	if pg.ve.Chi() > int64(pg.opts.CMax) {
		return nil
	}

	maxv := X.MaxDegree()
	if maxv > pg.opts.VMax {
		return nil
	}

	einstr, einpath := pg.ve.Einspecs()
	b.graphs = append(b.graphs, X)
	b.chis = append(b.chis, pg.ve.Chi())
	b.maxvs = append(b.maxvs, int64(maxv))
	b.einstrs = append(b.einstrs, einstr)
	b.einpaths = append(b.einpaths, einpath)
	return nil
}

// generateWeights enumerates, for every accepted simple graph, the ordered
// integer partitions of each total degree d into one positive weight per
// edge, keeping only one representative per edge-recoloring automorphism
// class.
func (pg *PrimeGenerator) generateWeights() {
	// The single edge is special: every positive integer weights it.
	if b := pg.bucketAt(2, 1); b != nil && len(b.graphs) > 0 {
		weightings := make([][]int64, 0, pg.opts.DMax)
		for d := int64(1); d <= int64(pg.opts.DMax); d++ {
			weightings = append(weightings, []int64{d})
		}
		b.weights = append(b.weights, weightings)
	}

	for _, n := range pg.ns[1:] {
		for e := n - 1; e <= pg.emaxFor(n); e++ {
			b := pg.bucketAt(n, e)
			for _, X := range b.graphs {
				var weightings [][]int64

				for d := e; d <= pg.opts.DMax; d++ {
					for _, part := range pg.partitions(d, e) {
						if pg.opts.VMax < pg.opts.DMax &&
							X.MaxStrength(part) > int64(pg.opts.VMax) {
							continue
						}

						iso := false
						for _, prior := range weightings {
							if libef.WeightsIsomorphic(X, prior, part) {
								iso = true
								break
							}
						}
						if !iso {
							weightings = append(weightings, part)
						}
					}
				}
				b.weights = append(b.weights, weightings)
			}
		}
	}

	if pg.opts.Verbose {
		klog.Infof("weightings by d: %v", pg.countWeightedByD())
	}
}

func (pg *PrimeGenerator) partitions(d, e int) [][]int64 {
	key := [2]int{d, e}
	if cached, ok := pg.parts[key]; ok {
		return cached
	}
	parts := libef.OrderedPartitions(d, e)
	pg.parts[key] = parts
	return parts
}

// Results flattens all accepted (graph, weighting) pairs into the prime spec
// table, assigning the running within-(n,d) index k.
func (pg *PrimeGenerator) Results() (specs []goef.Spec, edges []goef.EdgeList, weights [][]int64, einstrs []string, einpaths [][][2]int) {
	ks := make(map[int64]int64) // (n<<32 | d) -> next k
	g, w := int64(0), int64(0)

	for _, b := range pg.buckets {
		for i := range b.graphs {
			for _, weighting := range b.weights[i] {
				d := int64(0)
				for _, wt := range weighting {
					d += wt
				}
				kkey := int64(b.n)<<32 | d
				k := ks[kkey]
				ks[kkey] = k + 1

				specs = append(specs, goef.Spec{
					int64(b.n), int64(b.e), d, b.maxvs[i], k, g, w, b.chis[i], 1,
				})
				weights = append(weights, weighting)
				w++
			}
			edges = append(edges, b.graphs[i].Edges())
			einstrs = append(einstrs, b.einstrs[i])
			einpaths = append(einpaths, b.einpaths[i])
			g++
		}
	}
	return specs, edges, weights, einstrs, einpaths
}

func (pg *PrimeGenerator) countSimpleByN() map[int]int {
	counts := make(map[int]int, len(pg.ns))
	for _, b := range pg.buckets {
		counts[b.n] += len(b.graphs)
	}
	return counts
}

func (pg *PrimeGenerator) countWeightedByD() map[int64]int {
	counts := make(map[int64]int)
	for _, b := range pg.buckets {
		for _, weightings := range b.weights {
			for _, weighting := range weightings {
				d := int64(0)
				for _, wt := range weighting {
					d += wt
				}
				counts[d]++
			}
		}
	}
	return counts
}
