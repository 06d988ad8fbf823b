// Package fastjet defines the contract this library expects from an external
// jet-clustering collaborator, plus the grooming glue that only needs that
// contract.  No clustering is implemented here.
package fastjet

import (
	"math"

	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/efp"
)

// Algorithm selects the clustering strategy.
type Algorithm int32

const (
	AlgKt Algorithm = iota
	AlgAntiKt
	AlgCA
)

func (alg Algorithm) String() string {
	switch alg {
	case AlgKt:
		return "kt"
	case AlgAntiKt:
		return "antikt"
	case AlgCA:
		return "ca"
	}
	return "???"
}

// ParseAlgorithm resolves a clustering tag, failing at configuration time
// for unknown tags.
func ParseAlgorithm(tag string) (Algorithm, error) {
	switch tag {
	case "kt":
		return AlgKt, nil
	case "antikt":
		return AlgAntiKt, nil
	case "ca", "cambridge", "cambridge_aachen":
		return AlgCA, nil
	}
	return 0, errors.Wrapf(goef.ErrUnsupportedAlg, "jet algorithm %q", tag)
}

// Jet is a clustered object with its declustering history.
type Jet interface {
	Pt() float64
	Y() float64
	Phi() float64
	M() float64

	// Parents returns the two subjets this jet was combined from,
	// or ok=false for an original particle.
	Parents() (j1, j2 Jet, ok bool)
}

// Clusterer is the external clustering collaborator.
type Clusterer interface {
	Cluster(particles []efp.Particle, alg Algorithm, R float64) ([]Jet, error)
}

// Cluster validates the algorithm tag and delegates to the collaborator.
// A nil clusterer means the optional dependency is absent.
func Cluster(c Clusterer, particles []efp.Particle, algTag string, R float64) ([]Jet, error) {
	alg, err := ParseAlgorithm(algTag)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Wrap(goef.ErrMissingDependency, "no jet clusterer configured")
	}
	return c.Cluster(particles, alg, R)
}

// SoftDrop grooms a clustered jet: the jet is declustered step by step and
// the softer branch dropped until min(pt1,pt2)/(pt1+pt2) > zcut*(dR12/R)^beta
// holds or no parents remain.
func SoftDrop(jet Jet, zcut, beta, R float64) Jet {
	for {
		j1, j2, ok := jet.Parents()
		if !ok {
			return jet
		}

		pt1, pt2 := j1.Pt(), j2.Pt()
		z := math.Min(pt1, pt2) / (pt1 + pt2)
		dR := deltaR(j1, j2)
		if z > zcut*math.Pow(dR/R, beta) {
			return jet
		}

		if pt1 >= pt2 {
			jet = j1
		} else {
			jet = j2
		}
	}
}

func deltaR(a, b Jet) float64 {
	dy := a.Y() - b.Y()
	dphi := math.Abs(a.Phi() - b.Phi())
	if dphi > math.Pi {
		dphi = 2*math.Pi - dphi
	}
	return math.Sqrt(dy*dy + dphi*dphi)
}
