package efp

import (
	"math"

	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// Measure maps event kinematics to the per-particle weights z and pairwise
// angles theta that get substituted into a contraction plan.
type Measure int32

const (
	// MeasureHadr weights by pt and measures angles in the rapidity-azimuth plane.
	MeasureHadr Measure = iota

	// MeasureHadrDot weights by pt with angles from normalized four-vector dots.
	MeasureHadrDot

	// MeasureEE weights by energy with angles from normalized four-vector dots.
	MeasureEE
)

func (m Measure) String() string {
	switch m {
	case MeasureHadr:
		return "hadr"
	case MeasureHadrDot:
		return "hadr-dot"
	case MeasureEE:
		return "ee"
	}
	return "???"
}

func ParseMeasure(tag string) (Measure, error) {
	switch tag {
	case "hadr":
		return MeasureHadr, nil
	case "hadr-dot":
		return MeasureHadrDot, nil
	case "ee":
		return MeasureEE, nil
	}
	return 0, errors.Wrapf(goef.ErrUnsupportedAlg, "measure %q", tag)
}

// Particle is one final-state particle in hadronic coordinates.
type Particle struct {
	Pt, Y, Phi, M float64
}

// Event is the particle content one EFP is evaluated on.
type Event []Particle

// fourMomentum returns (E, px, py, pz).
func (p Particle) fourMomentum() [4]float64 {
	mt := math.Sqrt(p.Pt*p.Pt + p.M*p.M)
	return [4]float64{
		mt * math.Cosh(p.Y),
		p.Pt * math.Cos(p.Phi),
		p.Pt * math.Sin(p.Phi),
		mt * math.Sinh(p.Y),
	}
}

func minkowskiDot(a, b [4]float64) float64 {
	return a[0]*b[0] - a[1]*b[1] - a[2]*b[2] - a[3]*b[3]
}

// zWeights returns the per-particle energy weights of the measure,
// normalized to unit sum when normed is set.
func (m Measure) zWeights(event Event, normed bool) []float64 {
	zs := make([]float64, len(event))
	total := 0.0
	for i, p := range event {
		switch m {
		case MeasureEE:
			zs[i] = p.fourMomentum()[0]
		default:
			zs[i] = p.Pt
		}
		total += zs[i]
	}
	if normed && total > 0 {
		for i := range zs {
			zs[i] /= total
		}
	}
	return zs
}

// thetas returns the N x N matrix of pairwise angular weights raised to beta.
func (m Measure) thetas(event Event, beta float64) []float64 {
	N := len(event)
	out := make([]float64, N*N)

	switch m {
	case MeasureHadr:
		for i := 0; i < N; i++ {
			for j := i + 1; j < N; j++ {
				dy := event[i].Y - event[j].Y
				dphi := wrapPhi(event[i].Phi - event[j].Phi)
				theta2 := dy*dy + dphi*dphi
				v := math.Pow(theta2, beta/2)
				out[i*N+j] = v
				out[j*N+i] = v
			}
		}

	default:
		// theta^2 = 2 p_i . p_j / (s_i s_j), with s the measure's energy scale.
		nhats := make([][4]float64, N)
		for i, p := range event {
			nhats[i] = normalizedMomentum(p, m)
		}
		for i := 0; i < N; i++ {
			for j := i + 1; j < N; j++ {
				theta2 := 2 * minkowskiDot(nhats[i], nhats[j])
				v := math.Pow(math.Abs(theta2), beta/2)
				out[i*N+j] = v
				out[j*N+i] = v
			}
		}
	}
	return out
}

// normalizedMomentum returns the particle four-momentum divided by its
// measure scale (pt for hadronic, energy for e+e-).
func normalizedMomentum(p Particle, m Measure) [4]float64 {
	mom := p.fourMomentum()
	scale := p.Pt
	if m == MeasureEE {
		scale = mom[0]
	}
	for k := range mom {
		mom[k] /= scale
	}
	return mom
}

func wrapPhi(dphi float64) float64 {
	for dphi > math.Pi {
		dphi -= 2 * math.Pi
	}
	for dphi < -math.Pi {
		dphi += 2 * math.Pi
	}
	return dphi
}
