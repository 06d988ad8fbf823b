package fastjet

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

func TestParseAlgorithm(t *testing.T) {
	for tag, want := range map[string]Algorithm{
		"kt":               AlgKt,
		"antikt":           AlgAntiKt,
		"ca":               AlgCA,
		"cambridge":        AlgCA,
		"cambridge_aachen": AlgCA,
	} {
		alg, err := ParseAlgorithm(tag)
		require.NoError(t, err)
		require.Equal(t, want, alg)
	}

	_, err := ParseAlgorithm("durham")
	require.True(t, errors.Is(err, goef.ErrUnsupportedAlg))
}

func TestClusterWithoutCollaborator(t *testing.T) {
	_, err := Cluster(nil, nil, "kt", 0.4)
	require.True(t, errors.Is(err, goef.ErrMissingDependency))

	// A bad algorithm tag fails before the collaborator check.
	_, err = Cluster(nil, nil, "bogus", 0.4)
	require.True(t, errors.Is(err, goef.ErrUnsupportedAlg))
}

// stubJet is a hand-built declustering tree.
type stubJet struct {
	pt, y, phi, m float64
	p1, p2        *stubJet
}

func (j *stubJet) Pt() float64  { return j.pt }
func (j *stubJet) Y() float64   { return j.y }
func (j *stubJet) Phi() float64 { return j.phi }
func (j *stubJet) M() float64   { return j.m }

func (j *stubJet) Parents() (Jet, Jet, bool) {
	if j.p1 == nil {
		return nil, nil, false
	}
	return j.p1, j.p2, true
}

func TestSoftDrop(t *testing.T) {
	// A hard core with a wide soft branch: the first split fails the
	// condition, so grooming recurses into the harder branch.
	hard := &stubJet{pt: 90, y: 0.02, phi: 0.01}
	soft := &stubJet{pt: 2, y: 0.9, phi: 0.8}
	jet := &stubJet{pt: 92, y: 0.04, phi: 0.03, p1: hard, p2: soft}

	groomed := SoftDrop(jet, 0.1, 0, 0.8)
	require.Equal(t, Jet(hard), groomed)

	// A symmetric split passes immediately and grooming stops.
	a := &stubJet{pt: 50, y: 0.1, phi: 0.0}
	b := &stubJet{pt: 45, y: -0.1, phi: 0.1}
	sym := &stubJet{pt: 95, y: 0.0, phi: 0.05, p1: a, p2: b}

	groomed = SoftDrop(sym, 0.1, 0, 0.8)
	require.Equal(t, Jet(sym), groomed)
}
