package efp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrewjohnlowe/EnergyFlow/libef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/gen"
)

var testEvent = Event{
	{Pt: 0.5, Y: 0.1, Phi: 0.0},
	{Pt: 0.3, Y: -0.4, Phi: 1.2},
	{Pt: 0.2, Y: 0.7, Phi: 2.5},
	{Pt: 0.1, Y: -0.2, Phi: 4.0},
}

func TestSingleEdge(t *testing.T) {
	e, err := NewEFPFromExpr("0-1", DefaultOpts())
	require.NoError(t, err)
	require.Equal(t, 2, e.N())
	require.EqualValues(t, 1, e.D())

	event := Event{
		{Pt: 0.6, Y: 0.0, Phi: 0.0},
		{Pt: 0.4, Y: 0.5, Phi: 1.0},
	}
	got, err := e.Compute(event)
	require.NoError(t, err)

	// sum_ij z_i z_j theta_ij = 2 z0 z1 theta01
	theta := math.Sqrt(0.5*0.5 + 1.0*1.0)
	require.InDelta(t, 2*0.6*0.4*theta, got, 1e-12)
}

func TestComputeMatchesBruteForce(t *testing.T) {
	opts := DefaultOpts()
	opts.Beta = 2

	// Triangle with one doubled edge: sum_ijk z_i z_j z_k t_ij t_jk t_ik^2.
	e, err := NewEFPFromExpr("0-1-2,0=2", opts)
	require.NoError(t, err)
	require.EqualValues(t, 4, e.D())

	zs := opts.Measure.zWeights(testEvent, opts.Normed)
	thetas := opts.Measure.thetas(testEvent, opts.Beta)

	N := len(testEvent)
	want := 0.0
	for i := 0; i < N; i++ {
		for j := 0; j < N; j++ {
			for k := 0; k < N; k++ {
				tik := thetas[i*N+k]
				want += zs[i] * zs[j] * zs[k] * thetas[i*N+j] * thetas[j*N+k] * tik * tik
			}
		}
	}

	got, err := e.Compute(testEvent)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-12)
}

func TestEFMAgreesWithVE(t *testing.T) {
	opts := DefaultOpts()
	opts.Measure = MeasureHadrDot
	opts.Beta = 2

	for _, expr := range []string{"0-1", "0-1-2", "0-1-2,0-2", "0=1"} {
		direct, err := NewEFPFromExpr(expr, opts)
		require.NoError(t, err)

		efmOpts := opts
		efmOpts.UseEFM = true
		viaEFM, err := NewEFPFromExpr(expr, efmOpts)
		require.NoError(t, err)
		require.True(t, viaEFM.UseEFM())

		a, err := direct.Compute(testEvent)
		require.NoError(t, err)
		b, err := viaEFM.Compute(testEvent)
		require.NoError(t, err)
		require.InDelta(t, a, b, 1e-9*math.Max(1, math.Abs(a)), "graph %s", expr)
	}
}

func TestFromSpecMatchesDirect(t *testing.T) {
	g, err := gen.NewGenerator(gen.GenOpts{DMax: 3})
	require.NoError(t, err)
	tables := g.Tables()

	opts := DefaultOpts()
	rowVals := make([]float64, len(tables.Specs))

	for row, spec := range tables.Specs {
		fromSpec, err := NewEFPFromSpec(tables, row, opts)
		require.NoError(t, err)
		require.EqualValues(t, spec.N(), fromSpec.N())
		require.EqualValues(t, spec.D(), fromSpec.D())

		rowVals[row], err = fromSpec.Compute(testEvent)
		require.NoError(t, err)

		if !spec.IsPrime() {
			continue
		}

		// The stored plan and a freshly planned evaluation must agree.
		multi := libef.ExpandEdges(tables.Edges[spec.G()], tables.Weights[spec.W()])
		direct, err := NewEFP(multi, opts)
		require.NoError(t, err)
		val, err := direct.Compute(testEvent)
		require.NoError(t, err)
		require.InDelta(t, val, rowVals[row], 1e-12*math.Max(1, math.Abs(val)))
	}

	// A composite row is the product of its formula's prime factors.
	numPrimes := 0
	for _, spec := range tables.Specs {
		if !spec.IsPrime() {
			break
		}
		numPrimes++
	}
	require.Less(t, numPrimes, len(tables.Specs))

	for ci, formula := range tables.DiscFormulae {
		product := 1.0
		for _, ndk := range formula {
			prow := findPrimeRow(tables, numPrimes, ndk)
			require.GreaterOrEqual(t, prow, 0)
			product *= rowVals[prow]
		}
		got := rowVals[numPrimes+ci]
		require.InDelta(t, product, got, 1e-12*math.Max(1, math.Abs(product)))
	}
}

func TestComputeDegenerateEvents(t *testing.T) {
	e, err := NewEFPFromExpr("0-1", DefaultOpts())
	require.NoError(t, err)

	// An event with no particles sums over an empty index range.
	got, err := e.Compute(Event{})
	require.NoError(t, err)
	require.Zero(t, got)

	// A single particle only hits the zero diagonal of the angular matrix.
	got, err = e.Compute(Event{{Pt: 1.0, Y: 0.2, Phi: 0.5}})
	require.NoError(t, err)
	require.Zero(t, got)
}

func TestBatchCompute(t *testing.T) {
	e, err := NewEFPFromExpr("0-1-2", DefaultOpts())
	require.NoError(t, err)

	events := make([]Event, 10)
	for i := range events {
		events[i] = Event{
			{Pt: 0.5, Y: float64(i) * 0.1, Phi: 0.0},
			{Pt: 0.3, Y: -0.4, Phi: 1.2 + float64(i)*0.05},
			{Pt: 0.2, Y: 0.7, Phi: 2.5},
		}
	}

	serial := make([]float64, len(events))
	for i, event := range events {
		serial[i], err = e.Compute(event)
		require.NoError(t, err)
	}

	for _, njobs := range []int{0, 1, 3, 16} {
		parallel, err := e.BatchCompute(events, njobs)
		require.NoError(t, err)
		require.Equal(t, serial, parallel, "njobs=%d", njobs)
	}
}

func TestOptsValidation(t *testing.T) {
	opts := DefaultOpts()
	opts.Beta = 0
	_, err := NewEFPFromExpr("0-1", opts)
	require.Error(t, err)

	// EFM mode needs a dot-product measure with beta = 2.
	opts = DefaultOpts()
	opts.UseEFM = true
	_, err = NewEFPFromExpr("0-1", opts)
	require.Error(t, err)

	opts.Measure = MeasureHadrDot
	opts.Beta = 1
	_, err = NewEFPFromExpr("0-1", opts)
	require.Error(t, err)

	_, err = NewEFPFromExpr("", DefaultOpts())
	require.Error(t, err)
}
