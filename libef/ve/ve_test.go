package ve

import (
	"math"
	"testing"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

var triangle = goef.EdgeList{{0, 1}, {1, 2}, {0, 2}}

func TestTriangleChi(t *testing.T) {
	// The triangle admits no contraction order with fewer than 3 indices
	// alive, so every planner must report chi = 3.
	for _, alg := range []Alg{AlgEinsum, AlgElim} {
		for _, strat := range []Strategy{StrategyGreedy, StrategyOptimal} {
			v := New(alg, strat)
			if err := v.Run(triangle, 3); err != nil {
				t.Fatalf("%v/%v: %v", alg, strat, err)
			}
			if v.Chi() != 3 {
				t.Fatalf("%v/%v: chi = %d, want 3", alg, strat, v.Chi())
			}

			einstr, einpath := v.Einspecs()
			if einstr != "ab,bc,ac,a,b,c->" {
				t.Fatalf("%v/%v: einstr = %q", alg, strat, einstr)
			}
			// 6 operands collapse through 5 pairwise contractions.
			if len(einpath) != 5 {
				t.Fatalf("%v/%v: path length %d, want 5", alg, strat, len(einpath))
			}
		}
	}
}

func TestPathBoundsValid(t *testing.T) {
	// Replaying a path, every step must index the current operand list.
	edges := goef.EdgeList{{0, 1}, {1, 2}, {2, 3}, {0, 3}}
	for _, alg := range []Alg{AlgEinsum, AlgElim} {
		v := New(alg, StrategyGreedy)
		if err := v.Run(edges, 4); err != nil {
			t.Fatal(err)
		}
		_, einpath := v.Einspecs()

		remaining := len(edges) + 4
		for step, pair := range einpath {
			if pair[0] < 0 || pair[1] < 0 || pair[0] >= remaining || pair[1] >= remaining || pair[0] == pair[1] {
				t.Fatalf("step %d: pair %v out of bounds for %d operands", step, pair, remaining)
			}
			remaining--
		}
		if remaining != 1 {
			t.Fatalf("path leaves %d operands, want 1", remaining)
		}
	}
}

func TestExecuteMatchesBruteForce(t *testing.T) {
	theta := []float64{
		0, 0.3, 0.7,
		0.3, 0, 0.2,
		0.7, 0.2, 0,
	}
	z := []float64{0.5, 0.3, 0.2}

	// sum_{ijk} theta_ij theta_jk theta_ik z_i z_j z_k
	want := 0.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				want += theta[i*3+j] * theta[j*3+k] * theta[i*3+k] * z[i] * z[j] * z[k]
			}
		}
	}

	for _, alg := range []Alg{AlgEinsum, AlgElim} {
		v := New(alg, StrategyOptimal)
		if err := v.Run(triangle, 3); err != nil {
			t.Fatal(err)
		}
		einstr, einpath := v.Einspecs()

		operands := []Operand{
			{Dims: []int{3, 3}, Data: theta},
			{Dims: []int{3, 3}, Data: theta},
			{Dims: []int{3, 3}, Data: theta},
			{Dims: []int{3}, Data: z},
			{Dims: []int{3}, Data: z},
			{Dims: []int{3}, Data: z},
		}
		got, err := Execute(einstr, einpath, operands)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("%v: got %v, want %v", alg, got, want)
		}
	}
}

func TestPathFor(t *testing.T) {
	path, err := PathFor("ab,b,a->")
	if err != nil {
		t.Fatal(err)
	}
	if len(path) != 2 {
		t.Fatalf("path length %d, want 2", len(path))
	}

	a := []float64{1, 2, 3, 4} // 2x2
	b := []float64{5, 6}
	c := []float64{7, 8}

	want := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want += a[i*2+j] * b[j] * c[i]
		}
	}

	got, err := Execute("ab,b,a->", path, []Operand{
		{Dims: []int{2, 2}, Data: a},
		{Dims: []int{2}, Data: b},
		{Dims: []int{2}, Data: c},
	})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	v := New(AlgEinsum, StrategyGreedy)
	if err := v.Run(goef.EdgeList{{0, 1}}, 0); err == nil {
		t.Fatal("zero vertex count accepted")
	}
	if err := v.Run(goef.EdgeList{{0, 0}}, 2); err == nil {
		t.Fatal("self-loop accepted")
	}
	if err := v.Run(goef.EdgeList{{0, 2}}, 2); err == nil {
		t.Fatal("out-of-range vertex accepted")
	}
}
