package libef

import (
	"testing"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

func TestParseGraphExpr(t *testing.T) {
	edges, err := ParseGraphExpr("0-1-2,0=2")
	if err != nil {
		t.Fatal(err)
	}
	// 0-1, 1-2, and the doubled 0-2.
	want := goef.EdgeList{{0, 1}, {1, 2}, {0, 2}, {0, 2}}
	if len(edges) != len(want) {
		t.Fatalf("got %v, want %v", edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Fatalf("edge %d: got %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestParseWeightRuns(t *testing.T) {
	edges, err := ParseGraphExpr("0---1")
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 3 {
		t.Fatalf("triple edge parsed to %d entries", len(edges))
	}
	for _, edge := range edges {
		if edge != (goef.Edge{0, 1}) {
			t.Fatalf("unexpected edge %v", edge)
		}
	}
}

func TestParseRejectsBadGraphs(t *testing.T) {
	if _, err := ParseGraphExpr("1-1"); err == nil {
		t.Fatal("self-loop accepted")
	}
	if _, err := ParseGraphExpr("0-999"); err == nil {
		t.Fatal("out-of-range vertex accepted")
	}
	if _, err := ParseGraphExpr("0-"); err == nil {
		t.Fatal("dangling edge accepted")
	}
}
