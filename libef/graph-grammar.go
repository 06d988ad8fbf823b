package libef

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

type GraphExpr struct {
	Runs []*EdgeRun `parser:"(@@ (\",\" @@)*)?"`
}

type EdgeRun struct {
	StartVtx int64      `parser:"@Int"`
	Hops     []*EdgeHop `parser:"@@*"`
}

type EdgeHop struct {
	Kind   string `parser:"@( \"=\" | \"-\" \"-\"? \"-\"? \"-\"? \"-\"? \"-\"? \"-\"? \"-\"? )"`
	EndVtx int64  `parser:"@Int"`
}

var parseGraphExpr = participle.MustBuild[GraphExpr]()

// ParseGraphExpr parses a multigraph expression such as "0-1-2,0=2" into an
// expanded edge list (one entry per unit of edge weight).  Vertices are
// zero-based, a run of '-' characters is the edge weight, and '=' is
// shorthand for weight 2.
func ParseGraphExpr(expr string) (goef.EdgeList, error) {
	Xexpr, err := parseGraphExpr.ParseString("", expr)
	if err != nil {
		return nil, err
	}

	var edges goef.EdgeList
	for _, run := range Xexpr.Runs {
		onVtx := run.StartVtx
		for _, hop := range run.Hops {
			weight := int64(strings.Count(hop.Kind, "-"))
			if hop.Kind == "=" {
				weight = 2
			}
			a, b := int(onVtx), int(hop.EndVtx)
			if a == b || a > goef.MaxVtxID || b > goef.MaxVtxID {
				return nil, errors.Wrapf(goef.ErrBadVtxID, "edge %d-%d", a, b)
			}
			for w := int64(0); w < weight; w++ {
				edges = append(edges, goef.Edge{a, b})
			}
			onVtx = hop.EndVtx
		}
	}
	return edges, nil
}
