package goef

// Spec table columns, order fixed by the persisted catalog format.
const (
	ColN = iota // number of vertices in graph
	ColE        // number of edges in the underlying simple graph
	ColD        // number of edges in the multigraph (total degree)
	ColV        // maximum vertex valency
	ColK        // unique index among graphs with fixed (n,d)
	ColG        // index of the simple edge list in the edges table
	ColW        // index of the weighting in the weights table
	ColC        // VE complexity chi
	ColP        // number of prime factors

	NumCols
)

// Cols names the spec table columns in persisted order.
var Cols = [NumCols]string{"n", "e", "d", "v", "k", "g", "w", "c", "p"}

const (
	// MaxVtxID is the max possible vertex count of a generated graph (a zero-based index).
	MaxVtxID = 63

	// NoIndex marks the g / w columns of composite rows, which reference a formula instead.
	NoIndex = -1
)

// Spec is one row of the spec table: (n, e, d, v, k, g, w, c, p).
type Spec [NumCols]int64

func (s Spec) N() int64 { return s[ColN] }
func (s Spec) E() int64 { return s[ColE] }
func (s Spec) D() int64 { return s[ColD] }
func (s Spec) V() int64 { return s[ColV] }
func (s Spec) K() int64 { return s[ColK] }
func (s Spec) G() int64 { return s[ColG] }
func (s Spec) W() int64 { return s[ColW] }
func (s Spec) C() int64 { return s[ColC] }
func (s Spec) P() int64 { return s[ColP] }

// IsPrime returns true if this row denotes a connected (single-factor) multigraph.
func (s Spec) IsPrime() bool { return s[ColP] == 1 }

// Edge is an undirected edge between two zero-based vertex indices.
type Edge [2]int

// EdgeList is the edge list of a simple graph.
type EdgeList []Edge

// NDK identifies a prime spec by its (n, d, k) coordinates.
type NDK [3]int64

// Formula is an ordered tuple of NDK triples naming the prime factors
// of a composite multigraph.  Stored formulas are always canonic (sorted).
type Formula []NDK

// EinSpec is a replayable contraction plan: an einsum-style expression
// plus the pairwise execution path that evaluates it.
type EinSpec struct {
	Str  string
	Path [][2]int
}

// Tables is the complete persisted output of a Generator run.
// Primes come first in Specs, composites after.
type Tables struct {
	VEAlg        string
	Cols         []string
	Specs        []Spec
	DiscFormulae []Formula
	Edges        []EdgeList
	Einstrs      []string
	Einpaths     [][][2]int
	Weights      [][]int64
}

// CatalogOpts specifies params for opening a catalog.
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
}

// Catalog wraps a database holding one generated spec catalog.
type Catalog interface {

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// Save persists the given tables, replacing any prior contents.
	Save(t *Tables) error

	// Load reconstructs the persisted tables.
	Load() (*Tables, error)

	Close() error
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}
