package goef

import (
	"sort"
	"sync"
)

// Canonize sorts this formula's NDK triples into canonic order.
// Two composite multigraphs are identical iff their canonic formulas are equal.
func (f Formula) Canonize() {
	sort.Slice(f, func(i, j int) bool {
		return CompareNDK(f[i], f[j]) < 0
	})
}

func CompareNDK(a, b NDK) int {
	for i := 0; i < 3; i++ {
		if d := int(a[i]) - int(b[i]); d != 0 {
			return d
		}
	}
	return 0
}

// FormulaComparator orders formulas first by length, then lexicographically by NDK.
func FormulaComparator(A, B Formula) int {
	if d := len(A) - len(B); d != 0 {
		return d
	}
	for i, ai := range A {
		if d := CompareNDK(ai, B[i]); d != 0 {
			return d
		}
	}
	return 0
}

func (f Formula) IsEqual(other Formula) bool {
	return FormulaComparator(f, other) == 0
}

// TotalVtxCount sums the vertex counts of this formula's factors.
func (f Formula) TotalVtxCount() int64 {
	Nv := int64(0)
	for _, ndk := range f {
		Nv += ndk[0]
	}
	return Nv
}

// Copy returns an independent copy of this edge list.
func (edges EdgeList) Copy() EdgeList {
	cp := make(EdgeList, len(edges))
	copy(cp, edges)
	return cp
}

// NumVerts returns one past the largest vertex index appearing in this edge list.
func (edges EdgeList) NumVerts() int {
	Nv := 0
	for _, edge := range edges {
		if edge[0] >= Nv {
			Nv = edge[0] + 1
		}
		if edge[1] >= Nv {
			Nv = edge[1] + 1
		}
	}
	return Nv
}

// Validate checks that every edge joins two distinct vertices in 0..n-1.
func (edges EdgeList) Validate(n int) error {
	if n < 1 || n > MaxVtxID {
		return ErrInvalidGraph
	}
	for _, edge := range edges {
		if edge[0] < 0 || edge[1] < 0 || edge[0] >= n || edge[1] >= n {
			return ErrBadVtxID
		}
		if edge[0] == edge[1] {
			return ErrInvalidGraph
		}
	}
	return nil
}

func NewCatalogContext() CatalogContext {
	ctx := &catalogContext{
		openCatalogs: make(map[Catalog]struct{}),
		closing:      make(chan struct{}),
		closed:       make(chan struct{}),
	}
	ctx.openCount.Add(1)
	go func() {
		<-ctx.closing
		ctx.openCount.Done()
		ctx.openCount.Wait()
		close(ctx.closed)
	}()
	return ctx
}

type catalogContext struct {
	mu           sync.Mutex
	openCount    sync.WaitGroup
	openCatalogs map[Catalog]struct{}
	closing      chan struct{}
	closed       chan struct{}
}

func (ctx *catalogContext) AttachCatalog(cat Catalog) {
	ctx.openCount.Add(1)
	ctx.mu.Lock()
	ctx.openCatalogs[cat] = struct{}{}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) DetachCatalog(cat Catalog) {
	ctx.mu.Lock()
	if _, exists := ctx.openCatalogs[cat]; exists {
		delete(ctx.openCatalogs, cat)
		ctx.openCount.Done()
	}
	ctx.mu.Unlock()
}

func (ctx *catalogContext) Done() <-chan struct{} {
	return ctx.closed
}

func (ctx *catalogContext) Close() {
	close(ctx.closing)
	ctx.mu.Lock()
	for cat := range ctx.openCatalogs {
		go cat.Close()
	}
	ctx.mu.Unlock()
}
