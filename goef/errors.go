package goef

import "errors"

// Errors
var (
	ErrInvalidGraph      = errors.New("invalid graph")
	ErrUnsupportedAlg    = errors.New("unsupported algorithm")
	ErrMissingDependency = errors.New("missing external dependency")
	ErrBadCatalogParam   = errors.New("bad catalog param")
	ErrBadEncoding       = errors.New("bad catalog encoding")
	ErrBadOption         = errors.New("unrecognized option")
	ErrReadOnly          = errors.New("catalog is read-only")
	ErrNotConnected      = errors.New("graph is not connected")
	ErrBadVtxID          = errors.New("bad graph vertex ID")
)
