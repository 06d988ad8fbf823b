// Package catalog persists generated spec tables to a badger database, one
// named blob per table, so any row can seed an EFP without re-running
// generation.
package catalog

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
)

// Table keys, mirroring the archive member names of the persisted format.
var (
	kVEAlg        = []byte("ve_alg")
	kCols         = []byte("cols")
	kSpecs        = []byte("specs")
	kDiscFormulae = []byte("disc_formulae")
	kEdges        = []byte("edges")
	kEinstrs      = []byte("einstrs")
	kEinpaths     = []byte("einpaths")
	kWeights      = []byte("weights")
)

type catalog struct {
	ctx      goef.CatalogContext
	readOnly bool
	db       *badger.DB
}

// OpenCatalog opens (or creates) a catalog db.  An empty DbPathName opens an
// in-memory db, which cannot be read-only.
func OpenCatalog(ctx goef.CatalogContext, opts goef.CatalogOpts) (goef.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // single-writer usage so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(goef.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes.
	ctx.AttachCatalog(cat)

	return cat, nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) Close() error {
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

// Save writes every table, replacing prior contents.
func (cat *catalog) Save(t *goef.Tables) error {
	if cat.readOnly {
		return goef.ErrReadOnly
	}

	return cat.db.Update(func(txn *badger.Txn) error {
		entries := map[string][]byte{
			string(kVEAlg):        []byte(t.VEAlg),
			string(kCols):         encodeStrings(nil, t.Cols),
			string(kSpecs):        encodeSpecs(nil, t.Specs),
			string(kDiscFormulae): encodeFormulae(nil, t.DiscFormulae),
			string(kEdges):        encodeEdgeLists(nil, t.Edges),
			string(kEinstrs):      encodeStrings(nil, t.Einstrs),
			string(kEinpaths):     encodeEinpaths(nil, t.Einpaths),
			string(kWeights):      encodeWeights(nil, t.Weights),
		}
		for key, val := range entries {
			if err := txn.Set([]byte(key), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reconstructs the persisted tables.
func (cat *catalog) Load() (*goef.Tables, error) {
	t := &goef.Tables{}

	err := cat.db.View(func(txn *badger.Txn) error {
		get := func(key []byte, decode func(val []byte) error) error {
			item, err := txn.Get(key)
			if err != nil {
				return errors.Wrapf(err, "catalog table %q", key)
			}
			return item.Value(decode)
		}

		if err := get(kVEAlg, func(val []byte) error {
			t.VEAlg = string(val)
			return nil
		}); err != nil {
			return err
		}
		if err := get(kCols, func(val []byte) (err error) {
			t.Cols, err = decodeStrings(val)
			return
		}); err != nil {
			return err
		}
		if err := get(kSpecs, func(val []byte) (err error) {
			t.Specs, err = decodeSpecs(val)
			return
		}); err != nil {
			return err
		}
		if err := get(kDiscFormulae, func(val []byte) (err error) {
			t.DiscFormulae, err = decodeFormulae(val)
			return
		}); err != nil {
			return err
		}
		if err := get(kEdges, func(val []byte) (err error) {
			t.Edges, err = decodeEdgeLists(val)
			return
		}); err != nil {
			return err
		}
		if err := get(kEinstrs, func(val []byte) (err error) {
			t.Einstrs, err = decodeStrings(val)
			return
		}); err != nil {
			return err
		}
		if err := get(kEinpaths, func(val []byte) (err error) {
			t.Einpaths, err = decodeEinpaths(val)
			return
		}); err != nil {
			return err
		}
		return get(kWeights, func(val []byte) (err error) {
			t.Weights, err = decodeWeights(val)
			return
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
