package pyef

// Copyright 2018 The go-python Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

import (
	"fmt"

	"github.com/go-python/gpython/py"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/catalog"
	"github.com/andrewjohnlowe/EnergyFlow/libef/efp"
	"github.com/andrewjohnlowe/EnergyFlow/libef/gen"
	"github.com/andrewjohnlowe/EnergyFlow/libef/ve"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyEFPType       = py.NewType("EFP", "a single energy flow polynomial bound to its contraction plan")
	pyTablesType    = py.NewType("Tables", "the spec tables of one generated EFP catalog")
	pyCatalogType   = py.NewType("Catalog", "goef.Catalog")
	pyWorkspaceType = py.NewType("Workspace", "collects active session resources and catalogs")
)

type pyEFP struct {
	*efp.EFP
}

func (e pyEFP) Type() *py.Type {
	return pyEFPType
}

func (e pyEFP) M__str__() (py.Object, error) {
	return py.String(fmt.Sprintf("EFP(n=%d, d=%d, chi=%d)", e.N(), e.D(), e.Chi())), nil
}

func (e pyEFP) M__repr__() (py.Object, error) {
	return e.M__str__()
}

// optsFromKwargs reads the recognized evaluator options off a kwargs dict.
func optsFromKwargs(kwargs py.StringDict) (efp.Opts, error) {
	opts := efp.DefaultOpts()

	var measure, alg, strategy string
	py.LoadAttr(kwargs, "measure", &measure)
	py.LoadAttr(kwargs, "beta", &opts.Beta)
	py.LoadAttr(kwargs, "normed", &opts.Normed)
	py.LoadAttr(kwargs, "use_efm", &opts.UseEFM)
	py.LoadAttr(kwargs, "alg", &alg)
	py.LoadAttr(kwargs, "strategy", &strategy)

	var err error
	if measure != "" {
		if opts.Measure, err = efp.ParseMeasure(measure); err != nil {
			return opts, err
		}
	}
	if alg != "" {
		if opts.Alg, err = ve.ParseAlg(alg); err != nil {
			return opts, err
		}
	}
	if strategy != "" {
		if opts.Strategy, err = ve.ParseStrategy(strategy); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

// Arg 1 (str): graph expression, e.g. "0-1-2,0=2"
func py_EFP(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	var expr string
	err := py.LoadTuple(args, []interface{}{&expr})
	if err != nil {
		return nil, err
	}

	opts, err := optsFromKwargs(kwargs)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}

	e, err := efp.NewEFPFromExpr(expr, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(pyEFP{e}), nil
}

func py_EFP_N(self py.Object, args py.Tuple) (py.Object, error) {
	e := self.(pyEFP)
	return py.Object(py.Int(e.N())), nil
}

func py_EFP_D(self py.Object, args py.Tuple) (py.Object, error) {
	e := self.(pyEFP)
	return py.Object(py.Int(e.D())), nil
}

func py_EFP_Chi(self py.Object, args py.Tuple) (py.Object, error) {
	e := self.(pyEFP)
	return py.Object(py.Int(e.Chi())), nil
}

func py_EFP_Einstr(self py.Object, args py.Tuple) (py.Object, error) {
	e := self.(pyEFP)
	einstr, _ := e.Einspecs()
	return py.Object(py.String(einstr)), nil
}

// Arg 1 (sequence): event as a sequence of (pt, y, phi) or (pt, y, phi, m)
func py_EFP_Compute(self py.Object, args py.Tuple) (py.Object, error) {
	e := self.(pyEFP)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Compute() expects a single event argument")
	}

	event, err := exportEvent(args[0])
	if err != nil {
		return nil, err
	}

	val, err := e.Compute(event)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(py.Float(val)), nil
}

// Arg 1 (sequence): sequence of events
// Arg 2 (int, optional): worker count; 0 means one per CPU
func py_EFP_BatchCompute(self py.Object, args py.Tuple) (py.Object, error) {
	e := self.(pyEFP)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "BatchCompute() expects a sequence of events")
	}

	numEvents, err := py.GetLen(args[0])
	if err != nil {
		return nil, err
	}
	getter, ok := args[0].(py.I__getitem__)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a sequence of events")
	}

	events := make([]efp.Event, numEvents)
	for i := py.Int(0); i < numEvents; i++ {
		item, err := getter.M__getitem__(i)
		if err != nil {
			return nil, err
		}
		if events[i], err = exportEvent(item); err != nil {
			return nil, err
		}
	}

	njobs := 0
	if len(args) > 1 {
		nj, err := py.GetInt(args[1])
		if err != nil {
			return nil, err
		}
		njobs = int(nj)
	}

	vals, err := e.BatchCompute(events, njobs)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}

	out := make(py.Tuple, len(vals))
	for i, val := range vals {
		out[i] = py.Float(val)
	}
	return py.Object(out), nil
}

// Arg 1 (int): dmax
func py_Generate(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	var dmax py.Object
	err := py.ParseTuple(args, "i", &dmax)
	if err != nil {
		return nil, err
	}

	opts := gen.GenOpts{
		DMax: int(dmax.(py.Int)),
	}
	py.LoadAttr(kwargs, "nmax", &opts.NMax)
	py.LoadAttr(kwargs, "emax", &opts.EMax)
	py.LoadAttr(kwargs, "cmax", &opts.CMax)
	py.LoadAttr(kwargs, "vmax", &opts.VMax)
	py.LoadAttr(kwargs, "verbose", &opts.Verbose)

	var alg, strategy string
	py.LoadAttr(kwargs, "alg", &alg)
	py.LoadAttr(kwargs, "strategy", &strategy)
	if alg != "" {
		if opts.Alg, err = ve.ParseAlg(alg); err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
	}
	if strategy != "" {
		if opts.Strategy, err = ve.ParseStrategy(strategy); err != nil {
			return nil, py.ExceptionNewf(py.ValueError, "%v", err)
		}
	}

	g, err := gen.NewGenerator(opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(pyTables{g.Tables()}), nil
}

type pyTables struct {
	*goef.Tables
}

func (t pyTables) Type() *py.Type {
	return pyTablesType
}

func (t pyTables) M__str__() (py.Object, error) {
	return py.String(fmt.Sprintf("Tables(specs=%d, primes=%d)", len(t.Specs), t.numPrimes())), nil
}

func (t pyTables) M__repr__() (py.Object, error) {
	return t.M__str__()
}

func (t pyTables) numPrimes() int {
	n := 0
	for _, spec := range t.Specs {
		if !spec.IsPrime() {
			break
		}
		n++
	}
	return n
}

func py_Tables_NumSpecs(self py.Object, args py.Tuple) (py.Object, error) {
	t := self.(pyTables)
	return py.Object(py.Int(len(t.Specs))), nil
}

func py_Tables_NumPrimes(self py.Object, args py.Tuple) (py.Object, error) {
	t := self.(pyTables)
	return py.Object(py.Int(t.numPrimes())), nil
}

// Arg 1 (int): spec row
func py_Tables_EFP(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	t := self.(pyTables)

	row, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}

	opts, err := optsFromKwargs(kwargs)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}

	e, err := efp.NewEFPFromSpec(t.Tables, int(row), opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return py.Object(pyEFP{e}), nil
}

const (
	READ_ONLY = 0x01

	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx goef.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: goef.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags})
	if err != nil {
		return nil, err
	}

	opts := goef.CatalogOpts{
		DbPathName: pathname,
		ReadOnly:   (flags & READ_ONLY) != 0,
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pyCatalog{cat}), nil
}

type pyCatalog struct {
	goef.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

// Arg 1 (Tables): tables to persist
func py_Catalog_Save(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	t, ok := args[0].(pyTables)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Tables object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "catalog is in read-only mode")
	}

	if err := cat.Save(t.Tables); err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.None, nil
}

func py_Catalog_Load(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	t, err := cat.Load()
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pyTables{t}), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Catalog.Close()
	}
	return py.None, nil
}

// exportEvent reads a python sequence of particle tuples into an Event.
// Each particle is (pt, y, phi) or (pt, y, phi, m).
func exportEvent(obj py.Object) (efp.Event, error) {
	numParts, err := py.GetLen(obj)
	if err != nil {
		return nil, err
	}
	getter, ok := obj.(py.I__getitem__)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a sequence of particles (got %v)", obj.Type().Name)
	}

	event := make(efp.Event, numParts)
	for i := py.Int(0); i < numParts; i++ {
		item, err := getter.M__getitem__(i)
		if err != nil {
			return nil, err
		}

		fields, err := exportFloats(item)
		if err != nil {
			return nil, err
		}
		if len(fields) != 3 && len(fields) != 4 {
			return nil, py.ExceptionNewf(py.ValueError, "particle %d: expected (pt, y, phi) or (pt, y, phi, m)", i)
		}

		event[i] = efp.Particle{
			Pt:  fields[0],
			Y:   fields[1],
			Phi: fields[2],
		}
		if len(fields) == 4 {
			event[i].M = fields[3]
		}
	}
	return event, nil
}

func exportFloats(obj py.Object) ([]float64, error) {
	n, err := py.GetLen(obj)
	if err != nil {
		return nil, err
	}
	getter, ok := obj.(py.I__getitem__)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected a sequence of numbers (got %v)", obj.Type().Name)
	}

	out := make([]float64, n)
	for i := py.Int(0); i < n; i++ {
		item, err := getter.M__getitem__(i)
		if err != nil {
			return nil, err
		}
		switch v := item.(type) {
		case py.Float:
			out[i] = float64(v)
		case py.Int:
			out[i] = float64(v)
		default:
			return nil, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", item.Type().Name)
		}
	}
	return out, nil
}

func init() {

	/////////////////////////////////
	// EFP
	{
		pyEFPType.Dict["N"] = py.MustNewMethod("N", py_EFP_N, 0, "number of vertices")
		pyEFPType.Dict["D"] = py.MustNewMethod("D", py_EFP_D, 0, "total edge weight")
		pyEFPType.Dict["Chi"] = py.MustNewMethod("Chi", py_EFP_Chi, 0, "contraction complexity")
		pyEFPType.Dict["Einstr"] = py.MustNewMethod("Einstr", py_EFP_Einstr, 0, "")
		pyEFPType.Dict["Compute"] = py.MustNewMethod("Compute", py_EFP_Compute, 0, "evaluates this EFP on one event")
		pyEFPType.Dict["BatchCompute"] = py.MustNewMethod("BatchCompute", py_EFP_BatchCompute, 0, "evaluates this EFP across many events")
	}

	/////////////////////////////////
	// Tables
	{
		pyTablesType.Dict["NumSpecs"] = py.MustNewMethod("NumSpecs", py_Tables_NumSpecs, 0, "")
		pyTablesType.Dict["NumPrimes"] = py.MustNewMethod("NumPrimes", py_Tables_NumPrimes, 0, "")
		pyTablesType.Dict["EFP"] = py.MustNewMethod("EFP", py_Tables_EFP, 0, "binds an evaluator to one spec row")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Save"] = py.MustNewMethod("Save", py_Catalog_Save, 0, "")
		pyCatalogType.Dict["Load"] = py.MustNewMethod("Load", py_Catalog_Load, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("EFP", py_EFP, 0, ""),
			py.MustNewMethod("Generate", py_Generate, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PY_VERSION":  py.String("v3.4.0"),
			"MAX_VTX":     py.Int(goef.MaxVtxID),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyef",
				Doc:  "energy flow polynomial gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})

	}
}
