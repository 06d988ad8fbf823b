package main

import (
	"flag"

	"github.com/plan-systems/klog"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/catalog"
	"github.com/andrewjohnlowe/EnergyFlow/libef/gen"
	"github.com/andrewjohnlowe/EnergyFlow/libef/ve"
)

var (
	dmax     = flag.Int("dmax", 0, "generate all EFP specs up to this total degree")
	nmax     = flag.Int("nmax", 0, "max vertex count; 0 means dmax+1")
	emax     = flag.Int("emax", 0, "max simple edge count; 0 means dmax")
	cmax     = flag.Int("cmax", 0, "max contraction complexity; 0 means nmax")
	vmax     = flag.Int("vmax", 0, "max vertex valency; 0 means dmax")
	algTag   = flag.String("alg", "einsum", "contraction planner: einsum or elim")
	stratTag = flag.String("strategy", "greedy", "einsum path search: greedy or optimal")
	dbPath   = flag.String("db", "", "catalog db path to save the generated specs to")
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	if *dmax > 0 {
		generateCatalog()
	} else {
		pathname := flag.Arg(0)
		go_gpython(pathname)
	}

	klog.Flush()
}

func generateCatalog() {
	alg, err := ve.ParseAlg(*algTag)
	if err != nil {
		klog.Fatalf("%v", err)
	}
	strat, err := ve.ParseStrategy(*stratTag)
	if err != nil {
		klog.Fatalf("%v", err)
	}

	g, err := gen.NewGenerator(gen.GenOpts{
		DMax:     *dmax,
		NMax:     *nmax,
		EMax:     *emax,
		CMax:     *cmax,
		VMax:     *vmax,
		Alg:      alg,
		Strategy: strat,
		Verbose:  true,
	})
	if err != nil {
		klog.Fatalf("%v", err)
	}

	t := g.Tables()
	klog.Infof("generated %d specs (d <= %d)", len(t.Specs), *dmax)

	if *dbPath == "" {
		return
	}

	ctx := goef.NewCatalogContext()
	cat, err := catalog.OpenCatalog(ctx, goef.CatalogOpts{
		DbPathName: *dbPath,
	})
	if err != nil {
		klog.Fatalf("%v", err)
	}
	if err = g.Save(cat); err != nil {
		klog.Fatalf("%v", err)
	}

	ctx.Close()
	<-ctx.Done()
	klog.Infof("saved catalog to %s", *dbPath)
}
