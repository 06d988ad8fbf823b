package catalog

import (
	"reflect"
	"testing"

	"github.com/andrewjohnlowe/EnergyFlow/goef"
	"github.com/andrewjohnlowe/EnergyFlow/libef/gen"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	g, err := gen.NewGenerator(gen.GenOpts{DMax: 3})
	if err != nil {
		t.Fatal(err)
	}
	saved := g.Tables()

	ctx := goef.NewCatalogContext()
	cat, err := OpenCatalog(ctx, goef.CatalogOpts{})
	if err != nil {
		t.Fatal(err)
	}

	if err = cat.Save(saved); err != nil {
		t.Fatal(err)
	}
	loaded, err := cat.Load()
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(saved, loaded) {
		t.Fatalf("tables did not survive the round trip:\nsaved:  %+v\nloaded: %+v", saved, loaded)
	}

	// Saving twice replaces rather than appends.
	if err = cat.Save(saved); err != nil {
		t.Fatal(err)
	}
	again, err := cat.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Specs) != len(saved.Specs) {
		t.Fatalf("second save changed the row count: %d vs %d", len(again.Specs), len(saved.Specs))
	}

	cat.Close()
	ctx.Close()
	<-ctx.Done()
}

func TestReadOnlyGuards(t *testing.T) {
	ctx := goef.NewCatalogContext()

	// In-memory catalogs cannot be read-only.
	if _, err := OpenCatalog(ctx, goef.CatalogOpts{ReadOnly: true}); err == nil {
		t.Fatal("read-only in-memory catalog accepted")
	}

	dir := t.TempDir()

	// Seed a db on disk, then reopen it read-only.
	cat, err := OpenCatalog(ctx, goef.CatalogOpts{DbPathName: dir})
	if err != nil {
		t.Fatal(err)
	}
	g, err := gen.NewGenerator(gen.GenOpts{DMax: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err = cat.Save(g.Tables()); err != nil {
		t.Fatal(err)
	}
	cat.Close()

	cat, err = OpenCatalog(ctx, goef.CatalogOpts{DbPathName: dir, ReadOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if !cat.IsReadOnly() {
		t.Fatal("catalog not flagged read-only")
	}
	if err = cat.Save(g.Tables()); err != goef.ErrReadOnly {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if _, err = cat.Load(); err != nil {
		t.Fatal(err)
	}
	cat.Close()

	ctx.Close()
	<-ctx.Done()
}
