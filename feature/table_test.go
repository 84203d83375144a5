package feature

import (
	"errors"
	"testing"
)

func lineFeature(name string, w float64) *Feature {
	f := &Feature{Name: name, Kind: KindLine}
	f.SetParam(ColPower, NonNegative(1))
	f.SetParam(ColWavelength, FixedAt(w))
	f.SetParam(ColFWHM, FixedAt(0.1))
	return f
}

func TestTableAddAndLookup(t *testing.T) {
	tab := NewTable()
	if err := tab.Add(lineFeature("H2 S(1)", 17.03)); err != nil {
		t.Fatal(err)
	}
	if err := tab.Add(lineFeature("[NeII]", 12.81)); err != nil {
		t.Fatal(err)
	}
	if tab.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tab.Len())
	}
	f, ok := tab.Lookup("[NeII]")
	if !ok || f.Wavelength.Value != 12.81 {
		t.Fatalf("Lookup failed: %v %v", f, ok)
	}
	// insertion order preserved
	if rows := tab.Features(); rows[0].Name != "H2 S(1)" || rows[1].Name != "[NeII]" {
		t.Fatalf("order not preserved: %s, %s", rows[0].Name, rows[1].Name)
	}
}

func TestTableDuplicateName(t *testing.T) {
	tab := NewTable()
	if err := tab.Add(lineFeature("dup", 10)); err != nil {
		t.Fatal(err)
	}
	err := tab.Add(lineFeature("dup", 11))
	if !errors.Is(err, ErrDuplicateFeature) {
		t.Fatalf("got %v, want ErrDuplicateFeature", err)
	}
}

func TestFeatureValidateColumns(t *testing.T) {
	// A line without a power column is invalid.
	f := &Feature{Name: "bad", Kind: KindLine}
	f.SetParam(ColWavelength, FixedAt(10))
	f.SetParam(ColFWHM, FixedAt(0.1))
	if err := f.Validate(); err == nil {
		t.Fatal("missing column not detected")
	}

	// A starlight row must not carry a wavelength.
	g := &Feature{Name: "bad2", Kind: KindStarlight}
	g.SetParam(ColTemperature, FixedAt(5000))
	g.SetParam(ColTau, NonNegative(1))
	g.SetParam(ColWavelength, FixedAt(10))
	if err := g.Validate(); err == nil {
		t.Fatal("extra column not detected")
	}
}

func TestTableClone(t *testing.T) {
	tab := NewTable()
	tab.Redshift = 0.05
	tab.Instrument = "spitzer.irs.*"
	if err := tab.Add(lineFeature("line", 10)); err != nil {
		t.Fatal(err)
	}
	cp := tab.Clone()
	cp.Features()[0].Power.Value = 99
	if tab.Features()[0].Power.Value == 99 {
		t.Fatal("clone shares parameter storage with original")
	}
	if cp.Redshift != 0.05 || cp.Instrument != "spitzer.irs.*" {
		t.Fatalf("metadata not copied: %+v", cp)
	}
}
