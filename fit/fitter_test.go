package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-specfit/feature"
	"github.com/cwbudde/algo-specfit/profile"
	"github.com/cwbudde/algo-specfit/units"
)

func TestFinalizeModelNoComponents(t *testing.T) {
	f := New(units.FluxIntensity)
	if err := f.FinalizeModel(); !errors.Is(err, ErrNoComponents) {
		t.Fatalf("got %v, want ErrNoComponents", err)
	}

	// Multiplicative components alone are not a model either.
	f.Clear()
	if err := f.RegisterAttenuation("att", feature.NonNegative(1)); err != nil {
		t.Fatal(err)
	}
	if err := f.FinalizeModel(); !errors.Is(err, ErrNoComponents) {
		t.Fatalf("got %v, want ErrNoComponents", err)
	}
}

func TestSingleComponentModel(t *testing.T) {
	// With exactly one additive component the composite model is that
	// component alone, with no multiplicative residue.
	f := New(units.FluxIntensity)
	if err := f.RegisterStarlight("star", feature.FixedAt(5000), feature.NonNegative(2)); err != nil {
		t.Fatal(err)
	}
	if err := f.FinalizeModel(); err != nil {
		t.Fatal(err)
	}

	x := []float64{3, 5, 8, 13}
	got, err := f.EvaluateModel(x)
	if err != nil {
		t.Fatal(err)
	}
	want := make([]float64, len(x))
	profile.Blackbody(want, x, 2, 5000)
	for i := range x {
		if got[i] != want[i] {
			t.Fatalf("composite[%d] = %g, want bare component %g", i, got[i], want[i])
		}
	}
}

func TestCompositeSumAndAttenuation(t *testing.T) {
	f := New(units.FluxIntensity)
	if err := f.RegisterDustContinuum("warm dust", feature.FixedAt(200), feature.NonNegative(1.5)); err != nil {
		t.Fatal(err)
	}
	if err := f.RegisterDustFeature("PAH 11.3",
		feature.NonNegative(2), feature.FixedAt(11.3), feature.FixedAt(0.358)); err != nil {
		t.Fatal(err)
	}
	if err := f.RegisterAttenuation("silicates", feature.Between(0.8, 0, 10)); err != nil {
		t.Fatal(err)
	}
	if err := f.FinalizeModel(); err != nil {
		t.Fatal(err)
	}

	x := []float64{9, 10, 11.3, 14}
	got, err := f.EvaluateModel(x)
	if err != nil {
		t.Fatal(err)
	}

	bb := make([]float64, len(x))
	dr := make([]float64, len(x))
	att := make([]float64, len(x))
	profile.ModifiedBlackbody(bb, x, 1.5, 200)
	profile.PowerDrude(dr, x, 2, 11.3, 0.358, units.FluxIntensity)
	profile.S07Attenuation(att, x, 0.8)
	for i := range x {
		want := (bb[i] + dr[i]) * att[i]
		if math.Abs(got[i]-want)/want > 1e-14 {
			t.Fatalf("composite[%d] = %g, want %g", i, got[i], want)
		}
	}
}

func TestComponentsOrderAndErrors(t *testing.T) {
	f := New(units.FluxIntensity)
	if _, err := f.Components(); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("Components before finalize: %v", err)
	}

	if err := f.RegisterStarlight("star", feature.FixedAt(5000), feature.NonNegative(1)); err != nil {
		t.Fatal(err)
	}
	if err := f.RegisterAttenuation("att", feature.NonNegative(1)); err != nil {
		t.Fatal(err)
	}
	if err := f.RegisterLine("[NeII]",
		feature.NonNegative(1), feature.FixedAt(12.81), feature.FixedAt(0.1)); err != nil {
		t.Fatal(err)
	}

	err := f.RegisterStarlight("star", feature.FixedAt(3000), feature.NonNegative(1))
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("duplicate registration: %v", err)
	}

	if err := f.FinalizeModel(); err != nil {
		t.Fatal(err)
	}
	names, err := f.Components()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"star", "[NeII]", "att"}
	if len(names) != len(want) {
		t.Fatalf("Components = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Components = %v, want %v", names, want)
		}
	}

	if _, err := f.GetResult("nope"); !errors.Is(err, ErrUnknownComponent) {
		t.Fatalf("GetResult unknown: %v", err)
	}
}

func TestGetResultBeforeFinalize(t *testing.T) {
	f := New(units.FluxIntensity)
	if err := f.RegisterAttenuation("att", feature.NonNegative(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.GetResult("att"); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("got %v, want ErrNotFinalized", err)
	}
}

func TestLineFWHMRoundTrip(t *testing.T) {
	// Registration converts FWHM to stddev; GetResult converts back.
	f := New(units.FluxIntensity)
	fwhm := 0.227
	if err := f.RegisterLine("line",
		feature.NonNegative(1), feature.FixedAt(17.03), feature.FixedAt(fwhm)); err != nil {
		t.Fatal(err)
	}
	if err := f.FinalizeModel(); err != nil {
		t.Fatal(err)
	}
	res, err := f.GetResult("line")
	if err != nil {
		t.Fatal(err)
	}
	if got := res[feature.ColFWHM]; math.Abs(got-fwhm)/fwhm > 1e-12 {
		t.Fatalf("fwhm round trip: got %g want %g", got, fwhm)
	}
	if got := res[feature.ColWavelength]; got != 17.03 {
		t.Fatalf("wavelength: got %g", got)
	}
}

func TestClearResetsSession(t *testing.T) {
	f := New(units.FluxIntensity)
	if err := f.RegisterStarlight("star", feature.FixedAt(5000), feature.NonNegative(1)); err != nil {
		t.Fatal(err)
	}
	f.Clear()
	// The name is free again and the model gone.
	if err := f.RegisterStarlight("star", feature.FixedAt(5000), feature.NonNegative(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Components(); !errors.Is(err, ErrNotFinalized) {
		t.Fatalf("Components after Clear: %v", err)
	}
}
