package profile

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-specfit/internal/testutil"
)

func TestS07AttenuationZeroTau(t *testing.T) {
	x := []float64{5, 10, 20}
	dst := make([]float64, len(x))
	S07Attenuation(dst, x, 0)
	for i, v := range dst {
		if v != 1.0 {
			t.Fatalf("S07Attenuation(tau=0)[%d] = %g, want exactly 1", i, v)
		}
	}
}

func TestS07AttenuationRange(t *testing.T) {
	x := testutil.UniformGrid(2, 40, 501)
	dst := make([]float64, len(x))
	for _, tau := range []float64{0.1, 1, 5} {
		S07Attenuation(dst, x, tau)
		for i, v := range dst {
			if v <= 0 || v > 1 {
				t.Fatalf("tau=%g: attenuation[%d] = %g out of (0, 1]", tau, i, v)
			}
		}
	}
}

func TestS07AttenuationMonotonicInTau(t *testing.T) {
	// Deeper silicate optical depth always attenuates more.
	a := make([]float64, 1)
	b := make([]float64, 1)
	x := []float64{9.75}
	S07Attenuation(a, x, 0.5)
	S07Attenuation(b, x, 2.0)
	if b[0] >= a[0] {
		t.Fatalf("attenuation not monotonic: tau=0.5 gives %g, tau=2 gives %g", a[0], b[0])
	}
}

func TestKVTContinuity(t *testing.T) {
	// The stitched extensions must join the tabulated curve without jumps.
	const eps = 1e-6
	pairs := [][2]float64{{8.0 - eps, 8.0 + eps}, {12.7 - eps, 12.7 + eps}}
	for _, p := range pairs {
		lo, hi := KVTAt(p[0]), KVTAt(p[1])
		if math.Abs(lo-hi) > 1e-3 {
			t.Fatalf("curve jump at %g: %g vs %g", p[0], lo, hi)
		}
	}
}

func TestKVTPeak(t *testing.T) {
	// The silicate feature peaks at 9.75 micron with unit tabulated
	// intensity, blended with the power-law component.
	want := (1-kvtBeta)*1.0 + kvtBeta*math.Pow(9.7/9.75, 1.7)
	if got := KVTAt(9.75); math.Abs(got-want) > 1e-12 {
		t.Fatalf("KVT peak: got %g want %g", got, want)
	}
}

func TestDrudeAbsorptionZeroTau(t *testing.T) {
	x := []float64{5, 10, 20}
	dst := []float64{7, 7, 7}
	DrudeAbsorption(dst, x, 0, 10, 1)
	for i, v := range dst {
		if v != 0.0 {
			t.Fatalf("DrudeAbsorption(tau=0)[%d] = %g, want exactly 0", i, v)
		}
	}
}

func TestDrudeAbsorptionDepth(t *testing.T) {
	x := []float64{10}
	dst := make([]float64, 1)
	DrudeAbsorption(dst, x, 2, 10, 1)
	want := (1 - math.Exp(-2)) / 2
	if math.Abs(dst[0]-want) > 1e-14 {
		t.Fatalf("absorption at line center: got %g want %g", dst[0], want)
	}
	// Far from the line the optical depth vanishes and the factor
	// approaches unity.
	DrudeAbsorption(dst, []float64{1000}, 2, 10, 1)
	if dst[0] < 0.999 || dst[0] > 1 {
		t.Fatalf("absorption far from line: got %g want ~1", dst[0])
	}
}
