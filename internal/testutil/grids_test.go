package testutil

import (
	"math"
	"testing"
)

func TestUniformGrid(t *testing.T) {
	g := UniformGrid(5, 15, 11)
	if len(g) != 11 {
		t.Fatalf("length %d, want 11", len(g))
	}
	if g[0] != 5 || g[10] != 15 {
		t.Fatalf("endpoints %g, %g", g[0], g[10])
	}
	for i := 1; i < len(g); i++ {
		if math.Abs(g[i]-g[i-1]-1) > 1e-12 {
			t.Fatalf("step at %d: %g", i, g[i]-g[i-1])
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(42, 0.5, 100)
	b := DeterministicNoise(42, 0.5, 100)
	RequireSliceNearlyEqual(t, a, b, 0)
	RequireFinite(t, a)
	for i, v := range a {
		if math.Abs(v) > 0.5 {
			t.Fatalf("index %d: %g exceeds amplitude", i, v)
		}
	}
}

func TestConstant(t *testing.T) {
	c := Constant(2.5, 4)
	for i, v := range c {
		if v != 2.5 {
			t.Fatalf("index %d: %g", i, v)
		}
	}
}
