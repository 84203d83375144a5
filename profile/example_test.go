package profile_test

import (
	"fmt"

	"github.com/cwbudde/algo-specfit/profile"
)

func ExampleS07Attenuation() {
	x := []float64{5, 10, 20}
	att := make([]float64, len(x))
	profile.S07Attenuation(att, x, 0)
	fmt.Printf("%.1f %.1f %.1f\n", att[0], att[1], att[2])
	// Output:
	// 1.0 1.0 1.0
}

func ExampleDrudeAt() {
	// At the central wavelength the profile equals its peak amplitude.
	fmt.Printf("%.2f\n", profile.DrudeAt(11.3, 0.75, 11.3, 0.358))
	// Output:
	// 0.75
}
