package profile

import "math"

const (
	// blackbodyNorm scales the Planck law so that amplitudes stay of
	// order unity in the internal flux units.
	blackbodyNorm = 3.97289e13
	// c2 is the second radiation constant hc/k in micron*K.
	c2 = 1.4387752e4
	// emissivityRefWavelength anchors the nu^2 emissivity of the
	// modified blackbody, in micron.
	emissivityRefWavelength = 9.7
)

// BlackbodyAt evaluates a scaled Planck function at a single wavelength x in
// micron.
func BlackbodyAt(x, amplitude, temperature float64) float64 {
	return amplitude * blackbodyNorm / (x * x * x) / (math.Exp(c2/(x*temperature)) - 1)
}

// Blackbody evaluates a scaled Planck function on the wavelength grid x and
// stores the flux in dst. dst and x must have the same length.
func Blackbody(dst, x []float64, amplitude, temperature float64) {
	for i, w := range x {
		dst[i] = BlackbodyAt(w, amplitude, temperature)
	}
}

// ModifiedBlackbodyAt evaluates a blackbody with emissivity proportional to
// nu^2, anchored at 9.7 micron, at a single wavelength.
func ModifiedBlackbodyAt(x, amplitude, temperature float64) float64 {
	r := emissivityRefWavelength / x
	return BlackbodyAt(x, amplitude, temperature) * r * r
}

// ModifiedBlackbody evaluates a blackbody with emissivity proportional to
// nu^2 on the wavelength grid x and stores the flux in dst.
func ModifiedBlackbody(dst, x []float64, amplitude, temperature float64) {
	for i, w := range x {
		dst[i] = ModifiedBlackbodyAt(w, amplitude, temperature)
	}
}
