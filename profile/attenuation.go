package profile

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/interp"
)

// Empirical silicate extinction curve from Kemper, Vriend & Tielens (2004),
// tabulated over 8.0-12.7 micron.
var (
	kvtWavelength = []float64{
		8.0, 8.2, 8.4, 8.6, 8.8, 9.0, 9.2, 9.4, 9.6, 9.7,
		9.75, 9.8, 10.0, 10.2, 10.4, 10.6, 10.8, 11.0,
		11.2, 11.4, 11.6, 11.8, 12.0, 12.2, 12.4, 12.6, 12.7,
	}
	kvtIntensity = []float64{
		0.06, 0.09, 0.16, 0.275, 0.415, 0.575, 0.755, 0.895, 0.98,
		0.99, 1.0, 0.99, 0.94, 0.83, 0.745, 0.655, 0.58, 0.525,
		0.43, 0.35, 0.27, 0.20, 0.13, 0.09, 0.06, 0.045, 0.04314,
	}
)

const (
	// Exponential slope of the short-wavelength extension, stitched to
	// the curve value at its 8 micron edge.
	kvtShortSlope = 2.03
	// Fixed Drude profile carrying the curve beyond 12.7 micron.
	kvtLongAmplitude = 0.4
	kvtLongCenter    = 18.0
	kvtLongFWHM      = 0.247 * 18.0
	// Mixing weight of the lambda^-1.7 power law.
	kvtBeta = 0.1
)

var (
	kvtOnce   sync.Once
	kvtInterp interp.PiecewiseLinear
)

func kvtTabulatedAt(w float64) float64 {
	kvtOnce.Do(func() {
		if err := kvtInterp.Fit(kvtWavelength, kvtIntensity); err != nil {
			panic("profile: kvt curve fit: " + err.Error())
		}
	})
	return kvtInterp.Predict(w)
}

// KVTAt evaluates the blended silicate extinction curve at a single
// wavelength in micron. Below 8 micron the tabulated curve continues as a
// stitched exponential, above 12.7 micron as a fixed-shape Drude profile;
// the result is mixed with a lambda^-1.7 power law to cover longer
// wavelengths.
func KVTAt(w float64) float64 {
	var ext float64
	switch {
	case w < kvtWavelength[0]:
		ext = kvtIntensity[0] * math.Exp(kvtShortSlope*(w-kvtWavelength[0]))
	case w <= kvtWavelength[len(kvtWavelength)-1]:
		ext = kvtTabulatedAt(w)
	default:
		ext = DrudeAt(w, kvtLongAmplitude, kvtLongCenter, kvtLongFWHM)
	}
	return (1-kvtBeta)*ext + kvtBeta*math.Pow(emissivityRefWavelength/w, 1.7)
}

// KVT evaluates the blended silicate extinction curve on the wavelength grid
// x and stores the result in dst.
func KVT(dst, x []float64) {
	for i, w := range x {
		dst[i] = KVTAt(w)
	}
}

// S07Attenuation evaluates the Smith et al. (2007) mixed-geometry silicate
// attenuation on the wavelength grid x and stores the factor in dst:
// Att(x) = (1 - exp(-tau(x))) / tau(x) with tau(x) = tauSil * KVT(x).
// A zero tauSil yields exactly 1 everywhere.
func S07Attenuation(dst, x []float64, tauSil float64) {
	if tauSil == 0 {
		for i := range dst[:len(x)] {
			dst[i] = 1
		}
		return
	}
	for i, w := range x {
		dst[i] = mixedAttenuation(tauSil * KVTAt(w))
	}
}

// DrudeAbsorption evaluates an absorption component whose optical depth
// follows a Drude profile of unit amplitude: tau(x) = tau * Drude(x; 1, x0,
// fwhm), applied through the same mixed-geometry law as [S07Attenuation].
// A zero tau yields exactly 0 everywhere.
func DrudeAbsorption(dst, x []float64, tau, x0, fwhm float64) {
	if tau == 0 {
		for i := range dst[:len(x)] {
			dst[i] = 0
		}
		return
	}
	for i, w := range x {
		dst[i] = mixedAttenuation(tau * DrudeAt(w, 1, x0, fwhm))
	}
}

// mixedAttenuation is the fully mixed geometry law (1 - exp(-tau))/tau, with
// the tau -> 0 limit handled explicitly.
func mixedAttenuation(tau float64) float64 {
	if tau == 0 {
		return 1
	}
	return (1 - math.Exp(-tau)) / tau
}
