// Package units defines the internal unit system shared by the profile
// functions, the feature table and the fitter.
//
// All wavelengths are in micron, temperatures in kelvin. Fluxes are either
// surface brightness ("intensity", MJy/sr) or flux density (mJy); the
// corresponding integrated line powers are in units of 1e-10 W m^-2 sr^-1
// and 1e-22 W m^-2. Power-normalized profiles need a single constant to
// convert an integrated power into a peak amplitude in the flux unit; that
// constant folds in the speed of light and the unit scales and is exposed
// through [Flux.AmplitudeFactor].
package units

import "math"

// CMicron is the speed of light in micron/s.
const CMicron = 2.99792458e14

// GaussianFWHMFactor converts a Gaussian standard deviation to a full width
// at half maximum: fwhm = stddev * GaussianFWHMFactor.
var GaussianFWHMFactor = 2 * math.Sqrt(2*math.Ln2)

// Flux selects one of the two supported internal flux unit systems.
type Flux int

const (
	// FluxIntensity is surface brightness in MJy/sr, with integrated
	// powers in 1e-10 W m^-2 sr^-1.
	FluxIntensity Flux = iota
	// FluxDensity is flux density in mJy, with integrated powers in
	// 1e-22 W m^-2.
	FluxDensity
)

// Amplitude factors k = unit(power) * unit(wavelength) / (c * unit(flux)),
// evaluated once in SI. A line profile with integrated power P (internal
// power units) and width parameters in micron has peak amplitude
// proportional to P*k in the internal flux unit.
const (
	intensityAmplitudeFactor   = 1e-10 * 1e-6 / (2.99792458e8 * 1e-20)
	fluxDensityAmplitudeFactor = 1e-22 * 1e-6 / (2.99792458e8 * 1e-29)
)

// AmplitudeFactor returns the power-to-amplitude conversion constant for the
// flux unit system.
func (f Flux) AmplitudeFactor() float64 {
	if f == FluxDensity {
		return fluxDensityAmplitudeFactor
	}
	return intensityAmplitudeFactor
}

// PowerPerFluxHz returns the factor converting an integral of flux over
// frequency (internal flux unit times Hz) into internal power units.
func (f Flux) PowerPerFluxHz() float64 {
	if f == FluxDensity {
		return 1e-29 / 1e-22
	}
	return 1e-20 / 1e-10
}

// String returns the canonical name used in saved tables and packs.
func (f Flux) String() string {
	if f == FluxDensity {
		return "flux_density"
	}
	return "intensity"
}

// ParseFlux maps a canonical name back to a Flux value.
func ParseFlux(s string) (Flux, bool) {
	switch s {
	case "intensity":
		return FluxIntensity, true
	case "flux_density":
		return FluxDensity, true
	}
	return FluxIntensity, false
}
