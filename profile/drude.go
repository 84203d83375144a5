package profile

import (
	"math"

	"github.com/cwbudde/algo-specfit/units"
)

// DrudeAt evaluates a Drude profile with the given peak amplitude at a single
// wavelength. x0 is the central wavelength and fwhm the full width at half
// maximum, both in micron. fwhm must be strictly positive.
func DrudeAt(x, amplitude, x0, fwhm float64) float64 {
	g := fwhm / x0
	u := x/x0 - x0/x
	return amplitude * g * g / (u*u + g*g)
}

// Drude evaluates a Drude profile on the wavelength grid x and stores the
// flux in dst.
func Drude(dst, x []float64, amplitude, x0, fwhm float64) {
	g := fwhm / x0
	g2 := g * g
	for i, w := range x {
		u := w/x0 - x0/w
		dst[i] = amplitude * g2 / (u*u + g2)
	}
}

// DrudePeak returns the peak amplitude of a Drude profile with integrated
// power power (internal power units), central wavelength x0 and width fwhm.
//
// The integrated power over frequency of a Drude profile with central
// intensity b and fractional width g = fwhm/x0 is P = (pi*c/2) * b*g/x0,
// which solved for b gives b = 2*P*x0 / (pi*c*g). The speed of light and the
// unit scales are folded into a single precomputed factor.
func DrudePeak(power, x0, fwhm float64, flux units.Flux) float64 {
	g := fwhm / x0
	return 2 * power * x0 / (math.Pi * g) * flux.AmplitudeFactor()
}

// PowerDrude evaluates a power-normalized Drude profile on the wavelength
// grid x and stores the flux in dst. power must be non-negative and fwhm
// strictly positive.
func PowerDrude(dst, x []float64, power, x0, fwhm float64, flux units.Flux) {
	Drude(dst, x, DrudePeak(power, x0, fwhm, flux), x0, fwhm)
}
