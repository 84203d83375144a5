package profile

import (
	"math"

	"github.com/cwbudde/algo-specfit/units"
)

var sqrt2Pi = math.Sqrt(2 * math.Pi)

// GaussianAt evaluates a Gaussian profile with the given peak amplitude at a
// single wavelength. stddev must be strictly positive.
func GaussianAt(x, amplitude, mean, stddev float64) float64 {
	u := (x - mean) / stddev
	return amplitude * math.Exp(-0.5*u*u)
}

// Gaussian evaluates a Gaussian profile on the wavelength grid x and stores
// the flux in dst.
func Gaussian(dst, x []float64, amplitude, mean, stddev float64) {
	for i, w := range x {
		u := (w - mean) / stddev
		dst[i] = amplitude * math.Exp(-0.5*u*u)
	}
}

// GaussianPeak returns the peak amplitude of a Gaussian line with integrated
// power power (internal power units), center mean and width stddev.
//
// The per-frequency amplitude of a Gaussian line of power P is
// A = P * lambda^2 / (c * stddev * sqrt(2 pi)), approximated here with the
// central wavelength. The speed of light and the unit scales are folded into
// a single precomputed factor.
func GaussianPeak(power, mean, stddev float64, flux units.Flux) float64 {
	return power * mean * mean / (stddev * sqrt2Pi) * flux.AmplitudeFactor()
}

// PowerGaussian evaluates a power-normalized Gaussian profile on the
// wavelength grid x and stores the flux in dst. power must be non-negative
// and stddev strictly positive.
func PowerGaussian(dst, x []float64, power, mean, stddev float64, flux units.Flux) {
	Gaussian(dst, x, GaussianPeak(power, mean, stddev, flux), mean, stddev)
}
