// Package profile provides the physical emission, continuum and attenuation
// profiles used to decompose astronomical spectra.
//
// All functions are pure and vectorized over a wavelength grid in micron:
// they write flux values into a caller-provided destination slice and keep no
// state. Line profiles come in two parameterizations: the plain shapes
// ([Drude], [Gaussian]) take a peak amplitude, while the power-normalized
// variants ([PowerDrude], [PowerGaussian]) take an integrated power in the
// internal units of the [github.com/cwbudde/algo-specfit/units] package, so
// that fitted parameters carry directly interpretable physical units.
//
// Degenerate parameters are handled by closed-form special cases rather than
// errors: zero optical depth yields an attenuation of exactly one
// ([S07Attenuation]) or an absorption of exactly zero ([DrudeAbsorption]).
// Callers must guarantee strictly positive widths.
package profile
