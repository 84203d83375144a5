package fit

import (
	"github.com/cwbudde/algo-specfit/feature"
	"github.com/cwbudde/algo-specfit/profile"
	"github.com/cwbudde/algo-specfit/units"
)

// component is the closed set of compiled model terms, one variant per
// feature kind. Each variant knows its native bounded parameters (in
// registration order), how to evaluate itself given a flat parameter slice,
// and how to translate fitted native parameters back into feature table
// columns.
type component interface {
	name() string
	kind() feature.Kind
	multiplicative() bool
	params() []feature.Bounded
	eval(dst, x, p []float64)
	result(p []float64) map[feature.Column]float64
}

// blackbody covers starlight (plain Planck) and dust continuum (nu^2
// emissivity) components. Native parameters: temperature, amplitude.
type blackbody struct {
	nm               string
	modified         bool
	temperature, tau feature.Bounded
}

func (c *blackbody) name() string { return c.nm }

func (c *blackbody) kind() feature.Kind {
	if c.modified {
		return feature.KindDustContinuum
	}
	return feature.KindStarlight
}

func (c *blackbody) multiplicative() bool { return false }

func (c *blackbody) params() []feature.Bounded {
	return []feature.Bounded{c.temperature, c.tau}
}

func (c *blackbody) eval(dst, x, p []float64) {
	if c.modified {
		profile.ModifiedBlackbody(dst, x, p[1], p[0])
	} else {
		profile.Blackbody(dst, x, p[1], p[0])
	}
}

func (c *blackbody) result(p []float64) map[feature.Column]float64 {
	return map[feature.Column]float64{
		feature.ColTemperature: p[0],
		feature.ColTau:         p[1],
	}
}

// gaussianLine is an unresolved emission line, fit as a power-normalized
// Gaussian. Native parameters: power, mean, stddev.
type gaussianLine struct {
	nm                  string
	flux                units.Flux
	power, mean, stddev feature.Bounded
}

func (c *gaussianLine) name() string         { return c.nm }
func (c *gaussianLine) kind() feature.Kind   { return feature.KindLine }
func (c *gaussianLine) multiplicative() bool { return false }

func (c *gaussianLine) params() []feature.Bounded {
	return []feature.Bounded{c.power, c.mean, c.stddev}
}

func (c *gaussianLine) eval(dst, x, p []float64) {
	profile.PowerGaussian(dst, x, p[0], p[1], p[2], c.flux)
}

func (c *gaussianLine) result(p []float64) map[feature.Column]float64 {
	return map[feature.Column]float64{
		feature.ColPower:      p[0],
		feature.ColWavelength: p[1],
		feature.ColFWHM:       p[2] * units.GaussianFWHMFactor,
	}
}

// drudeFeature is a broad dust emission feature, fit as a power-normalized
// Drude profile. Native parameters: power, x_0, fwhm.
type drudeFeature struct {
	nm              string
	flux            units.Flux
	power, x0, fwhm feature.Bounded
}

func (c *drudeFeature) name() string         { return c.nm }
func (c *drudeFeature) kind() feature.Kind   { return feature.KindDustFeature }
func (c *drudeFeature) multiplicative() bool { return false }

func (c *drudeFeature) params() []feature.Bounded {
	return []feature.Bounded{c.power, c.x0, c.fwhm}
}

func (c *drudeFeature) eval(dst, x, p []float64) {
	profile.PowerDrude(dst, x, p[0], p[1], p[2], c.flux)
}

func (c *drudeFeature) result(p []float64) map[feature.Column]float64 {
	return map[feature.Column]float64{
		feature.ColPower:      p[0],
		feature.ColWavelength: p[1],
		feature.ColFWHM:       p[2],
	}
}

// attenuation is the multiplicative mixed-geometry silicate screen. Native
// parameter: tau_sil.
type attenuation struct {
	nm     string
	tauSil feature.Bounded
}

func (c *attenuation) name() string         { return c.nm }
func (c *attenuation) kind() feature.Kind   { return feature.KindAttenuation }
func (c *attenuation) multiplicative() bool { return true }

func (c *attenuation) params() []feature.Bounded {
	return []feature.Bounded{c.tauSil}
}

func (c *attenuation) eval(dst, x, p []float64) {
	profile.S07Attenuation(dst, x, p[0])
}

func (c *attenuation) result(p []float64) map[feature.Column]float64 {
	return map[feature.Column]float64{feature.ColTau: p[0]}
}

// absorption is a multiplicative Drude-shaped absorption band. Native
// parameters: tau, x_0, fwhm.
type absorption struct {
	nm            string
	tau, x0, fwhm feature.Bounded
}

func (c *absorption) name() string         { return c.nm }
func (c *absorption) kind() feature.Kind   { return feature.KindAbsorption }
func (c *absorption) multiplicative() bool { return true }

func (c *absorption) params() []feature.Bounded {
	return []feature.Bounded{c.tau, c.x0, c.fwhm}
}

func (c *absorption) eval(dst, x, p []float64) {
	profile.DrudeAbsorption(dst, x, p[0], p[1], p[2])
}

func (c *absorption) result(p []float64) map[feature.Column]float64 {
	return map[feature.Column]float64{
		feature.ColTau:        p[0],
		feature.ColWavelength: p[1],
		feature.ColFWHM:       p[2],
	}
}
