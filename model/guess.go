package model

import (
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-specfit/feature"
	"github.com/cwbudde/algo-specfit/profile"
)

// GuessOptions controls Guess. The zero value estimates every free
// parameter and overwrites each line's FWHM with the instrument resolution.
type GuessOptions struct {
	SkipLines        bool // leave line powers alone
	SkipDustFeatures bool // leave dust feature powers alone
	// KeepLineFWHM leaves the stored line FWHMs in place instead of
	// overwriting them with the instrument resolution.
	KeepLineFWHM bool
}

// guessWindowFactor sizes the integration window around a line center, in
// units of its FWHM on each side.
const guessWindowFactor = 1.5

// Guess derives starting values for the free table parameters from the
// observed spectrum, without running the solver. Fixed parameters are left
// untouched, with one exception: line FWHMs are overwritten with the
// instrument value unless KeepLineFWHM is set, since the stored width is a
// property of the previous instrument, not of the line.
func (m *Model) Guess(spec Spectrum, ins Instrument, opts GuessOptions) error {
	z := m.Features.Redshift
	xz, yz, _ := spec.restFrame(z)
	xs, ys := cleanSorted(xz, yz)
	if len(xs) < 2 {
		return ErrEmptySpectrum
	}
	wmin, wmax := xs[0], xs[len(xs)-1]

	var sp interp.PiecewiseLinear
	if err := sp.Fit(xs, ys); err != nil {
		return ErrEmptySpectrum
	}

	for _, row := range m.Features.OfKind(feature.KindStarlight) {
		if row.Tau.Fixed {
			continue
		}
		// Compare data and blackbody at a short wavelength; past 5 micron
		// a stellar blackbody is deep in its Wien tail, so evaluate it at
		// 5 micron instead.
		w := wmin + 0.1
		bbw := w
		if bbw >= 5 {
			bbw = 5
		}
		amp := sp.Predict(w) / profile.BlackbodyAt(bbw, 1, row.Temperature.Value)
		row.SetParam(feature.ColTau, row.Tau.WithValue(amp))
	}

	// Each continuum component gets an even share of the flux at its own
	// emission peak.
	nbb := len(m.Features.OfKind(feature.KindDustContinuum))
	for _, row := range m.Features.OfKind(feature.KindDustContinuum) {
		if row.Tau.Fixed {
			continue
		}
		temp := row.Temperature.Value
		w := 2898.0 / temp // Wien displacement, micron kelvin
		switch {
		case w > wmax:
			w = wmax
		case w < wmin:
			w = wmin
		}
		amp := sp.Predict(w) / profile.ModifiedBlackbodyAt(w, 1, temp)
		row.SetParam(feature.ColTau, row.Tau.WithValue(amp/float64(nbb)))
	}

	lineFWHM := func(row *feature.Feature) float64 {
		b, ok := ins.Fwhm(row.Wavelength.Value * (1 + z))
		if !ok {
			return 0
		}
		return b.Value / (1 + z)
	}

	if !opts.SkipLines {
		for _, row := range m.Features.OfKind(feature.KindLine) {
			if row.Power.Fixed {
				continue
			}
			power := linePowerGuess(xs, ys, row.Wavelength.Value, lineFWHM(row))
			row.SetParam(feature.ColPower, row.Power.WithValue(power))
		}
	}
	if !opts.KeepLineFWHM {
		for _, row := range m.Features.OfKind(feature.KindLine) {
			row.SetParam(feature.ColFWHM, row.FWHM.WithValue(lineFWHM(row)))
		}
	}

	if !opts.SkipDustFeatures {
		for _, row := range m.Features.OfKind(feature.KindDustFeature) {
			if row.Power.Fixed {
				continue
			}
			w, fwhm := row.Wavelength.Value, row.FWHM.Value
			if !ins.WithinSegment((w-fwhm)*(1+z)) && !ins.WithinSegment((w+fwhm)*(1+z)) {
				row.SetParam(feature.ColPower, row.Power.WithValue(0))
				continue
			}
			amp := sp.Predict(w) / profile.DrudeAt(w, 1, w, fwhm)
			row.SetParam(feature.ColPower, row.Power.WithValue(amp))
		}
	}
	return nil
}

// linePowerGuess integrates the spectrum over a window around the line
// center and subtracts a straight-line continuum estimate between the window
// edges, refusing to go negative.
func linePowerGuess(xs, ys []float64, center, fwhm float64) float64 {
	if fwhm <= 0 {
		return 0
	}
	lo := center - guessWindowFactor*fwhm
	hi := center + guessWindowFactor*fwhm
	i := sort.SearchFloat64s(xs, lo)
	j := sort.SearchFloat64s(xs, hi)
	if j-i < 2 {
		return 0
	}
	power := integrate.Trapezoidal(xs[i:j], ys[i:j])
	continuum := (ys[i] + ys[j-1]) / 2 * (xs[j-1] - xs[i])
	if continuum < power {
		power -= continuum
	}
	return power / fwhm
}

// cleanSorted filters non-finite samples and returns the pairs sorted by
// wavelength with exact duplicates dropped, as the interpolant requires.
func cleanSorted(x, y []float64) (xs, ys []float64) {
	type pair struct{ x, y float64 }
	pairs := make([]pair, 0, len(x))
	for i := range x {
		if isFinite(x[i]) && isFinite(y[i]) {
			pairs = append(pairs, pair{x[i], y[i]})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })
	for i, p := range pairs {
		if i > 0 && p.x == pairs[i-1].x {
			continue
		}
		xs = append(xs, p.x)
		ys = append(ys, p.y)
	}
	return xs, ys
}
