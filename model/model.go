package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-specfit/feature"
	"github.com/cwbudde/algo-specfit/fit"
)

var (
	ErrUnsupportedKind = errors.New("model: feature kind has no registration rule")
	ErrEmptySpectrum   = errors.New("model: spectrum has no finite samples")
)

// Instrument is the narrow view of the spectrograph the model needs:
// resolution-derived line widths, segment coverage and range checking. All
// wavelengths are observed frame.
type Instrument interface {
	Fwhm(wavelength float64) (feature.Bounded, bool)
	WithinSegment(wavelength float64) bool
	WaveRange() [][2]float64
	CheckRange(wmin, wmax float64) error
}

// Spectrum is the observed data triple: wavelength in micron, flux and
// uncertainty in the table's internal flux unit, all observed frame.
type Spectrum struct {
	Wavelength  []float64
	Flux        []float64
	Uncertainty []float64
}

// restFrame shifts the spectrum to the rest frame of a source at redshift z:
// wavelengths shorten, flux and uncertainty scale up with the photon energy.
func (s Spectrum) restFrame(z float64) (xz, yz, uncz []float64) {
	xz = make([]float64, len(s.Wavelength))
	yz = make([]float64, len(s.Flux))
	uncz = make([]float64, len(s.Uncertainty))
	for i := range s.Wavelength {
		xz[i] = s.Wavelength[i] / (1 + z)
	}
	for i := range s.Flux {
		yz[i] = s.Flux[i] * (1 + z)
	}
	for i := range s.Uncertainty {
		uncz[i] = s.Uncertainty[i] * (1 + z)
	}
	return xz, yz, uncz
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// rangeOf returns the finite observed wavelength extremes.
func (s Spectrum) rangeOf() (wmin, wmax float64, ok bool) {
	wmin, wmax = math.Inf(1), math.Inf(-1)
	for _, w := range s.Wavelength {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		if w < wmin {
			wmin = w
		}
		if w > wmax {
			wmax = w
		}
	}
	return wmin, wmax, wmin <= wmax
}

// Model owns a feature table and orchestrates guessing, fitting and result
// ingestion against it. Not safe for concurrent use; one fit in flight per
// Model.
type Model struct {
	Features *feature.Table
}

// New wraps an existing feature table.
func New(t *feature.Table) *Model {
	return &Model{Features: t}
}

// FromPack builds a model from a science pack in YAML form.
func FromPack(data []byte) (*Model, error) {
	t, err := feature.Parse(data)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// Load builds a model from a science pack or previously saved table file.
func Load(path string) (*Model, error) {
	t, err := feature.Read(path)
	if err != nil {
		return nil, err
	}
	return New(t), nil
}

// Save writes the feature table, current fit results included, to path. A
// model loaded back from that file reproduces the same parameters.
func (m *Model) Save(path string) error {
	return m.Features.Write(path)
}

// Copy returns a deep copy, for use as a parent model for derived fits.
func (m *Model) Copy() *Model {
	return New(m.Features.Clone())
}

// FitOptions controls Fit. The zero value selects the defaults: up to 1000
// solver iterations and line FWHMs taken from the instrument resolution.
type FitOptions struct {
	MaxIterations int
	// KeepLineFWHM uses the FWHM values stored in the table for lines
	// instead of replacing them with the instrument resolution. A stored
	// FWHM with bounds is then fit to the data.
	KeepLineFWHM bool
}

func (o FitOptions) withDefaults() FitOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = 1000
	}
	return o
}

// Fit builds the composite model from the table, fits it to the spectrum and
// writes the optimal parameters back into the table. Rows excluded for being
// outside the instrument range keep their stored values untouched. Solver
// non-convergence is reported on the returned Info, not as an error.
func (m *Model) Fit(spec Spectrum, ins Instrument, opts FitOptions) (*fit.Info, error) {
	opts = opts.withDefaults()

	wmin, wmax, ok := spec.rangeOf()
	if !ok {
		return nil, ErrEmptySpectrum
	}
	if err := ins.CheckRange(wmin, wmax); err != nil {
		return nil, err
	}

	f, err := m.construct(ins, opts.KeepLineFWHM)
	if err != nil {
		return nil, err
	}
	if err := f.FinalizeModel(); err != nil {
		return nil, err
	}

	xz, yz, uncz := spec.restFrame(m.Features.Redshift)
	info, err := f.Fit(xz, yz, uncz, opts.MaxIterations)
	if err != nil {
		return nil, err
	}
	if err := m.ingest(f); err != nil {
		return nil, err
	}
	return info, nil
}

// Tabulate evaluates the model, with its current table parameters, on an
// observed-frame wavelength grid. A nil grid selects the instrument's full
// range sampled at half the resolution FWHM at its short end. Stored line
// FWHMs are always used, so fitted widths survive in overlap regions.
func (m *Model) Tabulate(ins Instrument, wavelengths []float64) (Spectrum, error) {
	f, err := m.construct(ins, true)
	if err != nil {
		return Spectrum{}, err
	}
	if err := f.FinalizeModel(); err != nil {
		return Spectrum{}, err
	}

	if wavelengths == nil {
		ranges := ins.WaveRange()
		if len(ranges) == 0 {
			return Spectrum{}, fmt.Errorf("model: tabulate: instrument has no wavelength range")
		}
		wmin, wmax := ranges[0][0], ranges[0][1]
		for _, r := range ranges[1:] {
			wmin = math.Min(wmin, r[0])
			wmax = math.Max(wmax, r[1])
		}
		step := (wmax - wmin) / 1000
		if b, ok := ins.Fwhm(wmin); ok && b.Value > 0 {
			step = b.Value / 2
		}
		for w := wmin; w < wmax; w += step {
			wavelengths = append(wavelengths, w)
		}
	}

	z := m.Features.Redshift
	xz := make([]float64, len(wavelengths))
	for i, w := range wavelengths {
		xz[i] = w / (1 + z)
	}
	flux, err := f.EvaluateModel(xz)
	if err != nil {
		return Spectrum{}, err
	}
	return Spectrum{Wavelength: append([]float64(nil), wavelengths...), Flux: flux}, nil
}

// excluded returns the names of rows left out of the current fit cycle:
// lines, dust features and absorption bands whose observed-frame wavelength
// lies entirely outside the instrument segments. The set is recomputed on
// every call and never stored on the rows.
func (m *Model) excluded(ins Instrument) map[string]bool {
	z := m.Features.Redshift
	out := make(map[string]bool)
	for _, row := range m.Features.Features() {
		switch row.Kind {
		case feature.KindLine:
			w := row.Wavelength.Value * (1 + z)
			if !ins.WithinSegment(w) {
				out[row.Name] = true
			}
		case feature.KindDustFeature, feature.KindAbsorption:
			w := row.Wavelength.Value
			fwhm := row.FWHM.Value
			lo := (w - fwhm) * (1 + z)
			hi := (w + fwhm) * (1 + z)
			if !ins.WithinSegment(lo) && !ins.WithinSegment(hi) {
				out[row.Name] = true
			}
		}
	}
	return out
}

// construct dispatches every non-excluded table row to the matching fitter
// registration call. With keepLineFWHM false, each line's FWHM is replaced
// by the instrument resolution at its observed wavelength, shifted back to
// the rest frame.
func (m *Model) construct(ins Instrument, keepLineFWHM bool) (*fit.Fitter, error) {
	z := m.Features.Redshift
	skip := m.excluded(ins)
	f := fit.New(m.Features.Flux)

	for _, row := range m.Features.Features() {
		if skip[row.Name] {
			continue
		}
		var err error
		switch row.Kind {
		case feature.KindStarlight:
			err = f.RegisterStarlight(row.Name, *row.Temperature, *row.Tau)
		case feature.KindDustContinuum:
			err = f.RegisterDustContinuum(row.Name, *row.Temperature, *row.Tau)
		case feature.KindLine:
			fwhm := *row.FWHM
			if !keepLineFWHM {
				if b, ok := ins.Fwhm(row.Wavelength.Value * (1 + z)); ok {
					fwhm = feature.Bounded{
						Value: b.Value / (1 + z),
						Min:   b.Min / (1 + z),
						Max:   b.Max / (1 + z),
					}
				}
			}
			err = f.RegisterLine(row.Name, *row.Power, *row.Wavelength, fwhm)
		case feature.KindDustFeature:
			err = f.RegisterDustFeature(row.Name, *row.Power, *row.Wavelength, *row.FWHM)
		case feature.KindAttenuation:
			err = f.RegisterAttenuation(row.Name, *row.Tau)
		case feature.KindAbsorption:
			err = f.RegisterAbsorption(row.Name, *row.Tau, *row.Wavelength, *row.FWHM)
		default:
			err = fmt.Errorf("%w: %q has kind %s", ErrUnsupportedKind, row.Name, row.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ingest copies the fit result of every registered component back into its
// table row. Only the values change; bounds and fixedness stay. Rows that
// were not registered are not touched.
func (m *Model) ingest(f *fit.Fitter) error {
	names, err := f.Components()
	if err != nil {
		return err
	}
	for _, name := range names {
		row, ok := m.Features.Lookup(name)
		if !ok {
			return fmt.Errorf("model: fitted component %q has no table row", name)
		}
		res, err := f.GetResult(name)
		if err != nil {
			return err
		}
		for col, v := range res {
			if p := row.Param(col); p != nil {
				row.SetParam(col, p.WithValue(v))
			}
		}
	}
	return nil
}
