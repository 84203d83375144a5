package fit

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-specfit/feature"
	"github.com/cwbudde/algo-specfit/internal/levmar"
	"github.com/cwbudde/algo-specfit/units"
)

// Fitter is one construct/fit/ingest session. Register components, finalize,
// fit, extract results; then throw it away.
type Fitter struct {
	flux units.Flux

	additive       []component
	multiplicative []component
	kinds          map[string]feature.Kind

	model *compiled
}

// New returns an empty session using the given internal flux unit system.
func New(flux units.Flux) *Fitter {
	f := &Fitter{flux: flux}
	f.Clear()
	return f
}

// Clear resets the session to empty so a new model can be built. Always
// legal.
func (f *Fitter) Clear() {
	f.additive = nil
	f.multiplicative = nil
	f.kinds = make(map[string]feature.Kind)
	f.model = nil
}

func (f *Fitter) register(c component) error {
	nm := c.name()
	if _, exists := f.kinds[nm]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateComponent, nm)
	}
	f.kinds[nm] = c.kind()
	if c.multiplicative() {
		f.multiplicative = append(f.multiplicative, c)
	} else {
		f.additive = append(f.additive, c)
	}
	return nil
}

// RegisterStarlight adds a blackbody stellar continuum. tau acts as the
// amplitude.
func (f *Fitter) RegisterStarlight(name string, temperature, tau feature.Bounded) error {
	return f.register(&blackbody{nm: name, temperature: temperature, tau: tau})
}

// RegisterDustContinuum adds a modified blackbody with nu^2 emissivity. tau
// acts as the amplitude.
func (f *Fitter) RegisterDustContinuum(name string, temperature, tau feature.Bounded) error {
	return f.register(&blackbody{nm: name, modified: true, temperature: temperature, tau: tau})
}

// RegisterLine adds a power-normalized Gaussian emission line. The table's
// FWHM parameterization is converted to the native standard deviation.
func (f *Fitter) RegisterLine(name string, power, wavelength, fwhm feature.Bounded) error {
	return f.register(&gaussianLine{
		nm:     name,
		flux:   f.flux,
		power:  power,
		mean:   wavelength,
		stddev: fwhmToStddev(fwhm),
	})
}

// RegisterDustFeature adds a power-normalized Drude dust emission feature.
func (f *Fitter) RegisterDustFeature(name string, power, wavelength, fwhm feature.Bounded) error {
	return f.register(&drudeFeature{nm: name, flux: f.flux, power: power, x0: wavelength, fwhm: fwhm})
}

// RegisterAttenuation adds the multiplicative mixed-geometry silicate
// attenuation. tau acts as tau_sil.
func (f *Fitter) RegisterAttenuation(name string, tau feature.Bounded) error {
	return f.register(&attenuation{nm: name, tauSil: tau})
}

// RegisterAbsorption adds a multiplicative Drude-shaped absorption band.
func (f *Fitter) RegisterAbsorption(name string, tau, wavelength, fwhm feature.Bounded) error {
	return f.register(&absorption{nm: name, tau: tau, x0: wavelength, fwhm: fwhm})
}

func fwhmToStddev(fwhm feature.Bounded) feature.Bounded {
	s := feature.Bounded{
		Value: fwhm.Value / units.GaussianFWHMFactor,
		Fixed: fwhm.Fixed,
	}
	if !fwhm.Fixed {
		s.Min = fwhm.Min / units.GaussianFWHMFactor
		s.Max = fwhm.Max / units.GaussianFWHMFactor
	}
	return s
}

// FinalizeModel compiles the registered components into one composite model.
// Returns ErrNoComponents when no additive component was registered.
func (f *Fitter) FinalizeModel() error {
	if len(f.additive) == 0 {
		return ErrNoComponents
	}
	f.model = compile(f.additive, f.multiplicative)
	return nil
}

// Components returns the registered component names in registration order,
// additive terms first. Only valid after FinalizeModel.
func (f *Fitter) Components() ([]string, error) {
	if f.model == nil {
		return nil, ErrNotFinalized
	}
	return f.model.names, nil
}

// EvaluateModel returns the composite flux at the given wavelengths with the
// current parameter state (the registration values before Fit, the optimum
// after).
func (f *Fitter) EvaluateModel(x []float64) ([]float64, error) {
	if f.model == nil {
		return nil, ErrNotFinalized
	}
	dst := make([]float64, len(x))
	f.model.eval(dst, x, f.model.values)
	return dst, nil
}

// Info describes the outcome of one solver run.
type Info struct {
	Iterations int
	Converged  bool
	Cost       float64
	Samples    int
	// Message is the solver diagnostic; non-convergence is reported
	// here, not as an error, so the caller decides how to treat it.
	Message string
}

// Fit runs a weighted nonlinear least-squares solve of the composite model
// against the samples (x, y, unc), with weights 1/unc. Samples with
// non-finite wavelength, flux or weight are excluded rather than rejected.
// On return the internal parameter state holds the optimum; read it back per
// component with GetResult.
func (f *Fitter) Fit(x, y, unc []float64, maxIterations int) (*Info, error) {
	if f.model == nil {
		return nil, ErrNotFinalized
	}
	if len(y) != len(x) || len(unc) != len(x) {
		return nil, fmt.Errorf("fit: sample length mismatch: %d/%d/%d", len(x), len(y), len(unc))
	}

	var xs, ys, ws []float64
	for i := range x {
		w := 1 / unc[i]
		if isFinite(x[i]) && isFinite(y[i]) && isFinite(w) {
			xs = append(xs, x[i])
			ys = append(ys, y[i])
			ws = append(ws, w)
		}
	}
	if len(xs) == 0 {
		return nil, ErrNoValidSamples
	}

	m := f.model
	scratch := make([]float64, len(xs))
	full := make([]float64, len(m.values))
	copy(full, m.values)

	problem := levmar.Problem{
		NumResiduals: len(xs),
		Lower:        m.lower,
		Upper:        m.upper,
		Residuals: func(theta, dst []float64) {
			m.scatter(full, theta)
			m.eval(scratch, xs, full)
			for i := range dst {
				dst[i] = (scratch[i] - ys[i]) * ws[i]
			}
		},
		Jacobian: m.jacobian(xs, ws, full),
	}

	res, err := levmar.Solve(problem, m.free(), levmar.Settings{MaxIterations: maxIterations})
	if err != nil {
		return nil, fmt.Errorf("fit: solve: %w", err)
	}
	m.scatter(m.values, res.X)

	info := &Info{
		Iterations: res.Iterations,
		Converged:  res.Status == levmar.StatusConverged || res.Status == levmar.StatusNoFreeParameters,
		Cost:       res.Cost,
		Samples:    len(xs),
		Message:    res.Status.String(),
	}
	return info, nil
}

// GetResult translates the current native parameters of the named component
// back into feature table columns (power, wavelength, fwhm, tau,
// temperature). Only valid after FinalizeModel.
func (f *Fitter) GetResult(name string) (map[feature.Column]float64, error) {
	if f.model == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFinalized, name)
	}
	c, ok := f.model.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	off := f.model.offset[name]
	return c.result(f.model.values[off : off+len(c.params())]), nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// compiled is the flattened composite model: all native parameter values in
// one vector, with the free subset exposed to the solver. comps holds the
// additive components first, then the multiplicative ones.
type compiled struct {
	comps   []component
	nAdd    int
	names   []string
	byName  map[string]component
	offset  map[string]int
	offsets []int // per comps entry
	compOf  []int // values index -> comps index

	values  []float64
	freeIdx []int
	lower   []float64
	upper   []float64
}

func compile(additive, multiplicative []component) *compiled {
	m := &compiled{
		nAdd:   len(additive),
		byName: make(map[string]component),
		offset: make(map[string]int),
	}
	m.comps = append(append(m.comps, additive...), multiplicative...)
	for ci, c := range m.comps {
		m.names = append(m.names, c.name())
		m.byName[c.name()] = c
		m.offset[c.name()] = len(m.values)
		m.offsets = append(m.offsets, len(m.values))
		for _, b := range c.params() {
			if !b.Fixed {
				m.freeIdx = append(m.freeIdx, len(m.values))
				m.lower = append(m.lower, b.Min)
				m.upper = append(m.upper, b.Max)
			}
			m.values = append(m.values, b.Value)
			m.compOf = append(m.compOf, ci)
		}
	}
	return m
}

// free returns the current values of the free parameters.
func (m *compiled) free() []float64 {
	theta := make([]float64, len(m.freeIdx))
	for i, idx := range m.freeIdx {
		theta[i] = m.values[idx]
	}
	return theta
}

// scatter writes the free parameter vector theta into the full value slice.
func (m *compiled) scatter(full, theta []float64) {
	for i, idx := range m.freeIdx {
		full[idx] = theta[i]
	}
}

// evalComp evaluates one component into dst using the full value slice.
func (m *compiled) evalComp(ci int, dst, x, values []float64) {
	c := m.comps[ci]
	off := m.offsets[ci]
	c.eval(dst, x, values[off:off+len(c.params())])
}

// eval computes the composite flux: the sum of the additive components times
// the product of the multiplicative ones.
func (m *compiled) eval(dst, x, values []float64) {
	m.evalComp(0, dst, x, values)
	tmp := make([]float64, len(x))
	for ci := 1; ci < m.nAdd; ci++ {
		m.evalComp(ci, tmp, x, values)
		vecmath.AddBlockInPlace(dst, tmp)
	}
	for ci := m.nAdd; ci < len(m.comps); ci++ {
		m.evalComp(ci, tmp, x, values)
		vecmath.MulBlockInPlace(dst, tmp)
	}
}

// fdStep scales the forward-difference step, sqrt of the float64 machine
// epsilon.
const fdStep = 1.4901161193847656e-08

// jacobian returns a residual Jacobian evaluator that differences each
// component in isolation and applies the chain rule through the composite
// sum and product. Differencing the full composite instead would round away
// components many orders of magnitude fainter than the continuum.
func (m *compiled) jacobian(xs, ws, full []float64) func(theta []float64, jac *mat.Dense) {
	n := len(xs)
	parts := make([][]float64, len(m.comps))
	for i := range parts {
		parts[i] = make([]float64, n)
	}
	sumAdd := make([]float64, n)
	prodMul := make([]float64, n)
	tmp := make([]float64, n)

	return func(theta []float64, jac *mat.Dense) {
		m.scatter(full, theta)
		for ci := range m.comps {
			m.evalComp(ci, parts[ci], xs, full)
		}
		copy(sumAdd, parts[0])
		for ci := 1; ci < m.nAdd; ci++ {
			vecmath.AddBlockInPlace(sumAdd, parts[ci])
		}
		for i := range prodMul {
			prodMul[i] = 1
		}
		for ci := m.nAdd; ci < len(m.comps); ci++ {
			vecmath.MulBlockInPlace(prodMul, parts[ci])
		}

		for j, idx := range m.freeIdx {
			ci := m.compOf[idx]
			h := fdStep * math.Max(math.Abs(full[idx]), 1)
			if full[idx]+h > m.upper[j] {
				h = -h
			}
			old := full[idx]
			full[idx] = old + h
			m.evalComp(ci, tmp, xs, full)
			full[idx] = old
			inv := 1 / h

			if ci < m.nAdd {
				for i := 0; i < n; i++ {
					jac.Set(i, j, (tmp[i]-parts[ci][i])*inv*prodMul[i]*ws[i])
				}
				continue
			}
			for i := 0; i < n; i++ {
				others := 1.0
				for k := m.nAdd; k < len(m.comps); k++ {
					if k != ci {
						others *= parts[k][i]
					}
				}
				jac.Set(i, j, (tmp[i]-parts[ci][i])*inv*sumAdd[i]*others*ws[i])
			}
		}
	}
}
