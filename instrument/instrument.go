// Package instrument models spectrograph segments: their valid wavelength
// ranges and their resolving power as a function of wavelength.
//
// An instrument pack is a YAML document mapping qualified segment names
// (for example "spitzer.irs.sl.1") to a wavelength range and the polynomial
// coefficients of the resolving power R(lambda). Segments are selected from a
// pack by exact name or glob pattern; the resulting Instrument answers the
// three questions the model needs: the expected line FWHM at a wavelength,
// whether a wavelength is covered, and the overall coverage.
package instrument

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-specfit/feature"
)

var (
	ErrUnknownInstrument = errors.New("instrument: no segment matches name")
	ErrRangeIncompatible = errors.New("instrument: wavelength range not covered")
)

// fwhmBoundFraction is the relative slack granted around the nominal
// resolution-derived FWHM when it is used as a fit parameter.
const fwhmBoundFraction = 0.1

// Segment is one contiguous detector order: a wavelength range in micron and
// the polynomial coefficients of the resolving power R(lambda), lowest order
// first.
type Segment struct {
	Min, Max     float64
	Coefficients []float64
}

// Resolution evaluates the resolving power polynomial at w.
func (s Segment) Resolution(w float64) float64 {
	var r float64
	for i := len(s.Coefficients) - 1; i >= 0; i-- {
		r = r*w + s.Coefficients[i]
	}
	return r
}

func (s Segment) contains(w float64) bool {
	return w >= s.Min && w <= s.Max
}

// Pack is a parsed instrument pack: all known segments keyed by qualified
// name.
type Pack struct {
	segments map[string]Segment
}

type segmentDoc struct {
	Range        [2]float64 `yaml:"range"`
	Coefficients []float64  `yaml:"coefficients"`
}

// Parse reads an instrument pack from YAML.
func Parse(data []byte) (*Pack, error) {
	var doc map[string]segmentDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("instrument: parse pack: %w", err)
	}
	p := &Pack{segments: make(map[string]Segment, len(doc))}
	for name, d := range doc {
		if d.Range[1] <= d.Range[0] {
			return nil, fmt.Errorf("instrument: segment %q: empty range [%g, %g]",
				name, d.Range[0], d.Range[1])
		}
		if len(d.Coefficients) == 0 {
			return nil, fmt.Errorf("instrument: segment %q: no resolution coefficients", name)
		}
		p.segments[name] = Segment{Min: d.Range[0], Max: d.Range[1], Coefficients: d.Coefficients}
	}
	return p, nil
}

// Read parses an instrument pack from r.
func Read(r io.Reader) (*Pack, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("instrument: read pack: %w", err)
	}
	return Parse(data)
}

// Load parses the instrument pack file at filename.
func Load(filename string) (*Pack, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("instrument: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Names returns the qualified segment names in the pack, sorted.
func (p *Pack) Names() []string {
	names := make([]string, 0, len(p.segments))
	for n := range p.segments {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Select resolves the given names or glob patterns (path.Match syntax, e.g.
// "spitzer.irs.*.1") against the pack and returns the matching segments as
// one Instrument. Every pattern must match at least one segment.
func (p *Pack) Select(patterns ...string) (*Instrument, error) {
	seen := make(map[string]bool)
	ins := &Instrument{}
	for _, pat := range patterns {
		matched := false
		for _, name := range p.Names() {
			ok, err := path.Match(pat, name)
			if err != nil {
				return nil, fmt.Errorf("instrument: pattern %q: %w", pat, err)
			}
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			ins.names = append(ins.names, name)
			ins.segments = append(ins.segments, p.segments[name])
			matched = true
		}
		if !matched {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInstrument, pat)
		}
	}
	return ins, nil
}

// Instrument is a selected set of segments treated as one observing setup.
type Instrument struct {
	names    []string
	segments []Segment
}

// Names returns the qualified names of the selected segments.
func (ins *Instrument) Names() []string {
	return append([]string(nil), ins.names...)
}

// Fwhm returns the resolution-derived line FWHM at the observed-frame
// wavelength w, with bounds 10% either side, or false when no selected
// segment covers w. Overlapping segments resolve to the first selected one.
func (ins *Instrument) Fwhm(w float64) (feature.Bounded, bool) {
	for _, s := range ins.segments {
		if !s.contains(w) {
			continue
		}
		fwhm := w / s.Resolution(w)
		return feature.Bounded{
			Value: fwhm,
			Min:   fwhm * (1 - fwhmBoundFraction),
			Max:   fwhm * (1 + fwhmBoundFraction),
		}, true
	}
	return feature.Bounded{}, false
}

// WithinSegment reports whether any selected segment covers the
// observed-frame wavelength w.
func (ins *Instrument) WithinSegment(w float64) bool {
	for _, s := range ins.segments {
		if s.contains(w) {
			return true
		}
	}
	return false
}

// WaveRange returns the (min, max) wavelength range of each selected
// segment, in selection order.
func (ins *Instrument) WaveRange() [][2]float64 {
	ranges := make([][2]float64, len(ins.segments))
	for i, s := range ins.segments {
		ranges[i] = [2]float64{s.Min, s.Max}
	}
	return ranges
}

// CheckRange verifies that the observed wavelength range [wmin, wmax] lies
// within the overall coverage of the selected segments. Data extending
// beyond the instrument is ErrRangeIncompatible.
func (ins *Instrument) CheckRange(wmin, wmax float64) error {
	if len(ins.segments) == 0 {
		return fmt.Errorf("%w: no segments selected", ErrRangeIncompatible)
	}
	lo, hi := ins.segments[0].Min, ins.segments[0].Max
	for _, s := range ins.segments[1:] {
		if s.Min < lo {
			lo = s.Min
		}
		if s.Max > hi {
			hi = s.Max
		}
	}
	if wmin < lo || wmax > hi {
		return fmt.Errorf("%w: data [%g, %g] vs instrument [%g, %g]",
			ErrRangeIncompatible, wmin, wmax, lo, hi)
	}
	return nil
}
