package feature

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-specfit/units"
)

// The on-disk document, shared by science packs and saved fits. Each bounded
// parameter serializes as value/min/max fields; absent bounds mean fixed, an
// explicit .inf bound means unbounded. A bare scalar is shorthand for a
// fixed value.
type tableDoc struct {
	Redshift   float64       `yaml:"redshift"`
	Instrument string        `yaml:"instrument,omitempty"`
	FluxUnit   string        `yaml:"flux_unit,omitempty"`
	Features   []*featureDoc `yaml:"features"`
}

type featureDoc struct {
	Name        string    `yaml:"name"`
	Kind        string    `yaml:"kind"`
	Group       string    `yaml:"group,omitempty"`
	Geometry    string    `yaml:"geometry,omitempty"`
	Temperature *paramDoc `yaml:"temperature,omitempty"`
	Tau         *paramDoc `yaml:"tau,omitempty"`
	Power       *paramDoc `yaml:"power,omitempty"`
	Wavelength  *paramDoc `yaml:"wavelength,omitempty"`
	FWHM        *paramDoc `yaml:"fwhm,omitempty"`
}

type paramDoc struct {
	Value float64  `yaml:"value"`
	Min   *float64 `yaml:"min,omitempty"`
	Max   *float64 `yaml:"max,omitempty"`
}

func (p *paramDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return node.Decode(&p.Value)
	}
	type plain paramDoc
	return node.Decode((*plain)(p))
}

func (p *paramDoc) bounded() Bounded {
	if p.Min == nil && p.Max == nil {
		return FixedAt(p.Value)
	}
	b := Bounded{Value: p.Value, Min: math.Inf(-1), Max: math.Inf(1)}
	if p.Min != nil {
		b.Min = *p.Min
	}
	if p.Max != nil {
		b.Max = *p.Max
	}
	return b
}

func docParam(b *Bounded) *paramDoc {
	if b == nil {
		return nil
	}
	if b.Fixed {
		return &paramDoc{Value: b.Value}
	}
	lo, hi := b.Min, b.Max
	return &paramDoc{Value: b.Value, Min: &lo, Max: &hi}
}

// Parse builds a table from a YAML science pack or saved fit.
func Parse(data []byte) (*Table, error) {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("feature: parse: %w", err)
	}

	t := NewTable()
	t.Redshift = doc.Redshift
	t.Instrument = doc.Instrument
	if doc.FluxUnit != "" {
		flux, ok := units.ParseFlux(doc.FluxUnit)
		if !ok {
			return nil, fmt.Errorf("feature: parse: unknown flux unit %q", doc.FluxUnit)
		}
		t.Flux = flux
	}

	for _, fd := range doc.Features {
		kind, err := ParseKind(fd.Kind)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", fd.Name, err)
		}
		f := &Feature{Name: fd.Name, Kind: kind, Group: fd.Group, Geometry: fd.Geometry}
		docs := map[Column]*paramDoc{
			ColTemperature: fd.Temperature,
			ColTau:         fd.Tau,
			ColPower:       fd.Power,
			ColWavelength:  fd.Wavelength,
			ColFWHM:        fd.FWHM,
		}
		for col, pd := range docs {
			if pd != nil {
				f.SetParam(col, pd.bounded())
			}
		}
		if err := t.Add(f); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Read loads a table from a YAML file.
func Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("feature: read %s: %w", path, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Bytes serializes the table, metadata included, so that a Parse round trip
// reproduces identical bounded-parameter semantics.
func (t *Table) Bytes() ([]byte, error) {
	doc := tableDoc{
		Redshift:   t.Redshift,
		Instrument: t.Instrument,
		FluxUnit:   t.Flux.String(),
	}
	for _, f := range t.rows {
		fd := &featureDoc{
			Name:        f.Name,
			Kind:        f.Kind.String(),
			Group:       f.Group,
			Geometry:    f.Geometry,
			Temperature: docParam(f.Temperature),
			Tau:         docParam(f.Tau),
			Power:       docParam(f.Power),
			Wavelength:  docParam(f.Wavelength),
			FWHM:        docParam(f.FWHM),
		}
		doc.Features = append(doc.Features, fd)
	}
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("feature: marshal: %w", err)
	}
	return out, nil
}

// Write saves the table to a YAML file.
func (t *Table) Write(path string) error {
	data, err := t.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("feature: write %s: %w", path, err)
	}
	return nil
}
