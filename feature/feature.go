package feature

import "fmt"

// Feature is one row of the table: a named physical component with the
// parameter columns its kind calls for. Unused columns are nil, not zero.
type Feature struct {
	Name     string
	Kind     Kind
	Group    string
	Geometry string // attenuation only

	Temperature *Bounded
	Tau         *Bounded
	Power       *Bounded
	Wavelength  *Bounded
	FWHM        *Bounded
}

// Param returns the bounded parameter stored in the given column, or nil if
// the column is absent on this row.
func (f *Feature) Param(c Column) *Bounded {
	switch c {
	case ColTemperature:
		return f.Temperature
	case ColTau:
		return f.Tau
	case ColPower:
		return f.Power
	case ColWavelength:
		return f.Wavelength
	case ColFWHM:
		return f.FWHM
	}
	return nil
}

// SetParam stores b in the given column.
func (f *Feature) SetParam(c Column, b Bounded) {
	v := new(Bounded)
	*v = b
	switch c {
	case ColTemperature:
		f.Temperature = v
	case ColTau:
		f.Tau = v
	case ColPower:
		f.Power = v
	case ColWavelength:
		f.Wavelength = v
	case ColFWHM:
		f.FWHM = v
	}
}

// Validate checks that exactly the columns required by the kind are
// populated and that each holds a valid bounded parameter.
func (f *Feature) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("feature: row of kind %s has no name", f.Kind)
	}
	required := f.Kind.Columns()
	if required == nil {
		return fmt.Errorf("feature: %q: unknown kind", f.Name)
	}
	want := make(map[Column]bool, len(required))
	for _, c := range required {
		want[c] = true
		p := f.Param(c)
		if p == nil {
			return fmt.Errorf("feature: %q: missing %s", f.Name, c)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("feature %q, %s: %w", f.Name, c, err)
		}
	}
	for _, c := range []Column{ColTemperature, ColTau, ColPower, ColWavelength, ColFWHM} {
		if f.Param(c) != nil && !want[c] {
			return fmt.Errorf("feature: %q: column %s not used by kind %s", f.Name, c, f.Kind)
		}
	}
	return nil
}

// Clone returns a deep copy of the row.
func (f *Feature) Clone() *Feature {
	c := &Feature{Name: f.Name, Kind: f.Kind, Group: f.Group, Geometry: f.Geometry}
	for _, col := range []Column{ColTemperature, ColTau, ColPower, ColWavelength, ColFWHM} {
		if p := f.Param(col); p != nil {
			c.SetParam(col, *p)
		}
	}
	return c
}
