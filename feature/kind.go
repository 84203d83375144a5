package feature

import "fmt"

// Kind identifies the physical component type of a feature. The set is
// closed: every kind determines both the profile used during fitting and the
// parameter columns populated on its table row.
type Kind int

const (
	KindStarlight Kind = iota
	KindDustContinuum
	KindLine
	KindDustFeature
	KindAttenuation
	KindAbsorption
)

var kindNames = map[Kind]string{
	KindStarlight:     "starlight",
	KindDustContinuum: "dust_continuum",
	KindLine:          "line",
	KindDustFeature:   "dust_feature",
	KindAttenuation:   "attenuation",
	KindAbsorption:    "absorption",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a canonical kind name to its Kind value.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("feature: unknown kind %q", s)
}

// Column names a parameter column of the feature table.
type Column string

const (
	ColTemperature Column = "temperature"
	ColTau         Column = "tau"
	ColPower       Column = "power"
	ColWavelength  Column = "wavelength"
	ColFWHM        Column = "fwhm"
)

// Columns returns the parameter columns populated for the kind, in canonical
// order. Columns not listed here are absent on rows of this kind.
func (k Kind) Columns() []Column {
	switch k {
	case KindStarlight, KindDustContinuum:
		return []Column{ColTemperature, ColTau}
	case KindLine, KindDustFeature:
		return []Column{ColPower, ColWavelength, ColFWHM}
	case KindAttenuation:
		return []Column{ColTau}
	case KindAbsorption:
		return []Column{ColTau, ColWavelength, ColFWHM}
	}
	return nil
}
