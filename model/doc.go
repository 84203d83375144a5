// Package model drives a spectral decomposition fit from a feature table:
// it maps table rows to fitter components, applies instrument-driven
// exclusion and line-width overrides, produces initial guesses from the
// observed spectrum, runs the fit and writes the results back into the
// table.
//
// Rows whose wavelength falls outside the instrument's segments are left out
// of the fit but keep their stored values, so a later fit against a
// wider-range spectrum picks them up again. The fitter session is rebuilt
// from the table on every call; the table is the only persistent state.
package model
