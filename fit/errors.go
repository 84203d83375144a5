package fit

import "errors"

var (
	// ErrNoComponents is returned by FinalizeModel when no additive
	// component was registered; a model needs at least one additive term.
	ErrNoComponents = errors.New("fit: model has no additive components")
	// ErrUnknownComponent is returned when a result is requested for a
	// name that was never registered.
	ErrUnknownComponent = errors.New("fit: unknown component")
	// ErrNotFinalized is returned when the model is queried before
	// FinalizeModel.
	ErrNotFinalized = errors.New("fit: model not finalized")
	// ErrDuplicateComponent is returned when a name is registered twice
	// within one session.
	ErrDuplicateComponent = errors.New("fit: duplicate component name")
	// ErrNoValidSamples is returned by Fit when no sample has finite
	// wavelength, flux and weight.
	ErrNoValidSamples = errors.New("fit: no finite samples to fit")
)
