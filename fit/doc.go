// Package fit compiles registered physical components into one evaluable
// composite spectral model and solves for its free parameters by weighted
// nonlinear least squares.
//
// A [Fitter] is a short-lived session: register one component per feature,
// call [Fitter.FinalizeModel], then [Fitter.Fit], and read the optimized
// parameters back per component with [Fitter.GetResult]. Components are
// either additive (continua, lines, dust features) or multiplicative
// (attenuation, absorption); the composite model is the sum of the additive
// components multiplied by the product of the multiplicative ones.
//
// Sessions hold no state worth keeping: orchestration rebuilds a fresh
// Fitter for every fit call, since range exclusion and instrument overrides
// may change between calls.
package fit
