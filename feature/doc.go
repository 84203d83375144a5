// Package feature holds the persistent data model of a spectral
// decomposition: a named, typed table of physical components and their
// bounded parameters.
//
// Every parameter travels as a [Bounded] value (value, bounds, fixed flag)
// rather than a bare float. A [Table] is loaded from a declarative YAML
// science pack or from a previously saved fit, edited in place by the guess
// and fit operations of the model package, and written back out with
// identical bounded-parameter semantics: a parameter whose bounds are absent
// on disk is fixed, an explicit .inf bound is unbounded in that direction.
package feature
