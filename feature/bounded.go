package feature

import (
	"errors"
	"fmt"
	"math"
)

var errBoundOrder = errors.New("feature: bounds do not enclose value")

// Bounded is the universal parameter representation: a value with optional
// lower/upper bounds and a fixed flag. A fixed parameter carries no bounds;
// an infinite bound means unbounded in that direction.
type Bounded struct {
	Value float64
	Min   float64
	Max   float64
	Fixed bool
}

// FixedAt returns a fixed parameter at v.
func FixedAt(v float64) Bounded {
	return Bounded{Value: v, Fixed: true}
}

// Free returns a free parameter with no bounds.
func Free(v float64) Bounded {
	return Bounded{Value: v, Min: math.Inf(-1), Max: math.Inf(1)}
}

// NonNegative returns a free parameter bounded below by zero.
func NonNegative(v float64) Bounded {
	return Bounded{Value: v, Min: 0, Max: math.Inf(1)}
}

// Between returns a free parameter constrained to [lo, hi].
func Between(v, lo, hi float64) Bounded {
	return Bounded{Value: v, Min: lo, Max: hi}
}

// Validate checks the bounded-parameter invariant: a free parameter must lie
// within its bounds. Fixed parameters are always valid.
func (b Bounded) Validate() error {
	if b.Fixed {
		return nil
	}
	if math.IsNaN(b.Value) || b.Min > b.Value || b.Value > b.Max {
		return fmt.Errorf("%w: %g not in [%g, %g]", errBoundOrder, b.Value, b.Min, b.Max)
	}
	return nil
}

// WithValue returns a copy of b with the value replaced, keeping bounds and
// fixedness.
func (b Bounded) WithValue(v float64) Bounded {
	b.Value = v
	return b
}

func (b Bounded) String() string {
	if b.Fixed {
		return fmt.Sprintf("%.4g (fixed)", b.Value)
	}
	return fmt.Sprintf("%.4g (%.4g, %.4g)", b.Value, b.Min, b.Max)
}
