// Package levmar implements a box-bounded Levenberg-Marquardt solver for
// nonlinear least squares, used as the fitting backend of the fit package.
//
// The Jacobian is estimated by forward differences and each step solves the
// damped normal equations via a Cholesky factorization. The normal matrix is
// factorized in correlation form, rows and columns divided by the square
// roots of its diagonal, so that parameters whose sensitivities differ by
// many orders of magnitude do not ruin the conditioning of the solve. Bound
// constraints are enforced by projecting trial points into the box.
package levmar

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrDimension   = errors.New("levmar: dimension mismatch")
	ErrNoResiduals = errors.New("levmar: problem has no residuals")
)

// Problem describes a nonlinear least-squares problem. Residuals evaluates
// the residual vector at x into dst (length NumResiduals). Lower and Upper
// are optional elementwise bounds on x; nil means unbounded.
//
// Jacobian, when non-nil, evaluates the NumResiduals x len(x) Jacobian of
// the residuals at x into jac. When nil, a forward-difference approximation
// of Residuals is used; callers whose residuals mix terms of very different
// magnitude should supply a Jacobian, since differencing the full residual
// loses the contribution of the small terms to rounding.
type Problem struct {
	Residuals    func(x, dst []float64)
	Jacobian     func(x []float64, jac *mat.Dense)
	NumResiduals int
	Lower        []float64
	Upper        []float64
}

// Settings controls the solver. The zero value selects defaults.
type Settings struct {
	MaxIterations  int     // default 300
	GradTol        float64 // default 1e-10, infinity norm of the gradient
	StepTol        float64 // default 1e-12, relative step size
	CostTol        float64 // default 1e-12, relative cost reduction
	InitialDamping float64 // default 1e-3
}

func (s Settings) withDefaults() Settings {
	if s.MaxIterations <= 0 {
		s.MaxIterations = 300
	}
	if s.GradTol <= 0 {
		s.GradTol = 1e-10
	}
	if s.StepTol <= 0 {
		s.StepTol = 1e-12
	}
	if s.CostTol <= 0 {
		s.CostTol = 1e-12
	}
	if s.InitialDamping <= 0 {
		s.InitialDamping = 1e-3
	}
	return s
}

// Status reports how the solver terminated.
type Status int

const (
	StatusConverged Status = iota
	StatusMaxIterations
	StatusStalled
	StatusNoFreeParameters
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusMaxIterations:
		return "maximum iterations reached without convergence"
	case StatusStalled:
		return "stalled: no damping value produced a downhill step"
	case StatusNoFreeParameters:
		return "nothing to optimize: no free parameters"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result holds the solver outcome. X is the best parameter vector found and
// Cost the corresponding half sum of squared residuals.
type Result struct {
	X          []float64
	Cost       float64
	Iterations int
	Status     Status
}

const (
	maxDamping = 1e15
	minDamping = 1e-12
	// fdStep scales the forward-difference step, sqrt of the float64
	// machine epsilon.
	fdStep = 1.4901161193847656e-08
)

// Solve runs the Levenberg-Marquardt iteration from x0.
func Solve(p Problem, x0 []float64, s Settings) (Result, error) {
	n := len(x0)
	m := p.NumResiduals
	if m <= 0 {
		return Result{}, ErrNoResiduals
	}
	if (p.Lower != nil && len(p.Lower) != n) || (p.Upper != nil && len(p.Upper) != n) {
		return Result{}, fmt.Errorf("%w: bounds length vs %d parameters", ErrDimension, n)
	}
	s = s.withDefaults()

	x := make([]float64, n)
	copy(x, x0)
	clampInPlace(x, p.Lower, p.Upper)

	r := make([]float64, m)
	p.Residuals(x, r)
	cost := 0.5 * floats.Dot(r, r)

	if n == 0 {
		return Result{X: x, Cost: cost, Status: StatusNoFreeParameters}, nil
	}

	jac := mat.NewDense(m, n, nil)
	sym := mat.NewSymDense(n, nil)
	damped := mat.NewSymDense(n, nil)
	grad := mat.NewVecDense(n, nil)
	rhs := mat.NewVecDense(n, nil)
	delta := mat.NewVecDense(n, nil)
	scale := make([]float64, n)
	xTrial := make([]float64, n)
	rTrial := make([]float64, m)

	lambda := s.InitialDamping
	iter := 0
	for iter < s.MaxIterations {
		iter++

		if p.Jacobian != nil {
			p.Jacobian(x, jac)
		} else {
			fdJacobian(jac, p, x, r, rTrial)
		}
		sym.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(m, r))

		if mat.Norm(grad, math.Inf(1)) < s.GradTol {
			return Result{X: x, Cost: cost, Iterations: iter, Status: StatusConverged}, nil
		}

		for i := range scale {
			d := math.Sqrt(sym.At(i, i))
			if d == 0 {
				d = 1
			}
			scale[i] = d
		}

		accepted := false
		for lambda <= maxDamping {
			dampedNormal(damped, sym, scale, lambda)
			var chol mat.Cholesky
			if !chol.Factorize(damped) {
				lambda *= 10
				continue
			}
			for i := 0; i < n; i++ {
				rhs.SetVec(i, -grad.AtVec(i)/scale[i])
			}
			if err := chol.SolveVecTo(delta, rhs); err != nil {
				// A Condition error still carries a computed solution;
				// let the cost test decide whether the step is usable.
				if _, ok := err.(mat.Condition); !ok {
					lambda *= 10
					continue
				}
			}

			for i := range xTrial {
				xTrial[i] = x[i] + delta.AtVec(i)/scale[i]
			}
			clampInPlace(xTrial, p.Lower, p.Upper)

			p.Residuals(xTrial, rTrial)
			costTrial := 0.5 * floats.Dot(rTrial, rTrial)
			step := stepNorm(x, xTrial)
			if costTrial < cost {
				reduction := cost - costTrial
				copy(x, xTrial)
				copy(r, rTrial)
				cost = costTrial
				lambda = math.Max(lambda*0.3, minDamping)
				accepted = true

				if step < s.StepTol*(floats.Norm(x, 2)+s.StepTol) ||
					reduction < s.CostTol*math.Max(cost, s.CostTol) {
					return Result{X: x, Cost: cost, Iterations: iter, Status: StatusConverged}, nil
				}
				break
			}
			// An uphill trial whose step already sits below the step
			// tolerance means the iterate has reached the rounding floor
			// of the residuals; more damping cannot produce a usable
			// step, so report convergence at the current point.
			if step < s.StepTol*(floats.Norm(x, 2)+s.StepTol) {
				return Result{X: x, Cost: cost, Iterations: iter, Status: StatusConverged}, nil
			}
			lambda *= 10
		}
		if !accepted {
			return Result{X: x, Cost: cost, Iterations: iter, Status: StatusStalled}, nil
		}
	}
	return Result{X: x, Cost: cost, Iterations: iter, Status: StatusMaxIterations}, nil
}

// fdJacobian fills jac with forward differences of the residuals at x. r
// holds the residuals at x; scratch is reused for perturbed evaluations.
// Steps that would leave the box are taken backward instead.
func fdJacobian(jac *mat.Dense, p Problem, x, r, scratch []float64) {
	for j := range x {
		h := fdStep * math.Max(math.Abs(x[j]), 1)
		if p.Upper != nil && x[j]+h > p.Upper[j] {
			h = -h
		}
		old := x[j]
		x[j] = old + h
		p.Residuals(x, scratch)
		x[j] = old
		inv := 1 / h
		for i := range scratch {
			jac.Set(i, j, (scratch[i]-r[i])*inv)
		}
	}
}

// dampedNormal writes the normal matrix in correlation form into dst: row
// and column i divided by scale[i], which puts 1 on the diagonal, inflated
// by lambda. The scaled system stays factorizable even when the raw diagonal
// spans twenty orders of magnitude; steps solved in the scaled variables are
// mapped back by dividing by scale. Parameters the residuals are locally
// insensitive to (a zero diagonal, hence scale 1) get a pure damping entry
// and a zero gradient, so their step component is zero.
func dampedNormal(dst, sym *mat.SymDense, scale []float64, lambda float64) {
	n := sym.SymmetricDim()
	for i := 0; i < n; i++ {
		dst.SetSym(i, i, 1+lambda)
		for j := i + 1; j < n; j++ {
			dst.SetSym(i, j, sym.At(i, j)/(scale[i]*scale[j]))
		}
	}
}

func clampInPlace(x, lower, upper []float64) {
	for i := range x {
		if lower != nil && x[i] < lower[i] {
			x[i] = lower[i]
		}
		if upper != nil && x[i] > upper[i] {
			x[i] = upper[i]
		}
	}
}

func stepNorm(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := b[i] - a[i]
		s += d * d
	}
	return math.Sqrt(s)
}
