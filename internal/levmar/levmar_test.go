package levmar

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolveLinearLeastSquares(t *testing.T) {
	// Fit y = a + b*t to exact data; the minimum is the exact solution.
	ts := []float64{0, 1, 2, 3, 4}
	ys := make([]float64, len(ts))
	for i, v := range ts {
		ys[i] = 1.5 + 0.25*v
	}
	p := Problem{
		NumResiduals: len(ts),
		Residuals: func(x, dst []float64) {
			for i, v := range ts {
				dst[i] = x[0] + x[1]*v - ys[i]
			}
		},
	}
	res, err := Solve(p, []float64{0, 0}, Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusConverged {
		t.Fatalf("status = %v", res.Status)
	}
	if math.Abs(res.X[0]-1.5) > 1e-6 || math.Abs(res.X[1]-0.25) > 1e-6 {
		t.Fatalf("solution %v, want [1.5 0.25]", res.X)
	}
}

func TestSolveExponentialDecay(t *testing.T) {
	// Nonlinear two-parameter fit from a deliberately poor start.
	truthA, truthK := 3.0, 0.7
	ts := make([]float64, 40)
	ys := make([]float64, 40)
	for i := range ts {
		ts[i] = float64(i) * 0.25
		ys[i] = truthA * math.Exp(-truthK*ts[i])
	}
	p := Problem{
		NumResiduals: len(ts),
		Residuals: func(x, dst []float64) {
			for i := range ts {
				dst[i] = x[0]*math.Exp(-x[1]*ts[i]) - ys[i]
			}
		},
		Lower: []float64{0, 0},
		Upper: []float64{math.Inf(1), math.Inf(1)},
	}
	res, err := Solve(p, []float64{1, 0.2}, Settings{MaxIterations: 200})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusConverged {
		t.Fatalf("status = %v after %d iterations", res.Status, res.Iterations)
	}
	if math.Abs(res.X[0]-truthA)/truthA > 1e-5 || math.Abs(res.X[1]-truthK)/truthK > 1e-5 {
		t.Fatalf("solution %v, want [%g %g]", res.X, truthA, truthK)
	}
}

func TestSolveDisparateParameterScales(t *testing.T) {
	// One parameter scales a term of order 1e10, the other a term of
	// order 1e-5, so the diagonal of the normal matrix spans roughly
	// thirty orders of magnitude. The factorization must stay usable
	// and both parameters must still be recovered.
	truthA, truthB := 2.0, 3.0
	ts := make([]float64, 30)
	ys := make([]float64, 30)
	model := func(a, b, t float64) float64 {
		return a*1e10*math.Exp(-t) + b*1e-5*t*t
	}
	for i := range ts {
		ts[i] = 0.2 * float64(i)
		ys[i] = model(truthA, truthB, ts[i])
	}
	p := Problem{
		NumResiduals: len(ts),
		Residuals: func(x, dst []float64) {
			for i, v := range ts {
				dst[i] = model(x[0], x[1], v) - ys[i]
			}
		},
		Jacobian: func(_ []float64, jac *mat.Dense) {
			for i, v := range ts {
				jac.Set(i, 0, 1e10*math.Exp(-v))
				jac.Set(i, 1, 1e-5*v*v)
			}
		},
	}
	res, err := Solve(p, []float64{1, 1}, Settings{MaxIterations: 100})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusConverged {
		t.Fatalf("status = %v after %d iterations", res.Status, res.Iterations)
	}
	if math.Abs(res.X[0]-truthA)/truthA > 1e-4 {
		t.Fatalf("large-scale parameter %g, want %g", res.X[0], truthA)
	}
	if math.Abs(res.X[1]-truthB)/truthB > 1e-4 {
		t.Fatalf("small-scale parameter %g, want %g", res.X[1], truthB)
	}
}

func TestSolveRespectsBounds(t *testing.T) {
	// Unconstrained minimum at x = -2, box restricted to [0, 10].
	p := Problem{
		NumResiduals: 1,
		Residuals: func(x, dst []float64) {
			dst[0] = x[0] + 2
		},
		Lower: []float64{0},
		Upper: []float64{10},
	}
	res, err := Solve(p, []float64{5}, Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if res.X[0] < 0 {
		t.Fatalf("bound violated: %v", res.X)
	}
	if res.X[0] > 1e-9 {
		t.Fatalf("expected solution at lower bound, got %v", res.X)
	}
}

func TestSolveNoFreeParameters(t *testing.T) {
	p := Problem{
		NumResiduals: 3,
		Residuals: func(_, dst []float64) {
			dst[0], dst[1], dst[2] = 1, 2, 3
		},
	}
	res, err := Solve(p, nil, Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusNoFreeParameters {
		t.Fatalf("status = %v", res.Status)
	}
	if math.Abs(res.Cost-7) > 1e-12 {
		t.Fatalf("cost = %g, want 7", res.Cost)
	}
}

func TestSolveMaxIterations(t *testing.T) {
	// Rosenbrock-style residuals converge slowly; a tiny budget must be
	// reported, not silently accepted.
	p := Problem{
		NumResiduals: 2,
		Residuals: func(x, dst []float64) {
			dst[0] = 10 * (x[1] - x[0]*x[0])
			dst[1] = 1 - x[0]
		},
	}
	res, err := Solve(p, []float64{-1.2, 1}, Settings{MaxIterations: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status == StatusConverged {
		t.Fatalf("unexpected convergence in %d iterations", res.Iterations)
	}
}
