package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular is reported when a matrix cannot be solved because it is
// singular or too ill-conditioned. A well-formed network never produces it,
// so callers treat it as a fatal configuration error.
var ErrSingular = errors.New("singular matrix")

// ErrNotConverged is reported when the iterative solver exhausts its
// iteration budget.
var ErrNotConverged = errors.New("solver did not converge")

// maxCondition is the largest condition number accepted from the dense
// factorization.
const maxCondition = 1e14

// Method selects the algorithm used by a Solver.
type Method int

// The solving methods.
const (
	// MethodAuto uses dense LU for small systems and CG otherwise.
	MethodAuto Method = iota
	// MethodDenseLU factorizes once and reuses the factors.
	MethodDenseLU
	// MethodCG runs Jacobi-preconditioned conjugate gradient. The matrix must
	// be symmetric positive definite, which conductance matrices with at
	// least one grounded node are.
	MethodCG
)

func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodDenseLU:
		return "dense-lu"
	case MethodCG:
		return "cg"
	}

	return fmt.Sprintf("Method(%d)", int(m))
}

// Options configures a Solver.
type Options struct {
	Method Method

	// DenseLimit is the largest system MethodAuto solves with dense LU.
	DenseLimit int

	// Tolerance is the relative residual at which CG stops.
	Tolerance float64

	// MaxIterations bounds CG. Zero means 10 times the system size.
	MaxIterations int
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{
		Method:     MethodAuto,
		DenseLimit: 1500,
		Tolerance:  1e-10,
	}
}

// A Solver solves A x = b for a fixed A and many right-hand sides.
type Solver struct {
	a       *Sparse
	method  Method
	opts    Options
	lu      *mat.LU
	invDiag []float64
}

// NewSolver prepares a solver for a. Dense LU factorizes immediately so that
// a singular matrix is reported here rather than on the first solve.
func NewSolver(a *Sparse, opts Options) (*Solver, error) {
	s := &Solver{a: a, opts: opts, method: opts.Method}

	if s.method == MethodAuto {
		s.method = MethodCG
		if a.N() <= opts.DenseLimit {
			s.method = MethodDenseLU
		}
	}

	if err := s.checkDiagonal(); err != nil {
		return nil, err
	}

	switch s.method {
	case MethodDenseLU:
		if err := s.factorize(); err != nil {
			return nil, err
		}
	case MethodCG:
		s.invDiag = a.Diagonal()
		for i, d := range s.invDiag {
			s.invDiag[i] = 1 / d
		}
	default:
		panic(fmt.Sprintf("unknown method %s", s.method))
	}

	return s, nil
}

// Method returns the algorithm that the solver actually uses.
func (s *Solver) Method() Method {
	return s.method
}

func (s *Solver) checkDiagonal() error {
	for i, d := range s.a.Diagonal() {
		if d <= 0 || math.IsNaN(d) {
			return fmt.Errorf("%w: row %d has diagonal %g", ErrSingular, i, d)
		}
	}

	return nil
}

func (s *Solver) factorize() error {
	s.lu = new(mat.LU)
	s.lu.Factorize(s.a.Dense())

	cond := s.lu.Cond()
	if math.IsInf(cond, 0) || math.IsNaN(cond) || cond > maxCondition {
		return fmt.Errorf("%w: condition number %g", ErrSingular, cond)
	}

	return nil
}

// Solve returns x so that A x = b.
func (s *Solver) Solve(b []float64) ([]float64, error) {
	if len(b) != s.a.N() {
		panic(fmt.Sprintf("right-hand side has %d entries, expected %d",
			len(b), s.a.N()))
	}

	if s.method == MethodDenseLU {
		return s.solveLU(b)
	}

	return s.solveCG(b)
}

func (s *Solver) solveLU(b []float64) ([]float64, error) {
	rhs := mat.NewVecDense(len(b), append([]float64(nil), b...))
	x := mat.NewVecDense(len(b), nil)

	err := s.lu.SolveVecTo(x, false, rhs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	return x.RawVector().Data, nil
}

func (s *Solver) solveCG(b []float64) ([]float64, error) {
	n := len(b)
	x := make([]float64, n)

	bNorm := floats.Norm(b, 2)
	if bNorm == 0 {
		return x, nil
	}

	maxIter := s.opts.MaxIterations
	if maxIter == 0 {
		maxIter = 10 * n
	}

	r := append([]float64(nil), b...)
	z := floats.MulTo(make([]float64, n), s.invDiag, r)
	p := append([]float64(nil), z...)
	ap := make([]float64, n)
	rz := floats.Dot(r, z)

	for iter := 0; iter < maxIter; iter++ {
		s.a.MulVec(ap, p)

		pap := floats.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			return nil, fmt.Errorf("%w: matrix is not positive definite",
				ErrSingular)
		}

		alpha := rz / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)

		if floats.Norm(r, 2) <= s.opts.Tolerance*bNorm {
			return x, nil
		}

		floats.MulTo(z, s.invDiag, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew

		floats.AddScaledTo(p, z, beta, p)
	}

	return nil, fmt.Errorf("%w after %d iterations", ErrNotConverged, maxIter)
}
