package density

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorego/pkg/errors"
	"github.com/YuminosukeSato/scorego/pkg/log"
)

// PinvSelfAdjoint computes the Moore-Penrose pseudo-inverse of a symmetric
// matrix through its eigen-decomposition: eigenvalues above a numerical
// threshold are inverted, the rest treated as exactly zero. The returned
// matrix is symmetric and satisfies S·P·S ≈ S even when S is
// rank-deficient.
func PinvSelfAdjoint(s *mat.SymDense) (*mat.SymDense, error) {
	n := s.SymmetricDim()

	var es mat.EigenSym
	if ok := es.Factorize(s, true); !ok {
		return nil, errors.NewModelError("density.PinvSelfAdjoint", "eigendecomposition failed", errors.ErrSingularMatrix)
	}
	vals := es.Values(nil)
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	maxAbs := 0.0
	for _, w := range vals {
		if a := math.Abs(w); a > maxAbs {
			maxAbs = a
		}
	}
	// Same rank cutoff convention as numpy.linalg.pinv.
	tol := float64(n) * eps * maxAbs

	inv := make([]float64, n)
	for i, w := range vals {
		if math.Abs(w) > tol {
			inv[i] = 1.0 / w
		}
	}

	// P = V · diag(inv) · Vᵀ, filled from the upper triangle so the result
	// is symmetric by construction.
	scaled := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			scaled.Set(i, j, vecs.At(i, j)*inv[j])
		}
	}
	var p mat.Dense
	p.Mul(scaled, vecs.T())

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, p.At(i, j))
		}
	}
	return out, nil
}

const eps = 2.220446049250313e-16

// ComputeSystemMatrix assembles the regularized system matrix
//
//	A = λ·G_mm + G_mn·G_mnᵀ/N
//
// with the optional second-order ridge λ₂ added to the diagonal.
func (n *Nystrom) ComputeSystemMatrix() *mat.Dense {
	s := n.SystemSize()
	gmm := n.ComputeGmm()
	gmn := n.ComputeGmn()

	var a mat.Dense
	a.Mul(gmn, gmn.T())
	a.Scale(1.0/float64(n.NumData()), &a)

	var reg mat.Dense
	reg.Scale(n.lambda, gmm)
	a.Add(&a, &reg)

	if n.lambdaL2 > 0 {
		for i := 0; i < s; i++ {
			a.Set(i, i, a.At(i, i)+n.lambdaL2)
		}
	}
	return &a
}

// ComputeSystemVector assembles the right-hand side of the score-matching
// system. It is the normalized third-derivative sum from ComputeH.
func (n *Nystrom) ComputeSystemVector() *mat.VecDense {
	return n.ComputeH()
}

// Fit solves the regularized score-matching system for the coefficient
// vector β = -pinv(A)·h and caches it. Fitting is synchronous and
// deterministic: repeated calls with unchanged inputs produce identical β.
func (n *Nystrom) Fit() error {
	started := time.Now()

	a := n.ComputeSystemMatrix()
	h := n.ComputeSystemVector()

	s := n.SystemSize()
	sym := mat.NewSymDense(s, nil)
	for i := 0; i < s; i++ {
		for j := i; j < s; j++ {
			sym.SetSym(i, j, a.At(i, j))
		}
	}

	pinv, err := PinvSelfAdjoint(sym)
	if err != nil {
		return errors.Wrap(err, "Nystrom.Fit")
	}

	beta := mat.NewVecDense(s, nil)
	beta.MulVec(pinv, h)
	beta.ScaleVec(-1, beta)

	n.beta = beta
	n.state.SetFitted()

	n.logger.Info("fit complete",
		log.ModelNameKey, "Nystrom",
		log.OperationKey, "fit",
		log.DimensionsKey, n.NumDimensions(),
		log.PointsKey, n.NumData(),
		log.SystemSizeKey, s,
		log.LambdaKey, n.lambda,
		log.LambdaL2Key, n.lambdaL2,
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)
	return nil
}
