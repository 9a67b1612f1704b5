package density

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorego/core/parallel"
	"github.com/YuminosukeSato/scorego/pkg/errors"
	"github.com/YuminosukeSato/scorego/pkg/log"
)

func (n *Nystrom) requireFitted(method string) error {
	if !n.state.IsFitted() {
		return errors.NewNotFittedError("Nystrom", method)
	}
	return nil
}

func (n *Nystrom) checkQueryIndex(method string, i int) error {
	if i < 0 || i >= n.NumQuery() {
		return errors.NewValueError("Nystrom."+method, "query point index out of range")
	}
	return nil
}

// LogPDF returns the unnormalized log-density at query point i.
func (n *Nystrom) LogPDF(i int) (float64, error) {
	if err := n.requireFitted("LogPDF"); err != nil {
		return 0, err
	}
	if err := n.checkQueryIndex("LogPDF", i); err != nil {
		return 0, err
	}
	return n.logPDFAt(n.queryCols[i]), nil
}

// LogPDFs evaluates the unnormalized log-density at every bound query
// point.
func (n *Nystrom) LogPDFs() (*mat.VecDense, error) {
	if err := n.requireFitted("LogPDFs"); err != nil {
		return nil, err
	}
	nq := n.NumQuery()
	out := mat.NewVecDense(nq, nil)
	parallel.ParallelizeWithThreshold(nq, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.SetVec(i, n.logPDFAt(n.queryCols[i]))
		}
	})
	return out, nil
}

func (n *Nystrom) logPDFAt(x []float64) float64 {
	d := n.NumDimensions()
	sum := 0.0
	for l, idx := range n.basisInds {
		a, i := IdxToAI(idx, d)
		sum += n.beta.AtVec(l) * n.kern.DxComponent(n.basisCols[a], x, i)
	}
	return sum
}

// Grad returns the gradient of the log-density at query point i.
func (n *Nystrom) Grad(i int) (*mat.VecDense, error) {
	if err := n.requireFitted("Grad"); err != nil {
		return nil, err
	}
	if err := n.checkQueryIndex("Grad", i); err != nil {
		return nil, err
	}
	return mat.NewVecDense(n.NumDimensions(), n.gradAt(n.queryCols[i])), nil
}

// gradAt accumulates, for each basis component (a, i), the second
// derivative row of the kernel at (a, x) against the β entries of the SAME
// basis point a. Dimensions of a not selected into the basis contribute
// nothing, exactly as if β carried zeros there.
func (n *Nystrom) gradAt(x []float64) []float64 {
	d := n.NumDimensions()
	g := make([]float64, d)
	for _, idx := range n.basisInds {
		a, i := IdxToAI(idx, d)
		row := n.kern.DxIDxJComponent(n.basisCols[a], x, i)
		for k, idxK := range n.basisInds {
			b, j := IdxToAI(idxK, d)
			if b != a {
				continue
			}
			g[i] -= row[j] * n.beta.AtVec(k)
		}
	}
	return g
}

// betaForBasisPoint mimics the β sub-vector of whole point a: selected
// dimensions carry their coefficient, the rest are zero.
func (n *Nystrom) betaForBasisPoint(a int) []float64 {
	d := n.NumDimensions()
	betaA := make([]float64, d)
	for k, idx := range n.basisInds {
		b, j := IdxToAI(idx, d)
		if b != a {
			continue
		}
		betaA[j] = n.beta.AtVec(k)
	}
	return betaA
}

// Hessian returns the D × D Hessian of the log-density at query point i.
func (n *Nystrom) Hessian(i int) (*mat.Dense, error) {
	if err := n.requireFitted("Hessian"); err != nil {
		return nil, err
	}
	if err := n.checkQueryIndex("Hessian", i); err != nil {
		return nil, err
	}

	d := n.NumDimensions()
	x := n.queryCols[i]
	hess := mat.NewDense(d, d, nil)
	for _, idx := range n.basisInds {
		a, row := IdxToAI(idx, d)
		betaA := n.betaForBasisPoint(a)
		for _, idxK := range n.basisInds {
			b, col := IdxToAI(idxK, d)
			if b != a {
				continue
			}
			// The contraction already carries the zero components of betaA.
			v := n.kern.DxIDxJDxKDotVecComponent(n.basisCols[a], x, betaA, row, col)
			hess.Set(row, col, hess.At(row, col)+v)
		}
	}
	return hess, nil
}

// HessianDiag returns the diagonal of the Hessian at query point i without
// assembling the full matrix. It agrees with Hessian's diagonal for every
// basis configuration.
func (n *Nystrom) HessianDiag(i int) (*mat.VecDense, error) {
	if err := n.requireFitted("HessianDiag"); err != nil {
		return nil, err
	}
	if err := n.checkQueryIndex("HessianDiag", i); err != nil {
		return nil, err
	}
	return mat.NewVecDense(n.NumDimensions(), n.hessianDiagAt(n.queryCols[i])), nil
}

func (n *Nystrom) hessianDiagAt(x []float64) []float64 {
	d := n.NumDimensions()
	diag := make([]float64, d)
	for _, idx := range n.basisInds {
		a, i := IdxToAI(idx, d)
		betaA := n.betaForBasisPoint(a)
		diag[i] += n.kern.DxIDxJDxKDotVecComponent(n.basisCols[a], x, betaA, i, i)
	}
	return diag
}

// Score returns the score-matching objective over the bound query set:
// the mean over points of Σ_i [hessian_diag_i + ½·grad_i²]. Lower is a
// better fit of the model's score to the data's.
func (n *Nystrom) Score() (float64, error) {
	if err := n.requireFitted("Score"); err != nil {
		return 0, err
	}

	nq := n.NumQuery()
	contrib := make([]float64, nq)
	parallel.ParallelizeWithThreshold(nq, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			x := n.queryCols[i]
			g := n.gradAt(x)
			contrib[i] = floats.Sum(n.hessianDiagAt(x)) + 0.5*floats.Dot(g, g)
		}
	})

	// Sequential reduction keeps the accumulation order fixed.
	score := floats.Sum(contrib) / float64(nq)

	n.logger.Debug("score evaluated",
		log.OperationKey, "score",
		log.PointsKey, nq,
		log.ScoreKey, score,
	)
	return score, nil
}
