package density

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorego/core/parallel"
	"github.com/YuminosukeSato/scorego/pkg/errors"
)

// Assembly loops below are parallelized over output columns (or entries for
// the system vector). Each iteration reads only shared immutable state and
// writes a disjoint slice of the output, so the result is independent of
// scheduling.

// parallelThreshold keeps tiny systems on the sequential path.
const parallelThreshold = 64

// ComputeGmm assembles the S × S basis Gram matrix. Entry (k, l) is the
// kernel's mixed second derivative between the basis points named by
// components k = (b, j) and l = (a, i), restricted to those dimensions.
// The result is symmetric.
func (n *Nystrom) ComputeGmm() *mat.Dense {
	d := n.NumDimensions()
	s := n.SystemSize()
	gmm := mat.NewDense(s, s, nil)

	parallel.ParallelizeWithThreshold(s, parallelThreshold, func(start, end int) {
		for l := start; l < end; l++ {
			a, i := IdxToAI(n.basisInds[l], d)
			xa := n.basisCols[a]
			for k := 0; k < s; k++ {
				b, j := IdxToAI(n.basisInds[k], d)
				gmm.Set(k, l, n.kern.DxDyComponent(n.basisCols[b], xa, j, i))
			}
		}
	})
	return gmm
}

// ComputeGmn assembles the S × (N·D) basis-vs-data Gram matrix. Columns
// range over the flat (point, dimension) space of the full training data.
func (n *Nystrom) ComputeGmn() *mat.Dense {
	d := n.NumDimensions()
	s := n.SystemSize()
	nd := n.NumData() * d
	gmn := mat.NewDense(s, nd, nil)

	parallel.ParallelizeWithThreshold(nd, parallelThreshold, func(start, end int) {
		for l := start; l < end; l++ {
			a, i := IdxToAI(l, d)
			xa := n.dataCols[a]
			for k := 0; k < s; k++ {
				b, j := IdxToAI(n.basisInds[k], d)
				gmn.Set(k, l, n.kern.DxDyComponent(n.basisCols[b], xa, j, i))
			}
		}
	})
	return gmn
}

// ComputeH assembles the score-matching right-hand side: for each basis
// component (a, i), the kernel's third derivative summed over every data
// point and every dimension, normalized by the data count.
//
// The original formulation restricted the inner sum to dimensions carrying a
// basis component of the matching data point; that variant is NOT
// numerically equivalent and does not reproduce the whole-point solution, so
// the full sum is used for every basis configuration.
func (n *Nystrom) ComputeH() *mat.VecDense {
	d := n.NumDimensions()
	s := n.SystemSize()
	nData := n.NumData()
	h := mat.NewVecDense(s, nil)

	parallel.ParallelizeWithThreshold(s, parallelThreshold, func(start, end int) {
		for k := start; k < end; k++ {
			a, i := IdxToAI(n.basisInds[k], d)
			xa := n.basisCols[a]
			sum := 0.0
			for b := 0; b < nData; b++ {
				xb := n.dataCols[b]
				for j := 0; j < d; j++ {
					sum += n.kern.DxDyDyComponent(xa, xb, i, j)
				}
			}
			h.SetVec(k, sum/float64(nData))
		}
	})
	return h
}

// SubsampleGmmFromGmn derives G_mm by column-subsampling an already
// assembled G_mn. Only valid when the basis is the training data itself
// (no explicit basis and no column subsampling), because only then do basis
// component indices address G_mn columns directly.
func (n *Nystrom) SubsampleGmmFromGmn(gmn *mat.Dense) (*mat.Dense, error) {
	if !n.basisIsData {
		return nil, errors.NewInvalidConfigurationError("basis", "basis is not the training data; assemble G_mm directly", nil)
	}
	s := n.SystemSize()
	gmm := mat.NewDense(s, s, nil)
	for l := 0; l < s; l++ {
		for k := 0; k < s; k++ {
			gmm.Set(k, l, gmn.At(k, n.basisInds[l]))
		}
	}
	return gmm, nil
}
