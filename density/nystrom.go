package density

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scorego/core/model"
	"github.com/YuminosukeSato/scorego/density/kernel"
	"github.com/YuminosukeSato/scorego/pkg/errors"
	"github.com/YuminosukeSato/scorego/pkg/log"
)

// Nystrom estimates the gradient of an unknown log-density from samples by
// kernel score matching, with the RKHS representation restricted to a finite
// basis. The basis is either whole data points or individual
// (point, dimension) components selected through a Mask.
//
// Training data, basis, kernel and regularization are fixed at construction.
// Fit computes the coefficient vector β; evaluation methods operate on the
// bound query set, which defaults to the training data and can be swapped at
// any time with SetData without re-fitting.
//
// Concurrent Fit calls on one instance are not supported, and SetData must
// not race with in-flight evaluation calls; serialization is the caller's
// responsibility.
type Nystrom struct {
	state  *model.StateManager
	logger log.Logger

	kern kernel.Kernel // shared, read-only
	data *mat.Dense    // D × N training data, immutable once bound
	// basis is D × M. basisIsData marks that it aliases the training data
	// matrix, which enables the G_mn column-subsampling shortcut.
	basis       *mat.Dense
	basisIsData bool
	// basisInds are flat indices into the (M × D) basis component space,
	// strictly increasing, no duplicates.
	basisInds []int

	lambda   float64
	lambdaL2 float64

	beta  *mat.VecDense // fitted coefficients, nil until Fit
	query *mat.Dense    // D × NQuery evaluation data

	// Column views cached once; all hot loops read points as slices.
	dataCols  [][]float64
	basisCols [][]float64
	queryCols [][]float64
}

// Option configures a Nystrom estimator.
type Option func(*Nystrom)

// WithLambdaL2 sets the optional second-order ridge term added to the
// system matrix diagonal.
func WithLambdaL2(lambdaL2 float64) Option {
	return func(n *Nystrom) {
		n.lambdaL2 = lambdaL2
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger log.Logger) Option {
	return func(n *Nystrom) {
		n.logger = logger
	}
}

// NewNystrom creates an estimator with an explicit whole-point basis matrix
// (D × M): every dimension of every basis point is a basis component.
func NewNystrom(data, basis *mat.Dense, k kernel.Kernel, lambda float64, opts ...Option) (*Nystrom, error) {
	d, _ := data.Dims()
	db, m := basis.Dims()
	if db != d {
		return nil, errors.NewDimensionError("density.NewNystrom", d, db, 0)
	}
	return newNystrom(data, basis, false, allInds(m*d), k, lambda, opts)
}

// NewNystromFromPoints creates an estimator whose basis is the given subset
// of training points, every dimension selected.
func NewNystromFromPoints(data *mat.Dense, pointInds []int, k kernel.Kernel, lambda float64, opts ...Option) (*Nystrom, error) {
	d, nPoints := data.Dims()
	if len(pointInds) == 0 {
		return nil, errors.NewInvalidConfigurationError("pointInds", "basis point list is empty", pointInds)
	}
	for _, p := range pointInds {
		if p < 0 || p >= nPoints {
			return nil, errors.NewInvalidConfigurationError("pointInds", "basis point index out of range", p)
		}
	}
	basis := subsampleMatrixCols(pointInds, data)
	return newNystrom(data, basis, false, allInds(len(pointInds)*d), k, lambda, opts)
}

// NewNystromD creates an estimator whose basis components are the true
// entries of a mask over the training data itself. When the mask touches a
// strict subset of the points, the basis is deterministically subsampled to
// those columns; the fitted model is identical either way.
func NewNystromD(data *mat.Dense, mask *Mask, k kernel.Kernel, lambda float64, opts ...Option) (*Nystrom, error) {
	d, nPoints := data.Dims()
	md, mm := mask.Dims()
	if md != d {
		return nil, errors.NewDimensionError("density.NewNystromD", d, md, 0)
	}
	if mm != nPoints {
		return nil, errors.NewDimensionError("density.NewNystromD", nPoints, mm, 1)
	}

	inds := mask.BasisInds()
	if len(inds) == 0 {
		return nil, errors.NewInvalidConfigurationError("mask", "basis mask selects no components", nil)
	}

	basis := data
	basisIsData := true
	pointInds := basisPointInds(inds, d)
	if len(pointInds) < nPoints {
		// Drop columns no basis component touches.
		basis = subsampleMatrixCols(pointInds, data)
		basisIsData = false
		mask = mask.subsampleCols(pointInds)
		inds = mask.BasisInds()
	}

	n, err := newNystrom(data, basis, basisIsData, inds, k, lambda, opts)
	if err != nil {
		return nil, err
	}
	n.logger.Info("basis selected from mask",
		log.OperationKey, "select_basis",
		log.BasisPointsKey, len(pointInds),
		log.PointsKey, nPoints,
		log.BasisComponentsKey, len(inds),
	)
	n.warnUnusedPoints(mask)
	return n, nil
}

// NewNystromDExplicitBasis creates an estimator over an explicit basis
// matrix with a mask selecting individual components of it. Whole basis
// points the mask never touches are reported as unused; fitting proceeds.
func NewNystromDExplicitBasis(data, basis *mat.Dense, mask *Mask, k kernel.Kernel, lambda float64, opts ...Option) (*Nystrom, error) {
	d, _ := data.Dims()
	db, m := basis.Dims()
	if db != d {
		return nil, errors.NewDimensionError("density.NewNystromDExplicitBasis", d, db, 0)
	}
	md, mm := mask.Dims()
	if md != d {
		return nil, errors.NewDimensionError("density.NewNystromDExplicitBasis", d, md, 0)
	}
	if mm != m {
		return nil, errors.NewDimensionError("density.NewNystromDExplicitBasis", m, mm, 1)
	}

	inds := mask.BasisInds()
	if len(inds) == 0 {
		return nil, errors.NewInvalidConfigurationError("mask", "basis mask selects no components", nil)
	}

	n, err := newNystrom(data, basis, false, inds, k, lambda, opts)
	if err != nil {
		return nil, err
	}
	n.warnUnusedPoints(mask)
	return n, nil
}

func newNystrom(data, basis *mat.Dense, basisIsData bool, basisInds []int, k kernel.Kernel, lambda float64, opts []Option) (*Nystrom, error) {
	d, nPoints := data.Dims()
	if d == 0 || nPoints == 0 {
		return nil, errors.NewModelError("density.Nystrom", "empty training data", errors.ErrEmptyData)
	}
	if k == nil {
		return nil, errors.NewInvalidConfigurationError("kernel", "kernel must not be nil", nil)
	}
	if lambda < 0 {
		return nil, errors.NewValueError("density.Nystrom", "lambda must be non-negative")
	}

	n := &Nystrom{
		state:       model.NewStateManager(),
		logger:      log.GetLoggerWithName("density.nystrom"),
		kern:        k,
		data:        data,
		basis:       basis,
		basisIsData: basisIsData,
		basisInds:   basisInds,
		lambda:      lambda,
		query:       data,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.lambdaL2 < 0 {
		return nil, errors.NewValueError("density.Nystrom", "lambdaL2 must be non-negative")
	}

	n.dataCols = matCols(data)
	n.basisCols = matCols(basis)
	n.queryCols = n.dataCols
	n.state.SetDimensions(d, nPoints)
	return n, nil
}

// warnUnusedPoints reports basis points that contribute zero components.
// Diagnostic only; never blocks fitting.
func (n *Nystrom) warnUnusedPoints(mask *Mask) {
	d, m := mask.Dims()
	for p := 0; p < m; p++ {
		used := false
		for i := 0; i < d; i++ {
			if mask.At(i, p) {
				used = true
				break
			}
		}
		if !used {
			w := errors.NewUnusedBasisPointWarning(p)
			errors.Warn(w)
			n.logger.Warn(w.Error(), log.OperationKey, "select_basis")
		}
	}
}

func allInds(size int) []int {
	inds := make([]int, size)
	for i := range inds {
		inds[i] = i
	}
	return inds
}

func matCols(x *mat.Dense) [][]float64 {
	_, c := x.Dims()
	cols := make([][]float64, c)
	for j := 0; j < c; j++ {
		cols[j] = mat.Col(nil, j, x)
	}
	return cols
}

// NumDimensions returns the dimensionality D shared by data, basis and
// query matrices.
func (n *Nystrom) NumDimensions() int {
	d, _ := n.data.Dims()
	return d
}

// NumData returns the number of training points.
func (n *Nystrom) NumData() int {
	_, c := n.data.Dims()
	return c
}

// NumBasis returns the number of whole basis points M.
func (n *Nystrom) NumBasis() int {
	_, c := n.basis.Dims()
	return c
}

// NumQuery returns the number of currently bound query points.
func (n *Nystrom) NumQuery() int {
	_, c := n.query.Dims()
	return c
}

// SystemSize returns the linear system size: the number of selected basis
// components.
func (n *Nystrom) SystemSize() int {
	return len(n.basisInds)
}

// BasisInds returns a copy of the selected basis component indices.
func (n *Nystrom) BasisInds() []int {
	out := make([]int, len(n.basisInds))
	copy(out, n.basisInds)
	return out
}

// Lambda returns the primary ridge regularizer.
func (n *Nystrom) Lambda() float64 {
	return n.lambda
}

// LambdaL2 returns the second-order ridge regularizer.
func (n *Nystrom) LambdaL2() float64 {
	return n.lambdaL2
}

// Beta returns a copy of the fitted coefficient vector.
func (n *Nystrom) Beta() (*mat.VecDense, error) {
	if !n.state.IsFitted() {
		return nil, errors.NewNotFittedError("Nystrom", "Beta")
	}
	out := mat.NewVecDense(n.beta.Len(), nil)
	out.CopyVec(n.beta)
	return out, nil
}

// IsFitted reports whether Fit has completed.
func (n *Nystrom) IsFitted() bool {
	return n.state.IsFitted()
}

// SetData rebinds the query data set evaluated by LogPDF, Grad, Hessian,
// HessianDiag and Score. The fitted coefficients are unaffected, and SetData
// is valid both before and after Fit.
func (n *Nystrom) SetData(x *mat.Dense) error {
	d, _ := x.Dims()
	if d != n.NumDimensions() {
		return errors.NewDimensionError("Nystrom.SetData", n.NumDimensions(), d, 0)
	}
	n.query = x
	n.queryCols = matCols(x)
	n.logger.Debug("query data rebound",
		log.OperationKey, "set_data",
		log.PointsKey, n.NumQuery(),
	)
	return nil
}

var _ model.DensityEstimator = (*Nystrom)(nil)
