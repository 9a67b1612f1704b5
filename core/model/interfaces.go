package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for unsupervised estimators that learn their
// parameters from data bound at construction time.
type Fitter interface {
	// Fit computes the estimator's parameters. It is synchronous and
	// deterministic for fixed inputs.
	Fit() error
}

// DataBinder is the interface for estimators whose query data can be
// rebound without re-fitting.
type DataBinder interface {
	// SetData replaces the query data set. The fitted parameters are
	// unaffected.
	SetData(X *mat.Dense) error
}

// DensityEvaluator is the interface for fitted unnormalized log-density
// models evaluated point-wise over the bound query set.
type DensityEvaluator interface {
	// LogPDF returns the unnormalized log-density at query point i.
	LogPDF(i int) (float64, error)

	// Grad returns the log-density gradient at query point i.
	Grad(i int) (*mat.VecDense, error)

	// Hessian returns the full log-density Hessian at query point i.
	Hessian(i int) (*mat.Dense, error)

	// HessianDiag returns the diagonal of the Hessian at query point i.
	HessianDiag(i int) (*mat.VecDense, error)
}

// Scorer is the interface for models that summarize their fit quality over
// the bound query set as a single scalar.
type Scorer interface {
	Score() (float64, error)
}

// DensityEstimator combines the full estimator lifecycle.
type DensityEstimator interface {
	Fitter
	DataBinder
	DensityEvaluator
	Scorer
}
