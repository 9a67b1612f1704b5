// Package density implements kernel exponential family density estimation
// by score matching, with a Nystrom low-rank basis.
//
// The estimator represents the gradient of an unknown log-density in an
// RKHS and fits it to samples without ever touching the partition function.
// Cost is kept tractable by restricting the representation to a finite
// basis: either whole data points, or individual (point, dimension)
// components selected through a boolean mask.
//
// Data layout follows the (dimension × point) convention throughout: a
// matrix column is one sample. The flat index space over (point, dimension)
// pairs is point-major, so index = point*D + dimension.
//
// Typical usage:
//
//	k, _ := kernel.NewGaussian(2.0)
//	est, _ := density.NewNystromFromPoints(X, []int{0, 5, 17}, k, 1.0)
//	if err := est.Fit(); err != nil { ... }
//	_ = est.SetData(XTest)
//	s, _ := est.Score()
package density
