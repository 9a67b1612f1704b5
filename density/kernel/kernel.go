// Package kernel defines the derivative contract consumed by the density
// estimators, together with the Gaussian RBF implementation.
//
// All methods take raw points (slices of length D). The first argument of
// the kernel is always x, the second y; derivative names follow that order,
// so DxDyDyComponent is one derivative in x and two in y.
package kernel

// Kernel is the capability contract a kernel family must implement for
// score-matching density estimation. Implementations must be safe for
// concurrent use: the estimators call these methods from parallel loops
// over shared, read-only data.
type Kernel interface {
	// Value returns k(x, y).
	Value(x, y []float64) float64

	// DxComponent returns dk/dx_i evaluated at (x, y).
	DxComponent(x, y []float64, i int) float64

	// DxDyComponent returns d²k/(dx_i dy_j).
	DxDyComponent(x, y []float64, i, j int) float64

	// DxDyDyComponent returns d³k/(dx_i dy_j dy_j).
	DxDyDyComponent(x, y []float64, i, j int) float64

	// DxIDxJComponent returns the row over j of d²k/(dx_i dx_j) at
	// fixed i.
	DxIDxJComponent(x, y []float64, i int) []float64

	// DxIDxJDxKDotVecComponent returns the (i, j) component of the third
	// derivative tensor d³k/(dx_i dx_j dx_k) contracted against vec over
	// the k axis.
	DxIDxJDxKDotVecComponent(x, y, vec []float64, i, j int) float64
}
