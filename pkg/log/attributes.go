package log

// Standard attribute keys for density estimation operations. Using these
// consistently keeps log records filterable: every fit or evaluate event
// carries the same hierarchical names.

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "Nystrom".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "log_pdf", "grad", "hessian", "score",
	// "set_data".
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "density", "density.kernel".
	ComponentKey = "ml.component"
)

// Data shape and basis characteristics.
const (
	// DimensionsKey is the dimensionality D shared by data, basis and
	// query matrices.
	DimensionsKey = "data.dimensions"

	// PointsKey is the number of data points (columns) currently bound.
	PointsKey = "data.points"

	// BasisPointsKey is the number of whole basis points M.
	BasisPointsKey = "basis.points"

	// BasisComponentsKey is the number of selected (point, dimension)
	// basis components, i.e. the system size.
	BasisComponentsKey = "basis.components"

	// SystemSizeKey is the linear system size, equal to the number of
	// basis components.
	SystemSizeKey = "system.size"
)

// Hyperparameters.
const (
	// LambdaKey is the primary ridge regularizer.
	LambdaKey = "reg.lambda"

	// LambdaL2Key is the optional second-order ridge regularizer.
	LambdaL2Key = "reg.lambda_l2"
)

// Performance metrics.
const (
	// DurationMsKey records elapsed wall time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ScoreKey records a score-matching objective value.
	ScoreKey = "metric.score"
)
