// Package log defines standard attribute keys for stacking and ensembling
// operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in stackgo. Using these standard keys enables better
// log analysis, monitoring, and debugging of composite model workflows.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Data Shape and Characteristics
//   - Resampling and Composite Context
//   - Performance Metrics
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of model.
	// Examples: "LinearRegression", "Stack", "Ensemble"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	// This is useful for tracking multiple instances of the same model type.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "stack", "ensemble", "network", "resample"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	// Examples: "training", "inference", "validation"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
// These attributes describe the structure and properties of data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	// Important for dimensionality tracking and debugging shape mismatches.
	FeaturesKey = "data.features"

	// TargetsKey indicates the number of target variables for supervised learning.
	TargetsKey = "data.targets"
)

// Resampling and Composite Context
// These attributes describe fold partitions and the structure of composite models.
const (
	// FoldsKey indicates the number of folds in a cross-validation partition.
	FoldsKey = "resample.folds"

	// FoldIndexKey identifies which fold an operation is acting on.
	FoldIndexKey = "resample.fold"

	// BaseLearnersKey indicates the number of base learners in a stack.
	BaseLearnersKey = "stack.base_learners"

	// AdjudicatorKey identifies the adjudicating model of a stack.
	AdjudicatorKey = "stack.adjudicator"

	// EnsembleSizeKey indicates the number of members in an ensemble.
	EnsembleSizeKey = "ensemble.size"

	// BaggingFractionKey records the row fraction used for bagging.
	BaggingFractionKey = "ensemble.bagging_fraction"

	// NodeNameKey identifies a node in the learning network.
	NodeNameKey = "network.node"

	// MachinesKey indicates the number of machines wired into a network.
	MachinesKey = "network.machines"
)

// Performance Metrics
// These attributes capture timing and evaluation information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// MSEKey records mean squared error for evaluation operations.
	MSEKey = "metrics.mse"

	// R2ScoreKey records R² coefficient of determination for regression.
	// Range typically [-∞, 1.0], with 1.0 being perfect prediction.
	R2ScoreKey = "metrics.r2_score"
)

// Error Context
// These attributes provide additional context for error messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "INVALID_PARTITION"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "DimensionError", "NotFittedError", "FoldIndexError"
	ErrorTypeKey = "error.type"

	// SuggestionKey provides helpful suggestions for resolving issues.
	// Examples: "Check input data shape", "Call Fit() before Predict()"
	SuggestionKey = "error.suggestion"
)

// Configuration
// These attributes capture configuration relevant for reproducibility.
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard operations
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"

	// Standard phases
	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidPartition  = "INVALID_PARTITION"
	ErrorFoldIndex         = "FOLD_INDEX"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
	ErrorNumericalUnstable = "NUMERICAL_INSTABILITY"
)
