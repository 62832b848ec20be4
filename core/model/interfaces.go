// Package model provides additional interfaces and types for composite models.
// This file complements the core interfaces in estimator.go
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R^2 of the prediction.
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Predictor
	Scorer
}

// Learner is a regressor that can produce fresh unfitted copies of itself.
// Composite models depend on Clone to train independent instances of the
// same configured model on different row subsets: a stack clones each base
// learner once per fold, an ensemble clones its atom once per member.
type Learner interface {
	Regressor

	// Clone returns a new unfitted instance with the same hyperparameters.
	// The clone shares no mutable state with the receiver.
	Clone() Learner
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// ParameterSetter is the interface for models that allow parameter modification.
type ParameterSetter interface {
	// SetParams sets the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}
