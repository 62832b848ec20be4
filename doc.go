// Package stackgo provides model stacking and homogeneous ensembling for Go,
// built on a lazy computation network for training and inference pipelines.
//
// StackGo combines heterogeneous base learners through a cross-validated
// adjudicator, and averages bagged replicas of a single learner, with an API
// that stays close to familiar estimator conventions.
//
// # Features
//
// - Stacked Generalization: out-of-sample predictions feed the adjudicator
// - Homogeneous Ensembles: bagged replicas averaged over a shared input
// - Lazy Computation Network: memoized nodes, recomputed only on rebinding
// - Concurrent Training: fold and member models fit in parallel
// - Robust Error Handling: typed errors with full context
//
// # Installation
//
// Install StackGo using go get:
//
//	go get github.com/YuminosukeSato/stackgo
//
// # Quick Start
//
// Here's a simple example of stacking two base learners:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/stackgo/linear"
//	    "github.com/YuminosukeSato/stackgo/neighbors"
//	    "github.com/YuminosukeSato/stackgo/stack"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // Create training data
//	    X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
//	    y := mat.NewDense(6, 1, []float64{2, 4, 6, 8, 10, 12})
//
//	    // Stack a linear model and a nearest-neighbour model under a
//	    // linear adjudicator, with 3-fold out-of-sample training.
//	    model := stack.New(
//	        linear.NewLinearRegression(),
//	        3,
//	        linear.NewLinearRegression(),
//	        neighbors.NewKNNRegressor(2),
//	    )
//	    if err := model.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    // Make predictions
//	    X_test := mat.NewDense(2, 1, []float64{7, 8})
//	    predictions, err := model.Predict(X_test)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("Predictions:", predictions)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - stack: stacked generalization over heterogeneous base learners
//   - ensemble: homogeneous bagged ensembles of a single learner
//   - network: lazy, memoizing computation graph of matrix nodes
//   - linear: linear models (LinearRegression, Ridge)
//   - neighbors: nearest-neighbour models (KNNRegressor)
//   - metrics: evaluation metrics (MSE, RMSE, MAE, R²)
//   - preprocessing: data preprocessing utilities (StandardScaler)
//   - resample: contiguous k-fold partitions and row selection
//   - core/model: core interfaces and base types
//   - core/parallel: parallel processing utilities
//
// # Concurrency
//
// Training is parallel by construction: every fold clone and every ensemble
// member is fit in its own goroutine, and the computation network evaluates
// concurrently because node locks are only ever acquired in the direction of
// the graph's edges.
//
//   - Fold models and full-data models train in a single parallel batch
//   - Prediction over large inputs parallelizes across rows
//   - Thread-safe node memoization with version-based invalidation
//
// # License
//
// StackGo is released under the MIT License.
package stackgo
