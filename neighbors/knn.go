package neighbors

import (
	"sort"

	"github.com/YuminosukeSato/stackgo/core/model"
	"github.com/YuminosukeSato/stackgo/core/parallel"
	"github.com/YuminosukeSato/stackgo/metrics"
	"github.com/YuminosukeSato/stackgo/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// KNNRegressor predicts the mean target of the K nearest training rows.
//
// Distances are Euclidean. Ties in distance are broken by training-row
// index, so predictions are fully deterministic for a fixed training set.
type KNNRegressor struct {
	model.BaseEstimator

	// K is the number of neighbors averaged per prediction. Must be at
	// least 1 and no larger than the number of training rows.
	K int

	xTrain    *mat.Dense
	yTrain    *mat.VecDense
	nFeatures int
}

// NewKNNRegressor creates a K-nearest-neighbor regressor. Validation of K
// against the training set happens in Fit.
func NewKNNRegressor(k int) *KNNRegressor {
	return &KNNRegressor{K: k}
}

// Fit stores a private copy of the training data. There is no model to
// estimate; all work happens at prediction time.
func (knn *KNNRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "KNNRegressor.Fit")

	if knn.K < 1 {
		return errors.NewValidationError("k", "must be at least 1", knn.K)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("KNNRegressor.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("KNNRegressor.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("KNNRegressor.Fit", "y must be a column vector")
	}

	if knn.K > r {
		return errors.NewValidationError("k", "must not exceed the number of training rows", knn.K)
	}

	// Copies, so later mutation of the caller's matrices cannot change
	// fitted behavior.
	knn.xTrain = mat.DenseCopyOf(X)
	knn.yTrain = mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		knn.yTrain.SetVec(i, y.At(i, 0))
	}

	knn.nFeatures = c
	knn.SetFitted()

	return nil
}

// Predict returns the neighbor-mean target for each row of X.
func (knn *KNNRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !knn.IsFitted() {
		return nil, errors.NewNotFittedError("KNNRegressor", "Predict")
	}

	r, c := X.Dims()
	if c != knn.nFeatures {
		return nil, errors.NewDimensionError("KNNRegressor.Predict", knn.nFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)

	// Query rows are independent; each goroutine writes only its own
	// output cells and reads the immutable training copy.
	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			predictions.Set(i, 0, knn.predictRow(X, i))
		}
	})

	return predictions, nil
}

type neighbor struct {
	dist  float64
	index int
}

// predictRow averages the targets of the K training rows nearest to query
// row i. Squared distances preserve the Euclidean ordering.
func (knn *KNNRegressor) predictRow(X mat.Matrix, i int) float64 {
	nTrain, _ := knn.xTrain.Dims()

	candidates := make([]neighbor, nTrain)
	for t := 0; t < nTrain; t++ {
		var dist float64
		for j := 0; j < knn.nFeatures; j++ {
			d := X.At(i, j) - knn.xTrain.At(t, j)
			dist += d * d
		}
		candidates[t] = neighbor{dist: dist, index: t}
	}

	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].dist != candidates[b].dist {
			return candidates[a].dist < candidates[b].dist
		}
		return candidates[a].index < candidates[b].index
	})

	var sum float64
	for t := 0; t < knn.K; t++ {
		sum += knn.yTrain.AtVec(candidates[t].index)
	}
	return sum / float64(knn.K)
}

// Score returns the coefficient of determination R^2 on the given data.
func (knn *KNNRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !knn.IsFitted() {
		return 0, errors.NewNotFittedError("KNNRegressor", "Score")
	}

	predictions, err := knn.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, predictions)
}

// Clone returns a new unfitted KNNRegressor with the same K.
func (knn *KNNRegressor) Clone() model.Learner {
	return NewKNNRegressor(knn.K)
}

// GetParams returns the model's hyperparameters.
func (knn *KNNRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"k": knn.K,
	}
}
