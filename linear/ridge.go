package linear

import (
	"github.com/YuminosukeSato/stackgo/core/model"
	"github.com/YuminosukeSato/stackgo/core/parallel"
	"github.com/YuminosukeSato/stackgo/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Ridge is linear regression with an L2 penalty on the coefficients.
//
// The weights solve (X^T X + alpha*I) w = X^T y, with the intercept left
// unpenalized. Alpha = 0 reduces to ordinary least squares; larger values
// shrink the coefficients toward zero, which keeps the normal equations
// solvable on collinear designs. That makes Ridge the usual choice of
// adjudicator in a stack, where base-learner prediction columns are often
// strongly correlated.
type Ridge struct {
	model.BaseEstimator

	// Alpha is the regularization strength. Must be non-negative.
	Alpha float64

	weights   *mat.VecDense
	intercept float64
	nFeatures int
}

// NewRidge creates a ridge regression model with the given penalty.
func NewRidge(alpha float64) *Ridge {
	return &Ridge{Alpha: alpha}
}

// Fit learns the penalized least-squares solution from the training data.
func (rr *Ridge) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Ridge.Fit")

	if rr.Alpha < 0 {
		return errors.NewValidationError("alpha", "must be non-negative", rr.Alpha)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}

	if ry != r {
		return errors.NewDimensionError("Ridge.Fit", r, ry, 0)
	}

	if cy != 1 {
		return errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}

	rr.nFeatures = c

	// Prepend the intercept column of ones
	XWithIntercept := mat.NewDense(r, c+1, nil)

	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})

	var XT mat.Dense
	XT.CloneFrom(XWithIntercept.T())

	var XTX mat.Dense
	XTX.Mul(&XT, XWithIntercept)

	// Add alpha to the diagonal, skipping the intercept position
	for i := 1; i <= c; i++ {
		XTX.Set(i, i, XTX.At(i, i)+rr.Alpha)
	}

	var XTXInv mat.Dense
	if err := XTXInv.Inverse(&XTX); err != nil {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}

	var XTy mat.VecDense
	XTy.MulVec(&XT, yVec)

	weights := mat.NewVecDense(c+1, nil)
	weights.MulVec(&XTXInv, &XTy)

	rr.intercept = weights.AtVec(0)
	rr.weights = mat.NewVecDense(c, nil)
	for i := 0; i < c; i++ {
		rr.weights.SetVec(i, weights.AtVec(i+1))
	}

	rr.SetFitted()

	return nil
}

// Predict computes X*w + intercept for each row of X.
func (rr *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !rr.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}

	r, c := X.Dims()
	if c != rr.nFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", rr.nFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)

	for i := 0; i < r; i++ {
		pred := rr.intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * rr.weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Weights returns the learned coefficients.
func (rr *Ridge) Weights() []float64 {
	if rr.weights == nil {
		return nil
	}

	weights := make([]float64, rr.weights.Len())
	for i := 0; i < rr.weights.Len(); i++ {
		weights[i] = rr.weights.AtVec(i)
	}
	return weights
}

// Intercept returns the learned intercept.
func (rr *Ridge) Intercept() float64 {
	if !rr.IsFitted() {
		return 0
	}
	return rr.intercept
}

// Score returns the coefficient of determination R^2 on the given data.
func (rr *Ridge) Score(X, y mat.Matrix) (float64, error) {
	if !rr.IsFitted() {
		return 0, errors.NewNotFittedError("Ridge", "Score")
	}

	yPred, err := rr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()

	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		yTrue := y.At(i, 0)
		yPredVal := yPred.At(i, 0)

		tss += (yTrue - yMean) * (yTrue - yMean)
		rss += (yTrue - yPredVal) * (yTrue - yPredVal)
	}

	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}

	return 1 - rss/tss, nil
}

// Clone returns a new unfitted Ridge with the same penalty.
func (rr *Ridge) Clone() model.Learner {
	return NewRidge(rr.Alpha)
}

// GetParams returns the model's hyperparameters.
func (rr *Ridge) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"alpha": rr.Alpha,
	}
}
