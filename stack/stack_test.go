package stack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stackgo/core/model"
	"github.com/YuminosukeSato/stackgo/ensemble"
	"github.com/YuminosukeSato/stackgo/linear"
	"github.com/YuminosukeSato/stackgo/metrics"
	stackgoErrors "github.com/YuminosukeSato/stackgo/pkg/errors"
)

// meanLearner predicts the training-target mean for every input row.
type meanLearner struct {
	model.BaseEstimator
	mean float64
}

func (m *meanLearner) Fit(X, y mat.Matrix) error {
	r, _ := y.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		sum += y.At(i, 0)
	}
	m.mean = sum / float64(r)
	m.SetFitted()
	return nil
}

func (m *meanLearner) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, stackgoErrors.NewNotFittedError("meanLearner", "Predict")
	}
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, m.mean)
	}
	return out, nil
}

func (m *meanLearner) Score(X, y mat.Matrix) (float64, error) { return 0, nil }

func (m *meanLearner) Clone() model.Learner { return &meanLearner{} }

// funcLearner applies a fixed function of the first feature; fitting only
// flips the fitted flag. Its predictions are known in closed form, which
// makes out-of-sample tables hand-checkable.
type funcLearner struct {
	model.BaseEstimator
	fn func(x float64) float64
}

func (f *funcLearner) Fit(X, y mat.Matrix) error {
	f.SetFitted()
	return nil
}

func (f *funcLearner) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, f.fn(X.At(i, 0)))
	}
	return out, nil
}

func (f *funcLearner) Score(X, y mat.Matrix) (float64, error) { return 0, nil }

func (f *funcLearner) Clone() model.Learner { return &funcLearner{fn: f.fn} }

// nanLearner poisons its predictions.
type nanLearner struct {
	funcLearner
}

func newNaNLearner() *nanLearner {
	nl := &nanLearner{}
	nl.fn = func(x float64) float64 { return x }
	return nl
}

func (n *nanLearner) Predict(X mat.Matrix) (mat.Matrix, error) {
	r, _ := X.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, math.NaN())
	}
	return out, nil
}

func (n *nanLearner) Clone() model.Learner { return newNaNLearner() }

// failingLearner always refuses to fit.
type failingLearner struct {
	model.BaseEstimator
}

func (f *failingLearner) Fit(X, y mat.Matrix) error {
	return stackgoErrors.New("deliberate fit failure")
}

func (f *failingLearner) Predict(X mat.Matrix) (mat.Matrix, error) {
	return nil, stackgoErrors.New("unfittable")
}

func (f *failingLearner) Score(X, y mat.Matrix) (float64, error) { return 0, nil }

func (f *failingLearner) Clone() model.Learner { return &failingLearner{} }

// nineRows returns X = 0..8 and y = 2x+1, the hand-worked training set used
// throughout these tests.
func nineRows() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(9, 1, nil)
	y := mat.NewDense(9, 1, nil)
	for i := 0; i < 9; i++ {
		X.Set(i, 0, float64(i))
		y.Set(i, 0, 2*float64(i)+1)
	}
	return X, y
}

func TestStack_NineRowsHandComputed(t *testing.T) {
	// One mean-predicting base, three folds over nine rows.
	//
	// Fold complements and their target means:
	//   fold 0 held out -> trained on rows 3..8, mean 12
	//   fold 1 held out -> trained on rows 0..2 and 6..8, mean 9
	//   fold 2 held out -> trained on rows 0..5, mean 6
	// so the adjudicator trains on the single out-of-sample column
	// t = (12,12,12, 9,9,9, 6,6,6) against y = (1,3,...,17). Least squares
	// gives y_hat = 27 - 2t. The full-data base always predicts the global
	// mean 9, so every composite prediction is 27 - 2*9 = 9.
	X, y := nineRows()

	s := New(linear.NewLinearRegression(), 3, &meanLearner{})
	require.NoError(t, s.Fit(X, y))

	table, err := s.AdjudicatorInputs()
	require.NoError(t, err)

	tr, tc := table.Dims()
	require.Equal(t, 9, tr)
	require.Equal(t, 1, tc)

	wantOOS := []float64{12, 12, 12, 9, 9, 9, 6, 6, 6}
	for i, want := range wantOOS {
		assert.InDelta(t, want, table.At(i, 0), 1e-9)
	}

	pred, err := s.Predict(mat.NewDense(3, 1, []float64{-50, 0, 1000}))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 9.0, pred.At(i, 0), 1e-8)
	}
}

func TestStack_DominantBase(t *testing.T) {
	// The linear base reproduces y = 2x+1 exactly on every fold
	// complement, so its out-of-sample column equals y and the adjudicator
	// can zero out the mean learner entirely. Averaging the two bases
	// instead would keep half of the mean learner's error.
	X, y := nineRows()

	s := New(linear.NewLinearRegression(), 3, linear.NewLinearRegression(), &meanLearner{})
	require.NoError(t, s.Fit(X, y))

	stackPred, err := s.Predict(X)
	require.NoError(t, err)
	stackMSE, err := metrics.MSEMatrix(y, stackPred)
	require.NoError(t, err)

	// Naive average of the two full-data learners.
	full := linear.NewLinearRegression()
	require.NoError(t, full.Fit(X, y))
	linPred, err := full.Predict(X)
	require.NoError(t, err)

	avg := &meanLearner{}
	require.NoError(t, avg.Fit(X, y))
	meanPred, err := avg.Predict(X)
	require.NoError(t, err)

	naive := mat.NewDense(9, 1, nil)
	for i := 0; i < 9; i++ {
		naive.Set(i, 0, (linPred.At(i, 0)+meanPred.At(i, 0))/2)
	}
	naiveMSE, err := metrics.MSEMatrix(y, naive)
	require.NoError(t, err)

	assert.Less(t, stackMSE, 1e-6)
	assert.Greater(t, naiveMSE, 1.0)
	assert.LessOrEqual(t, stackMSE, naiveMSE)

	score, err := s.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestStack_FitTwiceDeterministic(t *testing.T) {
	X, y := nineRows()
	query := mat.NewDense(4, 1, []float64{-3, 0.5, 4, 20})

	s := New(linear.NewLinearRegression(), 3, linear.NewLinearRegression(), &meanLearner{})

	require.NoError(t, s.Fit(X, y))
	first, err := s.Predict(query)
	require.NoError(t, err)

	require.NoError(t, s.Fit(X, y))
	second, err := s.Predict(query)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Equal(t, first.At(i, 0), second.At(i, 0))
	}
}

func TestStack_ColumnOrderStability(t *testing.T) {
	// Two stateless bases with distinguishable outputs: 2x and x^2. The
	// target 3x^2 + 2x + 1 is an exact linear combination of those columns
	// plus an intercept, so both declaration orders must adjudicate to the
	// same exact predictions while their tables are column-permutations of
	// each other.
	double := &funcLearner{fn: func(x float64) float64 { return 2 * x }}
	square := &funcLearner{fn: func(x float64) float64 { return x * x }}

	X := mat.NewDense(9, 1, nil)
	y := mat.NewDense(9, 1, nil)
	for i := 0; i < 9; i++ {
		x := float64(i + 1)
		X.Set(i, 0, x)
		y.Set(i, 0, 3*x*x+2*x+1)
	}

	s1 := New(linear.NewLinearRegression(), 3, double, square)
	s2 := New(linear.NewLinearRegression(), 3, square, double)
	require.NoError(t, s1.Fit(X, y))
	require.NoError(t, s2.Fit(X, y))

	t1, err := s1.AdjudicatorInputs()
	require.NoError(t, err)
	t2, err := s2.AdjudicatorInputs()
	require.NoError(t, err)

	for i := 0; i < 9; i++ {
		x := float64(i + 1)
		assert.InDelta(t, 2*x, t1.At(i, 0), 1e-12)
		assert.InDelta(t, x*x, t1.At(i, 1), 1e-12)
		assert.InDelta(t, x*x, t2.At(i, 0), 1e-12)
		assert.InDelta(t, 2*x, t2.At(i, 1), 1e-12)
	}

	query := mat.NewDense(2, 1, []float64{5, 10})
	p1, err := s1.Predict(query)
	require.NoError(t, err)
	p2, err := s2.Predict(query)
	require.NoError(t, err)

	assert.InDelta(t, 86.0, p1.At(0, 0), 1e-6)
	assert.InDelta(t, 321.0, p1.At(1, 0), 1e-6)
	assert.InDelta(t, p1.At(0, 0), p2.At(0, 0), 1e-6)
	assert.InDelta(t, p1.At(1, 0), p2.At(1, 0), 1e-6)
}

func TestStack_EnsembleAsBase(t *testing.T) {
	// Composites satisfy the same learner contract, so an ensemble can
	// serve as a stacked base learner.
	X, y := nineRows()

	bagged := ensemble.New(linear.NewLinearRegression(), 3)
	s := New(linear.NewLinearRegression(), 3, bagged, &meanLearner{})
	require.NoError(t, s.Fit(X, y))

	score, err := s.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestStack_Refit(t *testing.T) {
	s := New(linear.NewLinearRegression(), 3, linear.NewLinearRegression())

	X1, y1 := nineRows()
	require.NoError(t, s.Fit(X1, y1))

	X2 := mat.NewDense(6, 2, []float64{
		1, 1,
		2, 1,
		3, 2,
		4, 2,
		5, 3,
		6, 5,
	})
	y2 := mat.NewDense(6, 1, []float64{4, 5, 8, 9, 12, 17})
	require.NoError(t, s.Fit(X2, y2))

	_, err := s.Predict(mat.NewDense(1, 2, []float64{2, 2}))
	require.NoError(t, err)

	_, err = s.Predict(mat.NewDense(1, 1, []float64{2}))
	var dimErr *stackgoErrors.DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestStack_Errors(t *testing.T) {
	X, y := nineRows()

	t.Run("no bases", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3).Fit(X, y)
		var validErr *stackgoErrors.ValidationError
		assert.ErrorAs(t, err, &validErr)
	})

	t.Run("nil adjudicator", func(t *testing.T) {
		err := New(nil, 3, &meanLearner{}).Fit(X, y)
		var validErr *stackgoErrors.ValidationError
		assert.ErrorAs(t, err, &validErr)
	})

	t.Run("nil base", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3, &meanLearner{}, nil).Fit(X, y)
		var validErr *stackgoErrors.ValidationError
		assert.ErrorAs(t, err, &validErr)
	})

	t.Run("one fold", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 1, &meanLearner{}).Fit(X, y)
		var partErr *stackgoErrors.InvalidPartitionError
		assert.ErrorAs(t, err, &partErr)
	})

	t.Run("more folds than rows", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 10, &meanLearner{}).Fit(X, y)
		var partErr *stackgoErrors.InvalidPartitionError
		assert.ErrorAs(t, err, &partErr)
	})

	t.Run("empty data", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3, &meanLearner{}).Fit(&mat.Dense{}, &mat.Dense{})
		assert.ErrorIs(t, err, stackgoErrors.ErrEmptyData)
	})

	t.Run("row count mismatch", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3, &meanLearner{}).Fit(X, mat.NewDense(5, 1, nil))
		var dimErr *stackgoErrors.DimensionError
		assert.ErrorAs(t, err, &dimErr)
	})

	t.Run("y not a column vector", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3, &meanLearner{}).Fit(X, mat.NewDense(9, 2, nil))
		var valErr *stackgoErrors.ValueError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("base fit failure fails the composite", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3, &meanLearner{}, &failingLearner{}).Fit(X, y)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deliberate fit failure")
	})

	t.Run("adjudicator fit failure fails the composite", func(t *testing.T) {
		err := New(&failingLearner{}, 3, &meanLearner{}).Fit(X, y)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "deliberate fit failure")
	})

	t.Run("poisoned table is rejected before adjudication", func(t *testing.T) {
		err := New(linear.NewLinearRegression(), 3, newNaNLearner()).Fit(X, y)
		var numErr *stackgoErrors.NumericalInstabilityError
		assert.ErrorAs(t, err, &numErr)
	})

	t.Run("predict before fit", func(t *testing.T) {
		_, err := New(linear.NewLinearRegression(), 3, &meanLearner{}).Predict(X)
		var notFitted *stackgoErrors.NotFittedError
		assert.ErrorAs(t, err, &notFitted)
	})

	t.Run("adjudicator inputs before fit", func(t *testing.T) {
		_, err := New(linear.NewLinearRegression(), 3, &meanLearner{}).AdjudicatorInputs()
		var notFitted *stackgoErrors.NotFittedError
		assert.ErrorAs(t, err, &notFitted)
	})
}

func TestStack_Clone(t *testing.T) {
	X, y := nineRows()

	s := New(linear.NewLinearRegression(), 3, linear.NewLinearRegression(), &meanLearner{}).WithVerbose()
	require.NoError(t, s.Fit(X, y))

	clone := s.Clone()

	cloned, ok := clone.(*Stack)
	require.True(t, ok)
	assert.False(t, cloned.IsFitted())
	assert.True(t, s.IsFitted())
	assert.Equal(t, 3, cloned.NumFolds)
	assert.Len(t, cloned.Bases(), 2)
	assert.True(t, cloned.Verbose)
	require.NotNil(t, cloned.Adjudicator())

	// Cloned templates must be fresh instances, not shared state.
	require.NoError(t, cloned.Fit(X, y))

	query := mat.NewDense(1, 1, []float64{4})
	want, err := s.Predict(query)
	require.NoError(t, err)
	got, err := cloned.Predict(query)
	require.NoError(t, err)
	assert.Equal(t, want.At(0, 0), got.At(0, 0))
}

func TestStack_GetParams(t *testing.T) {
	s := New(linear.NewLinearRegression(), 4, &meanLearner{}, &meanLearner{})

	params := s.GetParams()
	assert.Equal(t, 4, params["num_folds"])
	assert.Equal(t, 2, params["bases"])
}
