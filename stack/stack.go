// Package stack implements model stacking over a learning network.
//
// A Stack trains B base learners and one adjudicating model. During Fit the
// training rows are partitioned into contiguous folds; each base learner is
// cloned once per fold and fitted on that fold's complement, so its
// predictions on the held-out fold are out-of-sample. Concatenating the k
// held-out prediction blocks rebuilds a full-length prediction column per
// base learner, and the adjudicator is trained on the table of those columns
// against the original target. A separate clone of each base learner is
// fitted on all rows and used only on the prediction path, never for
// adjudicator training.
package stack

import (
	"fmt"
	"sync"
	"time"

	"github.com/YuminosukeSato/stackgo/core/model"
	"github.com/YuminosukeSato/stackgo/metrics"
	"github.com/YuminosukeSato/stackgo/network"
	"github.com/YuminosukeSato/stackgo/pkg/errors"
	"github.com/YuminosukeSato/stackgo/pkg/log"
	"github.com/YuminosukeSato/stackgo/resample"
	"gonum.org/v1/gonum/mat"
)

// Stack combines base learners through an adjudicating model trained on
// their out-of-sample predictions.
//
// The adjudicator's input column order is the base-learner declaration
// order, fixed at construction; training-time and prediction-time tables
// are assembled from the same slice, so they can never disagree.
//
// The learner arguments are configuration templates. Every Fit re-clones
// them, regenerates the fold partition from the current row count and
// rebuilds the learning network; nothing warm-starts.
type Stack struct {
	state *model.StateManager

	// NumFolds is the number of folds used to produce out-of-sample
	// predictions. Must satisfy 2 <= NumFolds <= rows at fit time.
	NumFolds int

	// Verbose gates Info-level fit progress logs.
	Verbose bool

	judge model.Learner
	bases []model.Learner

	xs           *network.Source
	ys           *network.Source
	fullMachines []*network.Machine
	judgeMachine *network.Machine
	yhat         network.Node
	oosTable     *mat.Dense
}

// New creates an unfitted stack with the given adjudicator, fold count and
// base learners. Validation happens in Fit.
func New(adjudicator model.Learner, numFolds int, bases ...model.Learner) *Stack {
	return &Stack{
		state:    model.NewStateManager(),
		NumFolds: numFolds,
		judge:    adjudicator,
		bases:    bases,
	}
}

// WithVerbose enables fit progress logging.
func (s *Stack) WithVerbose() *Stack {
	s.Verbose = true
	return s
}

// Adjudicator returns the adjudicating model's configuration template.
func (s *Stack) Adjudicator() model.Learner {
	return s.judge
}

// Bases returns the base-learner configuration templates in declaration
// order. The returned slice is a copy.
func (s *Stack) Bases() []model.Learner {
	bases := make([]model.Learner, len(s.bases))
	copy(bases, s.bases)
	return bases
}

// Fit trains the whole stack: fold clones of every base learner for the
// out-of-sample table, full-data clones for the prediction path, and the
// adjudicator on the assembled table against the original target.
func (s *Stack) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Stack.Fit")

	if s.judge == nil {
		return errors.NewValidationError("adjudicator", "must not be nil", nil)
	}
	if len(s.bases) == 0 {
		return errors.NewValidationError("bases", "must provide at least one base learner", 0)
	}
	for i, base := range s.bases {
		if base == nil {
			return errors.NewValidationError("bases", "must not contain nil learners", i)
		}
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Stack.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Stack.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Stack.Fit", "y must be a column vector")
	}

	// Partition errors surface before any learner is fitted.
	folds, err := resample.KFold(r, s.NumFolds)
	if err != nil {
		return err
	}
	k := folds.NumFolds()

	logger := log.GetLoggerWithName("stack")
	start := time.Now()
	if s.Verbose {
		logger.Info("Training stack",
			log.OperationKey, log.OperationFit,
			log.BaseLearnersKey, len(s.bases),
			log.AdjudicatorKey, fmt.Sprintf("%T", s.judge),
			log.FoldsKey, k,
			log.SamplesKey, r,
			log.FeaturesKey, c)
	}

	xs := network.NewSource("stack.x")
	ys := network.NewSource("stack.y")
	xs.Bind(X)
	ys.Bind(y)

	// Per-fold restriction nodes, shared by all base learners.
	trainX := make([]network.Node, k)
	trainY := make([]network.Node, k)
	holdoutX := make([]network.Node, k)
	for i := 0; i < k; i++ {
		fold := i
		trainX[i] = network.Apply(fmt.Sprintf("stack.train.x.%d", fold),
			func(ms ...mat.Matrix) (mat.Matrix, error) {
				return folds.Corestrict(ms[0], fold)
			}, xs)
		trainY[i] = network.Apply(fmt.Sprintf("stack.train.y.%d", fold),
			func(ms ...mat.Matrix) (mat.Matrix, error) {
				return folds.Corestrict(ms[0], fold)
			}, ys)
		holdoutX[i] = network.Apply(fmt.Sprintf("stack.holdout.x.%d", fold),
			func(ms ...mat.Matrix) (mat.Matrix, error) {
				return folds.Restrict(ms[0], fold)
			}, xs)
	}

	// Materialize every slice once before the parallel fits, so node
	// memoization is warm and the goroutines only read.
	for i := 0; i < k; i++ {
		for _, nd := range []network.Node{trainX[i], trainY[i], holdoutX[i]} {
			if _, err := nd.Value(); err != nil {
				return errors.Wrap(err, "Stack.Fit")
			}
		}
	}

	// One machine per (base, fold) for the out-of-sample table, plus one
	// full-data machine per base for the prediction path. The full-data
	// clones are distinct from the fold clones: reusing a fold clone at
	// prediction time would leak training rows into the adjudicator's
	// assessment.
	foldMachines := make([][]*network.Machine, len(s.bases))
	fullMachines := make([]*network.Machine, len(s.bases))
	for b, base := range s.bases {
		foldMachines[b] = make([]*network.Machine, k)
		for i := 0; i < k; i++ {
			name := fmt.Sprintf("base.%d.fold.%d", b, i)
			foldMachines[b][i] = network.NewMachine(name, base.Clone(), trainX[i], trainY[i])
		}
		fullMachines[b] = network.NewMachine(fmt.Sprintf("base.%d.full", b), base.Clone(), xs, ys)
	}

	units := make([]*network.Machine, 0, len(s.bases)*(k+1))
	for b := range s.bases {
		units = append(units, foldMachines[b]...)
		units = append(units, fullMachines[b])
	}

	fitErrors := make([]error, len(units))
	var wg sync.WaitGroup
	for u := range units {
		wg.Add(1)
		go func(u int) {
			defer wg.Done()
			fitErrors[u] = units[u].Fit()
		}(u)
	}
	wg.Wait()

	// One failed unit invalidates the whole composite fit.
	for _, fitErr := range fitErrors {
		if fitErr != nil {
			return errors.Wrap(fitErr, "Stack.Fit")
		}
	}

	// Concatenating the held-out prediction blocks in ascending fold order
	// rebuilds the original row order, because KFold produces contiguous
	// ascending blocks.
	oosColumns := make([]network.Node, len(s.bases))
	for b := range s.bases {
		blocks := make([]network.Node, k)
		for i := 0; i < k; i++ {
			blocks[i] = foldMachines[b][i].Predict(holdoutX[i])
		}
		oosColumns[b] = network.RowBind(fmt.Sprintf("stack.oos.%d", b), blocks...)
	}
	tableNode := network.ColBind("stack.oos_table", oosColumns...)

	table, err := tableNode.Value()
	if err != nil {
		return errors.Wrap(err, "Stack.Fit")
	}

	tr, tc := table.Dims()
	if err := errors.CheckMatrix("Stack.Fit: out-of-sample table", table, tr, tc); err != nil {
		return err
	}

	judgeMachine := network.NewMachine("stack.adjudicator", s.judge.Clone(), tableNode, ys)
	if err := judgeMachine.Fit(); err != nil {
		return errors.Wrap(err, "Stack.Fit")
	}

	// Prediction path: full-data predictions, bound into a table with the
	// same column order, adjudicated.
	predColumns := make([]network.Node, len(s.bases))
	for b := range s.bases {
		predColumns[b] = fullMachines[b].Predict(xs)
	}
	predTable := network.ColBind("stack.predict_table", predColumns...)

	s.xs = xs
	s.ys = ys
	s.fullMachines = fullMachines
	s.judgeMachine = judgeMachine
	s.yhat = judgeMachine.Predict(predTable)
	s.oosTable = mat.DenseCopyOf(table)

	s.state.SetDimensions(r, c)
	s.state.SetFitted()

	if s.Verbose {
		logger.Info("Stack training completed",
			log.BaseLearnersKey, len(s.bases),
			log.MachinesKey, len(units)+1,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}

	return nil
}

// Predict runs the full-data base learners on X, assembles their predictions
// in declaration order and returns the adjudicator's output.
func (s *Stack) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("Stack", "Predict"); err != nil {
		return nil, err
	}

	_, nFeatures := s.state.Dimensions()
	_, c := X.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError("Stack.Predict", nFeatures, c, 1)
	}

	s.xs.Bind(X)
	return s.yhat.Value()
}

// IsFitted returns whether the stack has been fitted.
func (s *Stack) IsFitted() bool {
	return s.state.IsFitted()
}

// AdjudicatorInputs returns a copy of the out-of-sample prediction table the
// adjudicator was trained on. Columns follow base-learner declaration order.
func (s *Stack) AdjudicatorInputs() (mat.Matrix, error) {
	if err := s.state.RequireFitted("Stack", "AdjudicatorInputs"); err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(s.oosTable), nil
}

// Score returns the coefficient of determination R^2 on the given data.
func (s *Stack) Score(X, y mat.Matrix) (float64, error) {
	if err := s.state.RequireFitted("Stack", "Score"); err != nil {
		return 0, err
	}

	predictions, err := s.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, predictions)
}

// Clone returns a new unfitted stack with cloned constituent templates and
// the same fold count.
func (s *Stack) Clone() model.Learner {
	var judge model.Learner
	if s.judge != nil {
		judge = s.judge.Clone()
	}

	bases := make([]model.Learner, len(s.bases))
	for i, base := range s.bases {
		if base != nil {
			bases[i] = base.Clone()
		}
	}

	clone := New(judge, s.NumFolds, bases...)
	clone.Verbose = s.Verbose
	return clone
}

// GetParams returns the stack's hyperparameters.
func (s *Stack) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_folds": s.NumFolds,
		"bases":     len(s.bases),
	}
}
