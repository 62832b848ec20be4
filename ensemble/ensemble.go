// Package ensemble implements homogeneous model ensembling: many copies of
// one atomic model trained on row subsamples and averaged at prediction time.
package ensemble

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
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

// Ensemble averages the predictions of Size independently trained clones of
// a single atomic model.
//
// Each member trains on its own bag: a BaggingFraction-sized row subsample
// drawn without replacement from the training data. Bags keep their rows in
// original order, and member m draws from a PCG stream seeded with
// (Seed, m), so a fitted ensemble is fully reproducible. With Size 1 and
// BaggingFraction 1 the ensemble behaves exactly like its atom.
//
// The atom is never fitted itself; it is the configuration template cloned
// once per member on every Fit.
type Ensemble struct {
	state *model.StateManager

	// Size is the number of members trained per Fit. Must be at least 1.
	Size int

	// BaggingFraction is the fraction of training rows each member sees,
	// in (0, 1]. At 1.0 every member trains on all rows in order.
	BaggingFraction float64

	// Seed is the base random seed for bag sampling.
	Seed uint64

	// Verbose gates Info-level fit progress logs.
	Verbose bool

	atom    model.Learner
	members []*network.Machine
	xs      *network.Source
	yhat    network.Node
}

// New creates an unfitted ensemble of size clones of atom. Bagging is off by
// default (fraction 1.0); configure it with WithBaggingFraction.
func New(atom model.Learner, size int) *Ensemble {
	return &Ensemble{
		state:           model.NewStateManager(),
		Size:            size,
		BaggingFraction: 1.0,
		Seed:            42,
		atom:            atom,
	}
}

// WithBaggingFraction sets the fraction of rows each member trains on.
func (e *Ensemble) WithBaggingFraction(fraction float64) *Ensemble {
	e.BaggingFraction = fraction
	return e
}

// WithSeed sets the base random seed for bag sampling.
func (e *Ensemble) WithSeed(seed uint64) *Ensemble {
	e.Seed = seed
	return e
}

// WithVerbose enables fit progress logging.
func (e *Ensemble) WithVerbose() *Ensemble {
	e.Verbose = true
	return e
}

// Atom returns the configuration template the members are cloned from.
func (e *Ensemble) Atom() model.Learner {
	return e.atom
}

// Fit trains Size member clones on bags of the training data and wires their
// prediction average into a fresh learning network. Refitting discards all
// previous members.
func (e *Ensemble) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "Ensemble.Fit")

	if e.atom == nil {
		return errors.NewValidationError("atom", "must not be nil", nil)
	}
	if e.Size < 1 {
		return errors.NewValidationError("size", "must be at least 1", e.Size)
	}
	if e.BaggingFraction <= 0 || e.BaggingFraction > 1 {
		return errors.NewValidationError("bagging_fraction", "must be in (0, 1]", e.BaggingFraction)
	}

	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("Ensemble.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("Ensemble.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Ensemble.Fit", "y must be a column vector")
	}

	logger := log.GetLoggerWithName("ensemble")
	start := time.Now()
	if e.Verbose {
		logger.Info("Training ensemble",
			log.OperationKey, log.OperationFit,
			log.EnsembleSizeKey, e.Size,
			log.BaggingFractionKey, e.BaggingFraction,
			log.SamplesKey, r,
			log.FeaturesKey, c,
			log.RandomSeedKey, e.Seed)
	}

	bagSize := r
	if e.BaggingFraction < 1 {
		// Never below one row
		bagSize = int(math.Ceil(e.BaggingFraction * float64(r)))
	}

	machines := make([]*network.Machine, e.Size)
	fitErrors := make([]error, e.Size)

	var wg sync.WaitGroup
	for m := 0; m < e.Size; m++ {
		wg.Add(1)
		go func(m int) {
			defer wg.Done()

			bagX, bagY := X, y
			if e.BaggingFraction < 1 {
				// Member m draws from its own PCG stream, so bags do not
				// depend on goroutine scheduling. Indices are sorted to
				// keep each bag in original row order.
				rng := rand.New(rand.NewPCG(e.Seed, uint64(m)))
				indices := rng.Perm(r)[:bagSize]
				sort.Ints(indices)

				var bagErr error
				bagX, bagErr = resample.TakeRows(X, indices)
				if bagErr != nil {
					fitErrors[m] = bagErr
					return
				}
				bagY, bagErr = resample.TakeRows(y, indices)
				if bagErr != nil {
					fitErrors[m] = bagErr
					return
				}
			}

			xm := network.NewSource(fmt.Sprintf("ensemble.x.%d", m))
			ym := network.NewSource(fmt.Sprintf("ensemble.y.%d", m))
			xm.Bind(bagX)
			ym.Bind(bagY)

			machines[m] = network.NewMachine(fmt.Sprintf("member.%d", m), e.atom.Clone(), xm, ym)
			fitErrors[m] = machines[m].Fit()
		}(m)
	}
	wg.Wait()

	for _, fitErr := range fitErrors {
		if fitErr != nil {
			return errors.Wrap(fitErr, "Ensemble.Fit")
		}
	}

	// Prediction graph: one shared query source feeding every member,
	// averaged into a single output node.
	xs := network.NewSource("ensemble.x")
	predictions := make([]network.Node, e.Size)
	for m, machine := range machines {
		predictions[m] = machine.Predict(xs)
	}

	e.members = machines
	e.xs = xs
	e.yhat = network.Mean("ensemble.mean", predictions...)

	e.state.SetDimensions(r, c)
	e.state.SetFitted()

	if e.Verbose {
		logger.Info("Ensemble training completed",
			log.EnsembleSizeKey, e.Size,
			log.DurationMsKey, time.Since(start).Milliseconds())
	}

	return nil
}

// Predict returns the member-mean prediction for each row of X.
func (e *Ensemble) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := e.state.RequireFitted("Ensemble", "Predict"); err != nil {
		return nil, err
	}

	_, nFeatures := e.state.Dimensions()
	_, c := X.Dims()
	if c != nFeatures {
		return nil, errors.NewDimensionError("Ensemble.Predict", nFeatures, c, 1)
	}

	e.xs.Bind(X)
	return e.yhat.Value()
}

// IsFitted returns whether the ensemble has been fitted.
func (e *Ensemble) IsFitted() bool {
	return e.state.IsFitted()
}

// Score returns the coefficient of determination R^2 on the given data.
func (e *Ensemble) Score(X, y mat.Matrix) (float64, error) {
	if err := e.state.RequireFitted("Ensemble", "Score"); err != nil {
		return 0, err
	}

	predictions, err := e.Predict(X)
	if err != nil {
		return 0, err
	}

	return metrics.R2ScoreMatrix(y, predictions)
}

// Clone returns a new unfitted ensemble with the same configuration and a
// clone of the atom. Fitted members are never carried over.
func (e *Ensemble) Clone() model.Learner {
	var atom model.Learner
	if e.atom != nil {
		atom = e.atom.Clone()
	}

	clone := New(atom, e.Size).WithBaggingFraction(e.BaggingFraction).WithSeed(e.Seed)
	clone.Verbose = e.Verbose
	return clone
}

// GetParams returns the ensemble's hyperparameters.
func (e *Ensemble) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"size":             e.Size,
		"bagging_fraction": e.BaggingFraction,
		"seed":             e.Seed,
	}
}
