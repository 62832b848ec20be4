package network

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stackgo/core/model"
	"github.com/YuminosukeSato/stackgo/pkg/errors"
)

// fitToken is the placeholder value carried by a machine's state source.
// Only the source's version matters; the matrix itself is never read.
var fitToken = mat.NewDense(1, 1, nil)

// Machine binds a model to the nodes holding its training data.
//
// Fit evaluates the training nodes once and fits the model on their values.
// Predict wires the fitted model into the graph as a derived node. The
// machine tracks its fit generation through an internal source node, so
// refitting invalidates the memo of every prediction node downstream.
type Machine struct {
	name  string
	model model.Regressor
	x, y  Node

	// state's version counts successful fits
	state *Source
}

// NewMachine creates a machine training m on the values of x and y.
func NewMachine(name string, m model.Regressor, x, y Node) *Machine {
	state := NewSource(name + ".state")
	state.Bind(fitToken)
	return &Machine{
		name:  name,
		model: m,
		x:     x,
		y:     y,
		state: state,
	}
}

// Name returns the machine's label.
func (mc *Machine) Name() string {
	return mc.name
}

// Model returns the wrapped model.
func (mc *Machine) Model() model.Regressor {
	return mc.model
}

// Fit evaluates the training nodes and fits the model on their values.
func (mc *Machine) Fit() (err error) {
	defer errors.Recover(&err, "Machine.Fit")

	X, err := mc.x.Value()
	if err != nil {
		return errors.Wrapf(err, "machine %s", mc.name)
	}

	y, err := mc.y.Value()
	if err != nil {
		return errors.Wrapf(err, "machine %s", mc.name)
	}

	if err := mc.model.Fit(X, y); err != nil {
		return errors.Wrapf(err, "machine %s", mc.name)
	}

	mc.state.Bind(fitToken)
	return nil
}

// Predict returns a node applying the machine's model to the value of in.
//
// The node depends on in and on the machine's fit generation: rebinding the
// data upstream of in or refitting the machine both invalidate its memo.
// Evaluating the node before the machine has been fitted returns a
// NotFittedError.
func (mc *Machine) Predict(in Node) Node {
	return Apply(mc.name+".predict", func(ms ...mat.Matrix) (mat.Matrix, error) {
		if !mc.model.IsFitted() {
			return nil, errors.NewNotFittedError(mc.name, "Predict")
		}
		return mc.model.Predict(ms[0])
	}, in, mc.state)
}
