package network

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stackgo/pkg/errors"
)

// Node is a matrix-valued vertex in a learning network.
//
// Value computes (or returns the memoized) matrix for the node. Version
// increments whenever the node's value changes: on every Bind for a Source,
// and on every recomputation for a derived node. Downstream nodes compare
// input versions to decide whether their memo is still valid.
type Node interface {
	// Name returns the node's label, used in error and log context.
	Name() string

	// Value returns the node's current matrix, evaluating inputs as needed.
	Value() (mat.Matrix, error)

	// Version returns a counter that increments whenever the value changes.
	Version() uint64
}

// Source is a leaf node whose data is bound at runtime.
//
// A fitted workflow predicts on new data by rebinding its input Source and
// re-evaluating the terminal node; the version bump on Bind invalidates all
// memos downstream.
type Source struct {
	name string

	mu      sync.RWMutex
	data    mat.Matrix
	version uint64
}

// NewSource creates an unbound source node.
func NewSource(name string) *Source {
	return &Source{name: name}
}

// Name returns the source's label.
func (s *Source) Name() string {
	return s.name
}

// Bind attaches data to the source and bumps its version.
func (s *Source) Bind(data mat.Matrix) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.version++
}

// Value returns the bound data, or an error if the source is unbound.
func (s *Source) Value() (mat.Matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, errors.NewValueError(s.name, "source is not bound to data")
	}
	return s.data, nil
}

// Version returns the number of times the source has been bound.
func (s *Source) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Op computes a derived node's matrix from the values of its inputs.
type Op func(inputs ...mat.Matrix) (mat.Matrix, error)

// node is a derived vertex: an operation over input nodes with a memoized
// result.
type node struct {
	name   string
	op     Op
	inputs []Node

	mu           sync.Mutex
	memo         mat.Matrix
	memoVersions []uint64
	version      uint64
}

// Apply creates a derived node computing op over the values of inputs.
// The result is memoized until any input's version changes.
func Apply(name string, op Op, inputs ...Node) Node {
	return &node{
		name:   name,
		op:     op,
		inputs: inputs,
	}
}

// Name returns the node's label.
func (n *node) Name() string {
	return n.name
}

// Value evaluates the node, reusing the memo when every input's version is
// unchanged since the last computation. Errors from inputs or from the
// operation are wrapped with the node's name.
func (n *node) Value() (mat.Matrix, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	// Evaluate inputs first so their versions are current
	values := make([]mat.Matrix, len(n.inputs))
	versions := make([]uint64, len(n.inputs))
	for i, in := range n.inputs {
		v, err := in.Value()
		if err != nil {
			return nil, errors.Wrapf(err, "node %s", n.name)
		}
		values[i] = v
		versions[i] = in.Version()
	}

	if n.memo != nil && versionsEqual(n.memoVersions, versions) {
		return n.memo, nil
	}

	out, err := n.op(values...)
	if err != nil {
		return nil, errors.Wrapf(err, "node %s", n.name)
	}

	n.memo = out
	n.memoVersions = versions
	n.version++
	return out, nil
}

// Version returns the number of times the node has been recomputed.
func (n *node) Version() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.version
}

func versionsEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
