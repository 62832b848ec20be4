package network

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stackgo/pkg/errors"
)

// Sum returns a node computing the elementwise sum of its inputs.
// All inputs must share the same dimensions.
func Sum(name string, inputs ...Node) Node {
	return Apply(name, func(ms ...mat.Matrix) (mat.Matrix, error) {
		if len(ms) == 0 {
			return nil, errors.NewValueError("Sum", "no inputs")
		}

		r, c := ms[0].Dims()
		out := mat.NewDense(r, c, nil)
		for _, m := range ms {
			if err := checkSameDims("Sum", r, c, m); err != nil {
				return nil, err
			}
			out.Add(out, m)
		}
		return out, nil
	}, inputs...)
}

// Mean returns a node computing the elementwise mean of its inputs.
// All inputs must share the same dimensions. Averaging the predictions of
// several machines over the same input is how a homogeneous ensemble folds
// its members into one output.
func Mean(name string, inputs ...Node) Node {
	return Apply(name, func(ms ...mat.Matrix) (mat.Matrix, error) {
		if len(ms) == 0 {
			return nil, errors.NewValueError("Mean", "no inputs")
		}

		r, c := ms[0].Dims()
		out := mat.NewDense(r, c, nil)
		for _, m := range ms {
			if err := checkSameDims("Mean", r, c, m); err != nil {
				return nil, err
			}
			out.Add(out, m)
		}
		out.Scale(1/float64(len(ms)), out)
		return out, nil
	}, inputs...)
}

// ColBind returns a node concatenating its inputs horizontally, in input
// order. All inputs must have the same number of rows. Binding one
// prediction column per base learner is how an adjudicator's training table
// is assembled.
func ColBind(name string, inputs ...Node) Node {
	return Apply(name, func(ms ...mat.Matrix) (mat.Matrix, error) {
		if len(ms) == 0 {
			return nil, errors.NewValueError("ColBind", "no inputs")
		}

		rows, _ := ms[0].Dims()
		totalCols := 0
		for _, m := range ms {
			r, c := m.Dims()
			if r != rows {
				return nil, errors.NewDimensionError("ColBind", rows, r, 0)
			}
			totalCols += c
		}

		out := mat.NewDense(rows, totalCols, nil)
		col := 0
		for _, m := range ms {
			_, c := m.Dims()
			for i := 0; i < rows; i++ {
				for j := 0; j < c; j++ {
					out.Set(i, col+j, m.At(i, j))
				}
			}
			col += c
		}
		return out, nil
	}, inputs...)
}

// RowBind returns a node concatenating its inputs vertically, in input
// order. All inputs must have the same number of columns. Concatenating
// per-fold predictions over a contiguous partition reassembles a full-height
// out-of-sample column.
func RowBind(name string, inputs ...Node) Node {
	return Apply(name, func(ms ...mat.Matrix) (mat.Matrix, error) {
		if len(ms) == 0 {
			return nil, errors.NewValueError("RowBind", "no inputs")
		}

		_, cols := ms[0].Dims()
		totalRows := 0
		for _, m := range ms {
			r, c := m.Dims()
			if c != cols {
				return nil, errors.NewDimensionError("RowBind", cols, c, 1)
			}
			totalRows += r
		}

		out := mat.NewDense(totalRows, cols, nil)
		row := 0
		for _, m := range ms {
			r, _ := m.Dims()
			for i := 0; i < r; i++ {
				for j := 0; j < cols; j++ {
					out.Set(row+i, j, m.At(i, j))
				}
			}
			row += r
		}
		return out, nil
	}, inputs...)
}

func checkSameDims(op string, rows, cols int, m mat.Matrix) error {
	r, c := m.Dims()
	if r != rows {
		return errors.NewDimensionError(op, rows, r, 0)
	}
	if c != cols {
		return errors.NewDimensionError(op, cols, c, 1)
	}
	return nil
}
