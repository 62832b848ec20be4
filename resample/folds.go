// Package resample provides deterministic k-fold partitions of row indices
// and the row-selection operations built on them.
//
// A partition produced by KFold divides the rows 0..n-1 into k contiguous
// blocks whose sizes differ by at most one, with the larger blocks first.
// Restrict selects the rows of one fold, Corestrict selects the rows of its
// complement. Because folds are contiguous and ordered, concatenating the
// per-fold restrictions in fold order reproduces the original row order,
// which is what makes out-of-sample prediction tables assemblable by plain
// concatenation.
package resample

import (
	"github.com/YuminosukeSato/stackgo/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Folds is a k-fold partition of row indices. Each element holds the sorted,
// contiguous row indices of one fold.
type Folds [][]int

// KFold partitions n rows into k contiguous folds.
//
// Fold sizes differ by at most one; when n is not divisible by k the first
// n mod k folds receive one extra row. Returns an InvalidPartitionError
// unless 2 <= k <= n.
func KFold(n, k int) (Folds, error) {
	if k < 2 || k > n {
		return nil, errors.NewInvalidPartitionError("KFold", k, n)
	}

	folds := make(Folds, k)
	foldSize := n / k
	remainder := n % k

	currentIdx := 0
	for i := 0; i < k; i++ {
		size := foldSize
		if i < remainder {
			size++
		}

		indices := make([]int, size)
		for j := 0; j < size; j++ {
			indices[j] = currentIdx + j
		}
		folds[i] = indices

		currentIdx += size
	}

	return folds, nil
}

// NumFolds returns the number of folds in the partition.
func (f Folds) NumFolds() int {
	return len(f)
}

// Rows returns the total number of rows covered by the partition.
func (f Folds) Rows() int {
	total := 0
	for _, fold := range f {
		total += len(fold)
	}
	return total
}

// Complement returns the indices of all folds except fold i, concatenated in
// fold order. For a contiguous partition this preserves the original row
// order of the retained rows.
func (f Folds) Complement(i int) ([]int, error) {
	if i < 0 || i >= len(f) {
		return nil, errors.NewFoldIndexError("Complement", i, len(f))
	}

	indices := make([]int, 0, f.Rows()-len(f[i]))
	for j, fold := range f {
		if j == i {
			continue
		}
		indices = append(indices, fold...)
	}
	return indices, nil
}

// Restrict returns the rows of X belonging to fold i.
//
// X must have exactly as many rows as the partition covers; the result is a
// fresh matrix sharing no storage with X.
func (f Folds) Restrict(X mat.Matrix, i int) (mat.Matrix, error) {
	if i < 0 || i >= len(f) {
		return nil, errors.NewFoldIndexError("Restrict", i, len(f))
	}
	if err := f.checkRows("Restrict", X); err != nil {
		return nil, err
	}

	return takeRows(X, f[i]), nil
}

// Corestrict returns the rows of X belonging to the complement of fold i,
// in original row order.
func (f Folds) Corestrict(X mat.Matrix, i int) (mat.Matrix, error) {
	indices, err := f.Complement(i)
	if err != nil {
		return nil, errors.Wrap(err, "Corestrict")
	}
	if err := f.checkRows("Corestrict", X); err != nil {
		return nil, err
	}

	return takeRows(X, indices), nil
}

// checkRows verifies that X covers exactly the partitioned rows.
func (f Folds) checkRows(op string, X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if want := f.Rows(); r != want {
		return errors.NewDimensionError(op, want, r, 0)
	}
	return nil
}

// TakeRows returns the rows of X selected by indices, in the given order.
// Returns a FoldIndexError if any index falls outside the rows of X.
func TakeRows(X mat.Matrix, indices []int) (mat.Matrix, error) {
	if len(indices) == 0 {
		return nil, errors.NewModelError("TakeRows", "empty index list", errors.ErrEmptyData)
	}
	r, _ := X.Dims()
	for _, idx := range indices {
		if idx < 0 || idx >= r {
			return nil, errors.NewFoldIndexError("TakeRows", idx, r)
		}
	}
	return takeRows(X, indices), nil
}

// takeRows copies the selected rows into a fresh dense matrix.
func takeRows(X mat.Matrix, indices []int) *mat.Dense {
	_, cols := X.Dims()
	out := mat.NewDense(len(indices), cols, nil)

	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			out.Set(i, j, X.At(idx, j))
		}
	}

	return out
}
