package stack

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/stackgo/linear"
)

// benchData generates a regression problem with a mild curvature in the
// first feature, so the two base learners disagree and the adjudicator
// has something to combine.
func benchData(rows, cols int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(42, 42))

	X := mat.NewDense(rows, cols, nil)
	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sum := 1.0
		for j := 0; j < cols; j++ {
			v := rng.Float64()*2.0 - 1.0
			X.Set(i, j, v)
			sum += v * float64(j+1) * 0.5
		}
		first := X.At(i, 0)
		sum += first * first
		sum += (rng.Float64() - 0.5) * 0.1
		y.Set(i, 0, sum)
	}
	return X, y
}

// BenchmarkStackFit measures a full training pass: fold slicing, the
// parallel fold and full-data fits, and the adjudicator fit on the
// out-of-sample table.
func BenchmarkStackFit(b *testing.B) {
	sizes := []struct {
		name  string
		rows  int
		cols  int
		folds int
	}{
		{"Small_100x5_k3", 100, 5, 3},
		{"Medium_1000x10_k5", 1000, 10, 5},
		{"Large_5000x10_k5", 5000, 10, 5},
		{"Large_5000x10_k10", 5000, 10, 10},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := benchData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				s := New(linear.NewRidge(1.0), size.folds,
					linear.NewLinearRegression(),
					linear.NewRidge(0.1),
				)
				if err := s.Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkStackPredict measures inference only. Every call rebinds the
// query source, so the whole prediction subgraph is re-evaluated each
// iteration.
func BenchmarkStackPredict(b *testing.B) {
	X, y := benchData(2000, 10)
	s := New(linear.NewRidge(1.0), 5,
		linear.NewLinearRegression(),
		linear.NewRidge(0.1),
	)
	if err := s.Fit(X, y); err != nil {
		b.Fatal(err)
	}

	XQuery, _ := benchData(500, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Predict(XQuery); err != nil {
			b.Fatal(err)
		}
	}
}
