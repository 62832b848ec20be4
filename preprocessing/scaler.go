package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/stackgo/core/model"
	"github.com/YuminosukeSato/stackgo/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler は特徴量を列ごとに平均0、標準偏差1へ標準化するスケーラー
// 学習時に計算した統計量を保持し、推論データにも同じ変換を適用する
type StandardScaler struct {
	model.BaseEstimator // BaseEstimatorを埋め込み

	mean      []float64 // 各特徴量の平均値
	scale     []float64 // 各特徴量の標準偏差
	nFeatures int       // 特徴量の数
}

// NewStandardScaler は新しいStandardScalerを作成する
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit は訓練データから各列の平均と標準偏差を計算する
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer errors.Recover(&err, "StandardScaler.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.nFeatures = c
	s.mean = make([]float64, c)
	s.scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		s.mean[j] = stat.Mean(col, nil)
		s.scale[j] = stat.PopStdDev(col, nil)

		// 定数列はゼロ除算になるためスケールを1に固定する
		if s.scale[j] < 1e-8 {
			s.scale[j] = 1.0
		}
	}

	// NaN/Infを含む入力は統計量に伝播するため、ここで検出する
	if err := errors.CheckNumericalStability("StandardScaler.Fit", s.mean); err != nil {
		return err
	}
	if err := errors.CheckNumericalStability("StandardScaler.Fit", s.scale); err != nil {
		return err
	}

	s.SetFitted()
	return nil
}

// Transform は学習済みの統計量でデータを標準化する
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.nFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.mean[j])/s.scale[j])
		}
	}

	return result, nil
}

// FitTransform は訓練データで学習し、そのまま同じデータを変換する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.nFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.nFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.scale[j]+s.mean[j])
		}
	}

	return result, nil
}

// Mean は学習された各特徴量の平均値を返す
func (s *StandardScaler) Mean() []float64 {
	if s.mean == nil {
		return nil
	}
	mean := make([]float64, len(s.mean))
	copy(mean, s.mean)
	return mean
}

// Scale は学習された各特徴量の標準偏差を返す
func (s *StandardScaler) Scale() []float64 {
	if s.scale == nil {
		return nil
	}
	scale := make([]float64, len(s.scale))
	copy(scale, s.scale)
	return scale
}

// String はスケーラーの文字列表現を返す
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.nFeatures)
}
