package model

// BaseEstimator は全ての学習器に埋め込まれる基底構造体。
// 学習済みフラグの管理のみを担当する。
type BaseEstimator struct {
	fitted bool
}

// IsFitted はモデルが学習済みかどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.fitted
}

// SetFitted はモデルを学習済み状態に設定する
func (e *BaseEstimator) SetFitted() {
	e.fitted = true
}

// Reset はモデルを未学習状態に戻す
func (e *BaseEstimator) Reset() {
	e.fitted = false
}
