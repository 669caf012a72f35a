// Package point はポイント付与率の計算を提供する。
package point

// RateProvider は決済金額から付与ポイントを算出するインターフェース。
// 付与ポリシーはプロバイダー側が所有し、サービス層は結果のみを利用する。
type RateProvider interface {
	// CalculateAmount は金額amountに対する付与ポイントを返す。
	// 戻り値は常に0以上。
	CalculateAmount(amount int) int
}

// RateCalculator は固定割合でポイントを算出するRateProvider実装。
type RateCalculator struct {
	ratePercent int
}

// NewRateCalculator は付与率ratePercent（%）のRateCalculatorを生成する。
func NewRateCalculator(ratePercent int) *RateCalculator {
	return &RateCalculator{ratePercent: ratePercent}
}

// CalculateAmount は金額のratePercent%を切り捨てで算出する。
// 金額が0以下の場合は0を返す。
func (c *RateCalculator) CalculateAmount(amount int) int {
	if amount <= 0 {
		return 0
	}
	return amount * c.ratePercent / 100
}

// compile-time interface check
var _ RateProvider = (*RateCalculator)(nil)
