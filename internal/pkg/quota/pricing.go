package quota

import (
	"math"
	"strings"
)

// DefaultCurrency 未配置时的结算币种
const DefaultCurrency = "GHS"

// Pricing 付费套餐的最低售价，金额为 Currency 的最小货币单位
type Pricing struct {
	Currency string
	Minimum  map[Plan]int64
}

// NewPricing 由主货币单位的价格表构造 Pricing，未知套餐名被忽略
func NewPricing(currency string, major map[string]float64) Pricing {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	p := Pricing{Currency: currency, Minimum: make(map[Plan]int64, len(major))}
	for name, amount := range major {
		if !IsKnown(name) {
			continue
		}
		p.Minimum[Normalize(name)] = int64(math.Round(amount * 100))
	}
	return p
}

// MinimumFor 返回套餐最低价，ok 为 false 表示付费套餐没有配置价格
func (p Pricing) MinimumFor(plan string) (int64, bool) {
	if !IsPaid(plan) {
		return 0, true
	}
	amount, ok := p.Minimum[Normalize(plan)]
	return amount, ok
}

// Covers 判断一笔已确认的交易是否足以购买 plan。
// 免费套餐总是满足；币种不一致或未配置价格的付费套餐不满足。
func (p Pricing) Covers(plan string, amount int64, currency string) bool {
	if !IsPaid(plan) {
		return true
	}
	if !strings.EqualFold(strings.TrimSpace(currency), p.Currency) {
		return false
	}
	minimum, ok := p.MinimumFor(plan)
	return ok && amount >= minimum
}
