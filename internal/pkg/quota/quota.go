// Package quota 定义套餐与其文件数量、存储容量上限的对应关系
package quota

import "strings"

// Plan 套餐名
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
	PlanForever Plan = "forever"
)

const (
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)

// Limits 一个套餐允许的最大文件数和最大总字节数
type Limits struct {
	MaxCount int64 `json:"maxCount"`
	MaxBytes int64 `json:"maxBytes"`
}

var table = map[Plan]Limits{
	PlanBasic:   {MaxCount: 10, MaxBytes: 50 * MiB},
	PlanPremium: {MaxCount: 500, MaxBytes: 1 * GiB},
	PlanForever: {MaxCount: 3000, MaxBytes: 5 * GiB},
}

// Normalize 把任意输入映射到已知套餐，未知或为空时返回 basic
func Normalize(plan string) Plan {
	p := Plan(strings.ToLower(strings.TrimSpace(plan)))
	if _, ok := table[p]; ok {
		return p
	}
	return PlanBasic
}

// IsKnown 是否为已定义的套餐
func IsKnown(plan string) bool {
	_, ok := table[Plan(strings.ToLower(strings.TrimSpace(plan)))]
	return ok
}

// IsPaid 付费套餐才需要走支付流程
func IsPaid(plan string) bool {
	return IsKnown(plan) && Normalize(plan) != PlanBasic
}

// Resolve 返回套餐的配额，对任意输入都有定义
func Resolve(plan string) Limits {
	return table[Normalize(plan)]
}

// Admit 判断在已有 count 个文件、共 used 字节的情况下能否再放入 size 字节的文件。
// 数量和容量是两道独立的关卡，先检查数量。
func (l Limits) Admit(count, used, size int64) error {
	if count >= l.MaxCount {
		return ErrCountExceeded
	}
	if used+size > l.MaxBytes {
		return ErrStorageExceeded
	}
	return nil
}

var rank = map[Plan]int{PlanBasic: 0, PlanPremium: 1, PlanForever: 2}

// Below 返回比 plan 低的套餐，用于只升级不降级
func Below(plan string) []string {
	target := rank[Normalize(plan)]
	out := make([]string, 0, len(rank))
	for _, p := range []Plan{PlanBasic, PlanPremium, PlanForever} {
		if rank[p] < target {
			out = append(out, string(p))
		}
	}
	return out
}
