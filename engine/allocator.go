package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AllocateProportional 按历史消费占比分配总预算。
// 各类别分配 = round(该类别历史消费 / 历史总消费 × totalBudget, 2)。
// 逐类别四舍五入会让合计偏离总预算（每个类别至多 1 分），差额统一计入
// 历史消费最高的类别，保证分配合计恰好等于总预算。
// 没有历史数据（映射为空或合计为 0）时返回 ErrInsufficientHistory。
// 同样的输入永远产生同样的输出。
func AllocateProportional(totalBudget float64, categorySpend map[string]float64) (map[string]float64, error) {
	if totalBudget <= 0 {
		return nil, &ValidationError{Reason: "总预算必须大于 0"}
	}
	if len(categorySpend) == 0 {
		return nil, ErrInsufficientHistory
	}

	sum := decimal.Zero
	for category, spent := range categorySpend {
		if spent < 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("类别 %s 的历史消费为负数: %v", category, spent)}
		}
		sum = sum.Add(decimal.NewFromFloat(spent))
	}
	if !sum.IsPositive() {
		return nil, ErrInsufficientHistory
	}

	total := decimal.NewFromFloat(totalBudget)
	allocation := make(map[string]float64, len(categorySpend))
	allocated := decimal.Zero

	// 差额归属的类别：历史消费最高，并列时取名称最小的，保证结果确定
	var largest string
	largestSpend := -1.0
	for category, spent := range categorySpend {
		share := decimal.NewFromFloat(spent).Div(sum).Mul(total).Round(2)
		allocated = allocated.Add(share)
		allocation[category], _ = share.Float64()
		if spent > largestSpend || (spent == largestSpend && category < largest) {
			largestSpend = spent
			largest = category
		}
	}

	if remainder := total.Sub(allocated); !remainder.IsZero() {
		adjusted := decimal.NewFromFloat(allocation[largest]).Add(remainder)
		allocation[largest], _ = adjusted.Float64()
	}
	return allocation, nil
}
