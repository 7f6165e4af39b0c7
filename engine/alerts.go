package engine

import (
	"fmt"
	"strconv"
)

// AlertThreshold 触发超支预警的 消费/预算 比例阈值
const AlertThreshold = 0.8

// EvaluateAlerts 对比各类别消费与预算分配，返回超支预警。
// 仅对分配金额大于 0 的类别计算 消费/分配 比例，比例严格大于阈值时产出一条
// 预警文案；未超限的类别在结果中不出现（没有零值占位）。
// 预警文案是对外的固定格式，消费端按类别展示：
//
//	Warning! You have spent {spent} out of {allocated} in {category}.
//
// 结果不落库，每次调用重新计算。
func EvaluateAlerts(allocation, currentSpend map[string]float64) map[string]string {
	alerts := make(map[string]string)
	for category, allocated := range allocation {
		if allocated <= 0 {
			continue
		}
		spent := currentSpend[category]
		if spent/allocated > AlertThreshold {
			alerts[category] = fmt.Sprintf("Warning! You have spent %s out of %s in %s.",
				formatAmount(spent), formatAmount(allocated), category)
		}
	}
	return alerts
}

// formatAmount 输出实际金额，去掉无意义的小数位（300.00 → 300，250.5 → 250.5）
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
