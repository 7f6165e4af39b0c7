// Package engine 实现预算分配与超支预警的核心计算。
// 包内函数均为纯函数：不读写数据库、不持有状态，可被多个请求并发调用。
// 消费记录由调用方按用户和时间范围筛选后传入。
package engine

import (
	"fmt"
	"sort"
	"time"

	"fintrack/models"
)

// Bucket 时间汇总粒度
type Bucket string

const (
	BucketDay  Bucket = "day"
	BucketWeek Bucket = "week"
)

// PeriodTotal 单个时间段的消费合计
type PeriodTotal struct {
	Bucket string  `json:"bucket"` // 段起始日期，格式 2006-01-02
	Total  float64 `json:"total"`
}

// SummarizeByCategory 按类别汇总消费金额。
// 类别名原样作为分组键，区分大小写，不做任何归一化。
// 金额非正或类别为空说明数据在录入边界漏检，直接返回 ValidationError，不静默按 0 处理。
func SummarizeByCategory(expenses []models.Expense) (map[string]float64, error) {
	totals := make(map[string]float64, len(expenses))
	for _, e := range expenses {
		if err := checkExpense(e); err != nil {
			return nil, err
		}
		totals[e.Category] += e.Amount
	}
	return totals, nil
}

// SummarizeByPeriod 按天或按周汇总消费金额，周以周一为起点。
// 结果按段起始日期升序排列。
func SummarizeByPeriod(expenses []models.Expense, bucket Bucket) ([]PeriodTotal, error) {
	if bucket != BucketDay && bucket != BucketWeek {
		return nil, &ValidationError{Reason: "不支持的汇总粒度: " + string(bucket)}
	}
	totals := make(map[string]float64)
	for _, e := range expenses {
		if err := checkExpense(e); err != nil {
			return nil, err
		}
		key := bucketStart(e.ExpenseTime, bucket).Format("2006-01-02")
		totals[key] += e.Amount
	}
	out := make([]PeriodTotal, 0, len(totals))
	for k, v := range totals {
		out = append(out, PeriodTotal{Bucket: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

// bucketStart 计算时间所属段的起始日期（零点）
func bucketStart(t time.Time, bucket Bucket) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if bucket == BucketDay {
		return day
	}
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func checkExpense(e models.Expense) error {
	if e.Amount <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("消费记录金额无效: %v", e.Amount)}
	}
	if e.Category == "" {
		return &ValidationError{Reason: "消费记录类别不能为空"}
	}
	return nil
}
