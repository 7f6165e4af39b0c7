package engine

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AI 输出不可信：预期是 {"类别": 金额} 形状的 JSON 对象，但实际回复可能
// 夹杂说明文字、markdown 代码块，金额可能写成字符串，也可能漏掉部分类别。
// 解析按类别逐个取值，结果分为 已解析 / 缺失 / 无法解析 三种，后两种一律
// 折算为 0——AI 回复异常不应中断用户的预算流程。

type amountState int

const (
	amountParsed amountState = iota
	amountMissing
	amountUnparsable
)

type parsedAmount struct {
	value float64
	state amountState
}

// fold 将解析结果折算为最终金额，缺失或无法解析按 0 处理
func (p parsedAmount) fold() float64 {
	if p.state != amountParsed {
		return 0
	}
	return p.value
}

// ParseAllocation 从 AI 回复文本中提取各请求类别的分配金额。
// 请求中的每个类别在结果里都有一项，回复里没有的按 0。
func ParseAllocation(text string, categories []string) map[string]float64 {
	raw := extractJSONObject(text)
	allocation := make(map[string]float64, len(categories))
	for _, category := range categories {
		allocation[category] = lookupAmount(raw, category).fold()
	}
	return allocation
}

// extractJSONObject 提取文本中首个 { 到末个 } 之间的 JSON 对象。
// 解析失败返回空映射，调用方会把所有类别按缺失处理。
func extractJSONObject(text string) map[string]json.RawMessage {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil
	}
	return raw
}

func lookupAmount(raw map[string]json.RawMessage, category string) parsedAmount {
	msg, ok := raw[category]
	if !ok {
		return parsedAmount{state: amountMissing}
	}

	var num float64
	if err := json.Unmarshal(msg, &num); err == nil {
		if num < 0 {
			return parsedAmount{state: amountUnparsable}
		}
		return parsedAmount{value: num, state: amountParsed}
	}

	// 金额写成了字符串，如 "500"
	var str string
	if err := json.Unmarshal(msg, &str); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil && v >= 0 {
			return parsedAmount{value: v, state: amountParsed}
		}
	}
	return parsedAmount{state: amountUnparsable}
}
