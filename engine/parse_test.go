package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAllocation_CleanJSON(t *testing.T) {
	text := `{"Food": 500, "Travel": 300}`
	allocation := ParseAllocation(text, []string{"Food", "Travel"})
	assert.Equal(t, map[string]float64{"Food": 500, "Travel": 300}, allocation)
}

func TestParseAllocation_MissingCategory(t *testing.T) {
	// 回复缺少的类别按 0 补齐
	text := `{"Food": 500}`
	allocation := ParseAllocation(text, []string{"Food", "Travel"})
	assert.Equal(t, map[string]float64{"Food": 500, "Travel": 0}, allocation)
}

func TestParseAllocation_SurroundingText(t *testing.T) {
	text := "好的，根据您的历史消费，建议如下分配：\n```json\n{\"餐饮\": 1200.50, \"交通\": 300}\n```\n请根据实际情况调整。"
	allocation := ParseAllocation(text, []string{"餐饮", "交通"})
	assert.Equal(t, map[string]float64{"餐饮": 1200.50, "交通": 300}, allocation)
}

func TestParseAllocation_StringAmount(t *testing.T) {
	// 金额写成字符串也能解析
	text := `{"餐饮": "800", "交通": "abc"}`
	allocation := ParseAllocation(text, []string{"餐饮", "交通"})
	assert.Equal(t, map[string]float64{"餐饮": 800, "交通": 0}, allocation)
}

func TestParseAllocation_NegativeAmount(t *testing.T) {
	// 负数金额视为无法解析，按 0 处理
	text := `{"餐饮": -100}`
	allocation := ParseAllocation(text, []string{"餐饮"})
	assert.Equal(t, map[string]float64{"餐饮": 0}, allocation)
}

func TestParseAllocation_Garbage(t *testing.T) {
	// 完全不是 JSON 的回复：所有类别按 0，不报错
	for _, text := range []string{"", "抱歉，我无法完成这个请求。", "{broken json", "[1,2,3]"} {
		allocation := ParseAllocation(text, []string{"Food", "Travel"})
		assert.Equal(t, map[string]float64{"Food": 0, "Travel": 0}, allocation, "text=%q", text)
	}
}
