package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"fintrack/engine"
	"fintrack/models"
)

// AIAllocator 调用外部大模型服务生成预算分配建议。
// 这是系统里唯一依赖外部服务的组件：调用是否成功取决于网络和对端状态，
// 回复内容也不可信，解析统一走 engine.ParseAllocation 的宽松策略。
type AIAllocator struct {
	model  models.AIModel
	client *http.Client
}

// NewAIAllocator 创建 AI 分配器
func NewAIAllocator(model models.AIModel, timeout time.Duration) *AIAllocator {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AIAllocator{
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

// AllocationRequest AI 预算分配请求参数
type AllocationRequest struct {
	TotalBudget   float64
	Categories    []string
	Lookback      engine.Lookback
	CategorySpend map[string]float64 // 窗口内各类别历史消费，作为提示词上下文
}

// chatCompletionResponse OpenAI 兼容接口的非流式回复（只取需要的字段）
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// RequestAllocation 请求 AI 生成各类别的预算分配。
// 网络或服务故障返回 engine.ErrAIUnavailable，调用方可重试；
// 回复内容异常不报错，缺失或无法解析的类别按 0 处理。
func (a *AIAllocator) RequestAllocation(ctx context.Context, req AllocationRequest) (map[string]float64, error) {
	if req.TotalBudget <= 0 {
		return nil, &engine.ValidationError{Reason: "总预算必须大于 0"}
	}
	if len(req.Categories) == 0 {
		return nil, &engine.ValidationError{Reason: "类别列表不能为空"}
	}
	if !req.Lookback.Valid() {
		return nil, &engine.ValidationError{Reason: "不支持的时间窗口: " + string(req.Lookback)}
	}

	prompt := buildAllocationPrompt(req)

	// 构建请求体（OpenAI 兼容格式，非流式）
	requestBody := map[string]interface{}{
		"model": a.model.Name,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	url := strings.TrimRight(a.model.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.model.APIKey)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: 状态码 %d %s", engine.ErrAIUnavailable, resp.StatusCode, string(body))
	}

	// 回复体异常按空内容处理：所有类别折算为 0，不中断用户流程
	var completion chatCompletionResponse
	content := ""
	if err := json.NewDecoder(resp.Body).Decode(&completion); err == nil && len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}

	return engine.ParseAllocation(content, req.Categories), nil
}

// buildAllocationPrompt 构建分配提示词，嵌入总预算、类别列表和历史消费上下文
func buildAllocationPrompt(req AllocationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请为用户制定预算分配方案。总预算为 %.2f 元，需要分配到以下类别：%s。\n",
		req.TotalBudget, strings.Join(req.Categories, "、"))
	fmt.Fprintf(&b, "参考时间窗口：%s。\n", req.Lookback.Label())

	if len(req.CategorySpend) > 0 {
		b.WriteString("该窗口内的历史消费情况：\n")
		categories := make([]string, 0, len(req.CategorySpend))
		for category := range req.CategorySpend {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "- %s: %.2f 元\n", category, req.CategorySpend[category])
		}
	}

	b.WriteString("\n请只返回一个 JSON 对象，键为类别名称，值为分配金额（数字，单位元），不要包含其他文字。\n")
	b.WriteString("各类别金额之和不得超过总预算。")
	return b.String()
}
