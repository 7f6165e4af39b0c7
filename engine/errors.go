package engine

import "errors"

var (
	// ErrInsufficientHistory 无历史消费数据，无法按占比分配，需要用户手动设置分配
	ErrInsufficientHistory = errors.New("缺少历史消费数据，无法按比例分配")
	// ErrAIUnavailable AI 服务不可用（网络、鉴权、限额），调用方可重试
	ErrAIUnavailable = errors.New("AI 服务暂时不可用")
	// ErrNotFound 预算不存在或不属于当前用户
	ErrNotFound = errors.New("记录不存在")
)

// ValidationError 调用方传入的数据不合法，不可重试
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation 判断是否为参数校验错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
