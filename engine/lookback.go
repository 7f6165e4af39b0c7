package engine

// Lookback AI 预算分配参考的历史时间窗口
type Lookback string

const (
	Lookback1Month  Lookback = "1month"
	Lookback3Months Lookback = "3months"
	Lookback6Months Lookback = "6months"
	Lookback1Year   Lookback = "1year"
)

// Months 窗口对应的月数，非法取值返回 0
func (l Lookback) Months() int {
	switch l {
	case Lookback1Month:
		return 1
	case Lookback3Months:
		return 3
	case Lookback6Months:
		return 6
	case Lookback1Year:
		return 12
	}
	return 0
}

// Valid 判断窗口取值是否合法
func (l Lookback) Valid() bool {
	return l.Months() > 0
}

// Label 提示词中使用的中文描述
func (l Lookback) Label() string {
	switch l {
	case Lookback1Month:
		return "近1个月"
	case Lookback3Months:
		return "近3个月"
	case Lookback6Months:
		return "近6个月"
	case Lookback1Year:
		return "近1年"
	}
	return string(l)
}
