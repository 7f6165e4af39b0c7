package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateProportional(t *testing.T) {
	allocation, err := AllocateProportional(400, map[string]float64{
		"Food":      300,
		"Transport": 100,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Food": 300, "Transport": 100}, allocation)
}

func TestAllocateProportional_NoHistory(t *testing.T) {
	_, err := AllocateProportional(400, map[string]float64{})
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	// 有类别但消费全为 0 同样视为无历史数据
	_, err = AllocateProportional(400, map[string]float64{"餐饮": 0, "交通": 0})
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestAllocateProportional_ZeroSpendCategory(t *testing.T) {
	allocation, err := AllocateProportional(500, map[string]float64{
		"餐饮": 200,
		"娱乐": 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, allocation["娱乐"])
	assert.Equal(t, 500.0, allocation["餐饮"])
}

func TestAllocateProportional_RoundingReconciled(t *testing.T) {
	// 三个类别均分 100：逐个四舍五入得 33.33×3 = 99.99，
	// 差额 0.01 计入消费最高的类别（并列时取名称最小的 a）
	allocation, err := AllocateProportional(100, map[string]float64{
		"a": 10,
		"b": 10,
		"c": 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 33.34, allocation["a"])
	assert.Equal(t, 33.33, allocation["b"])
	assert.Equal(t, 33.33, allocation["c"])
}

func TestAllocateProportional_SumEqualsTotal(t *testing.T) {
	cases := []struct {
		total float64
		spend map[string]float64
	}{
		{1000, map[string]float64{"餐饮": 321.77, "交通": 88.4, "购物": 199.99, "娱乐": 45.5}},
		{777.77, map[string]float64{"a": 1, "b": 2, "c": 4}},
		{50, map[string]float64{"餐饮": 0.01, "交通": 0.02}},
		{3000, map[string]float64{"住房": 1500, "餐饮": 900, "其他": 33.33}},
	}
	for _, tc := range cases {
		allocation, err := AllocateProportional(tc.total, tc.spend)
		require.NoError(t, err)
		require.Len(t, allocation, len(tc.spend))
		var sum float64
		for _, v := range allocation {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, tc.total, sum, 1e-9, "分配合计应等于总预算")
	}
}

func TestAllocateProportional_Deterministic(t *testing.T) {
	spend := map[string]float64{"餐饮": 123.45, "交通": 67.89, "购物": 200}
	first, err := AllocateProportional(999.99, spend)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := AllocateProportional(999.99, spend)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAllocateProportional_InvalidInput(t *testing.T) {
	_, err := AllocateProportional(0, map[string]float64{"餐饮": 100})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = AllocateProportional(-10, map[string]float64{"餐饮": 100})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = AllocateProportional(100, map[string]float64{"餐饮": -1})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.False(t, errors.Is(err, ErrInsufficientHistory))
}

func TestAllocateProportional_TwoDecimalPlaces(t *testing.T) {
	allocation, err := AllocateProportional(100, map[string]float64{"a": 1, "b": 2})
	require.NoError(t, err)
	for _, v := range allocation {
		cents := v * 100
		assert.InDelta(t, math.Round(cents), cents, 1e-6, "金额应精确到分")
	}
}
