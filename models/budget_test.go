package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationMap_ValueScan(t *testing.T) {
	m := AllocationMap{"餐饮": 1200.50, "交通": 300}

	v, err := m.Value()
	require.NoError(t, err)

	var out AllocationMap
	require.NoError(t, out.Scan(v))
	assert.Equal(t, m, out)
}

func TestAllocationMap_ScanBytes(t *testing.T) {
	var m AllocationMap
	require.NoError(t, m.Scan([]byte(`{"餐饮":100.5}`)))
	assert.InDelta(t, 100.5, m["餐饮"], 0.0001)
}

func TestAllocationMap_ScanNil(t *testing.T) {
	var m AllocationMap
	require.NoError(t, m.Scan(nil))
	assert.NotNil(t, m)
	assert.Empty(t, m)
}

func TestAllocationMap_NilValue(t *testing.T) {
	var m AllocationMap
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestAllocationMap_ScanInvalidType(t *testing.T) {
	var m AllocationMap
	assert.Error(t, m.Scan(123))
}
