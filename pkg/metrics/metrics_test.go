package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRoundtrip(t *testing.T) {
	require.NoError(t, InitMetrics(t.TempDir()))
	defer func() { _ = Close() }()

	SetGauge("system_cpuuse", 4200)
	assert.Equal(t, int64(4200), GetGauge("system_cpuuse"))

	SetGauge("system_cpuuse", 100)
	assert.Equal(t, int64(100), GetGauge("system_cpuuse"))

	IncrCounter("orders_total", 1)
	IncrCounter("orders_total", 2)
	assert.Equal(t, int64(3), GetCounter("orders_total"))

	assert.Equal(t, int64(0), GetGauge("missing"))
	assert.Equal(t, int64(0), GetCounter("missing"))
}

func TestMetricsUninitializedIsSafe(t *testing.T) {
	require.NoError(t, Close())

	SetGauge("g", 1)
	IncrCounter("c", 1)
	assert.Equal(t, int64(0), GetGauge("g"))
	assert.Equal(t, int64(0), GetCounter("c"))
}
