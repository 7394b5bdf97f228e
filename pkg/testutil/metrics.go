package testutil

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// CollectHistogramCount returns the sample count recorded for one child of a
// histogram vector.
func CollectHistogramCount(t *testing.T, vec *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()

	observer, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)

	histogram, ok := observer.(prometheus.Histogram)
	require.True(t, ok, "observer is not a histogram")

	var m dto.Metric
	require.NoError(t, histogram.Write(&m))
	return m.GetHistogram().GetSampleCount()
}
