package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRegistered(t *testing.T) {
	SyncPassesTotal.WithLabelValues(PassSucceeded).Inc()
	SyncItemsTotal.WithLabelValues("created").Inc()
	DetailMissesTotal.Inc()
	SyncPassDuration.Observe(0.2)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	for _, want := range []string{
		"sermon_sync_passes_total",
		"sermon_sync_items_total",
		"sermon_sync_detail_misses_total",
		"sermon_sync_publish_errors_total",
		"sermon_sync_pass_duration_seconds",
	} {
		assert.True(t, names[want], want)
	}
}

func TestPassCounterLabels(t *testing.T) {
	before := testutil.ToFloat64(SyncPassesTotal.WithLabelValues(PassFailed))
	SyncPassesTotal.WithLabelValues(PassFailed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SyncPassesTotal.WithLabelValues(PassFailed)))
}
