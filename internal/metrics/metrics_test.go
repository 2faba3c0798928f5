// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(JobsSubmitted)
	JobsSubmitted.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(JobsSubmitted))

	beforeHits := testutil.ToFloat64(CacheRequests.WithLabelValues("hit"))
	CacheRequests.WithLabelValues("hit").Inc()
	assert.Equal(t, beforeHits+1, testutil.ToFloat64(CacheRequests.WithLabelValues("hit")))
}

func TestGaugeSet(t *testing.T) {
	ModelsStored.Set(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(ModelsStored))
}

func TestMetricsRegistered(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, family := range families {
		byName[family.GetName()] = family
	}

	for _, name := range []string{
		"biodivine_models_stored",
		"biodivine_jobs_submitted_total",
		"biodivine_job_duration_seconds",
	} {
		family, ok := byName[name]
		require.True(t, ok, "metric %s not registered", name)
		assert.NotEmpty(t, family.GetHelp())
	}
}
