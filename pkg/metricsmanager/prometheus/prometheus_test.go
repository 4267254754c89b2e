package metricsmanager

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetricCounters(t *testing.T) {
	p := NewPrometheusMetric(":0")
	defer p.Destroy()

	p.ReportProcessScanned()
	p.ReportProcessScanned()
	p.ReportProcessExcluded()
	p.ReportTransientError()
	p.ReportRuleProcessed("R0001")
	p.ReportRuleProcessed("R0001")
	p.ReportRuleMatch("R0001")
	p.ReportRuleAlert("R0001")
	p.ReportAlertSuppressed("R0004")
	p.ReportCycleDuration(20 * time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(p.processScannedCounter))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.processExcludedCounter))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.transientErrorCounter))
	assert.Equal(t, float64(2), testutil.ToFloat64(p.ruleCounter.WithLabelValues("R0001")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.matchCounter.WithLabelValues("R0001")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.alertCounter.WithLabelValues("R0001")))
	assert.Equal(t, float64(1), testutil.ToFloat64(p.suppressedCounter.WithLabelValues("R0004")))

	families, err := p.Gatherer().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "procguardian_cycle_duration_seconds")
}

func TestPrometheusMetricCachesCounters(t *testing.T) {
	p := NewPrometheusMetric(":0")
	defer p.Destroy()

	first := p.getCachedCounter(p.alertCounter, "R0002")
	second := p.getCachedCounter(p.alertCounter, "R0002")
	assert.Same(t, first, second)

	other := p.getCachedCounter(p.matchCounter, "R0002")
	assert.NotSame(t, first, other)
}
