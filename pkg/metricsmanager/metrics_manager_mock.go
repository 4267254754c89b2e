package metricsmanager

import (
	"sync/atomic"
	"time"

	"github.com/goradd/maps"
)

var _ MetricsManager = (*MetricsMock)(nil)

type MetricsMock struct {
	ProcessScannedCounter  atomic.Int32
	ProcessExcludedCounter atomic.Int32
	TransientErrorCounter  atomic.Int32
	CycleCounter           atomic.Int32
	RuleProcessedCounter   maps.SafeMap[string, int]
	RuleMatchCounter       maps.SafeMap[string, int]
	RuleAlertCounter       maps.SafeMap[string, int]
	AlertSuppressedCounter maps.SafeMap[string, int]
}

func NewMetricsMock() *MetricsMock {
	return &MetricsMock{}
}

func (m *MetricsMock) Start() {
}

func (m *MetricsMock) Destroy() {
	m.ProcessScannedCounter.Store(0)
	m.ProcessExcludedCounter.Store(0)
	m.TransientErrorCounter.Store(0)
	m.CycleCounter.Store(0)
	m.RuleProcessedCounter.Clear()
	m.RuleMatchCounter.Clear()
	m.RuleAlertCounter.Clear()
	m.AlertSuppressedCounter.Clear()
}

func (m *MetricsMock) ReportProcessScanned() {
	m.ProcessScannedCounter.Add(1)
}

func (m *MetricsMock) ReportProcessExcluded() {
	m.ProcessExcludedCounter.Add(1)
}

func (m *MetricsMock) ReportTransientError() {
	m.TransientErrorCounter.Add(1)
}

func (m *MetricsMock) ReportRuleProcessed(ruleID string) {
	m.RuleProcessedCounter.Set(ruleID, m.RuleProcessedCounter.Get(ruleID)+1)
}

func (m *MetricsMock) ReportRuleMatch(ruleID string) {
	m.RuleMatchCounter.Set(ruleID, m.RuleMatchCounter.Get(ruleID)+1)
}

func (m *MetricsMock) ReportRuleAlert(ruleID string) {
	m.RuleAlertCounter.Set(ruleID, m.RuleAlertCounter.Get(ruleID)+1)
}

func (m *MetricsMock) ReportAlertSuppressed(ruleID string) {
	m.AlertSuppressedCounter.Set(ruleID, m.AlertSuppressedCounter.Get(ruleID)+1)
}

func (m *MetricsMock) ReportCycleDuration(_ time.Duration) {
	m.CycleCounter.Add(1)
}
