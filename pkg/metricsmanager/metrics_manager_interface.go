package metricsmanager

import "time"

// MetricsManager is an interface for reporting metrics
type MetricsManager interface {
	Start()
	Destroy()
	ReportProcessScanned()
	ReportProcessExcluded()
	ReportTransientError()
	ReportRuleProcessed(ruleID string)
	ReportRuleMatch(ruleID string)
	ReportRuleAlert(ruleID string)
	ReportAlertSuppressed(ruleID string)
	ReportCycleDuration(duration time.Duration)
}
