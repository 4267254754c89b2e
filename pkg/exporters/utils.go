package exporters

import (
	ruleenginev1 "github.com/kubescape/procguardian/pkg/ruleengine/v1"
)

func PriorityToStatus(priority int) string {
	switch priority {
	case ruleenginev1.RulePriorityNone:
		return "none"
	case ruleenginev1.RulePriorityLow:
		return "low"
	case ruleenginev1.RulePriorityMed:
		return "medium"
	case ruleenginev1.RulePriorityHigh:
		return "high"
	case ruleenginev1.RulePriorityCritical:
		return "critical"
	default:
		if priority < ruleenginev1.RulePriorityMed {
			return "low"
		} else if priority < ruleenginev1.RulePriorityHigh {
			return "medium"
		} else if priority < ruleenginev1.RulePriorityCritical {
			return "high"
		}
		return "unknown"
	}
}
