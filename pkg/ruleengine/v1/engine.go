package ruleengine

import (
	"fmt"
	"sort"

	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/metricsmanager"
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
)

var _ ruleengine.RuleEngine = (*RuleEngine)(nil)

type enabledRule struct {
	descriptor ruleengine.RuleDescriptor
	evaluator  ruleengine.RuleEvaluator
}

// RuleEngine runs the enabled registry rules over a snapshot. It holds no
// mutable state after construction and is safe for concurrent Evaluate calls.
type RuleEngine struct {
	rules          []enabledRule
	metricsManager metricsmanager.MetricsManager
}

// CreateRuleEngine builds the engine from the registry. enabled overrides
// EnabledByDefault per rule ID and parameters are handed to each rule by ID.
// Unknown IDs in either map are an error.
func CreateRuleEngine(enabled map[string]bool, parameters map[string]map[string]interface{}, metricsManager metricsmanager.MetricsManager) (*RuleEngine, error) {
	if err := checkRuleIDs(enabled, parameters); err != nil {
		return nil, err
	}

	engine := &RuleEngine{metricsManager: metricsManager}
	for _, descriptor := range ruleDescriptions {
		on := descriptor.EnabledByDefault
		if v, ok := enabled[descriptor.ID]; ok {
			on = v
		}
		if !on {
			continue
		}
		evaluator := descriptor.RuleCreationFunc()
		if p, ok := parameters[descriptor.ID]; ok {
			evaluator.SetParameters(p)
		}
		engine.rules = append(engine.rules, enabledRule{descriptor: descriptor, evaluator: evaluator})
	}
	return engine, nil
}

func checkRuleIDs(enabled map[string]bool, parameters map[string]map[string]interface{}) error {
	var unknown []string
	for id := range enabled {
		if _, ok := GetRuleDescriptor(id); !ok {
			unknown = append(unknown, id)
		}
	}
	for id := range parameters {
		if _, ok := GetRuleDescriptor(id); !ok {
			if _, seen := enabled[id]; !seen {
				unknown = append(unknown, id)
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown rule IDs %v", unknown)
	}
	return nil
}

func (e *RuleEngine) Evaluate(snapshot processmanager.Snapshot) []ruleengine.RuleMatch {
	var matches []ruleengine.RuleMatch
	for _, rule := range e.rules {
		e.metricsManager.ReportRuleProcessed(rule.descriptor.ID)
		result := rule.evaluator.EvaluateRule(snapshot)
		if result.Err != nil {
			logger.L().Debug("RuleEngine - failed to read process attribute",
				helpers.String("rule", rule.descriptor.ID),
				helpers.Int("pid", snapshot.PID()),
				helpers.Error(result.Err))
			e.metricsManager.ReportTransientError()
			continue
		}
		if !result.IsFailure {
			continue
		}
		e.metricsManager.ReportRuleMatch(rule.descriptor.ID)
		matches = append(matches, ruleengine.RuleMatch{
			RuleID:   rule.descriptor.ID,
			Label:    rule.descriptor.Label,
			Priority: rule.descriptor.Priority,
			Detail:   result.Detail,
		})
	}
	return matches
}

func (e *RuleEngine) RuleIDs() []string {
	ids := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		ids = append(ids, rule.descriptor.ID)
	}
	return ids
}
