package ruleengine

import (
	"github.com/kubescape/procguardian/pkg/processmanager"
)

var _ RuleEvaluator = (*RuleMock)(nil)

type RuleMock struct {
	RuleParameters map[string]interface{}
	RuleName       string
	RuleID         string
	Result         DetectionResult
	Evaluations    int
}

func (rule *RuleMock) Name() string {
	return rule.RuleName
}

func (rule *RuleMock) ID() string {
	return rule.RuleID
}

func (rule *RuleMock) EvaluateRule(_ processmanager.Snapshot) DetectionResult {
	rule.Evaluations++
	return rule.Result
}

func (rule *RuleMock) GetParameters() map[string]interface{} {
	return rule.RuleParameters
}

func (rule *RuleMock) SetParameters(p map[string]interface{}) {
	rule.RuleParameters = p
}

var _ RuleEngine = (*RuleEngineMock)(nil)

// RuleEngineMock returns Matches[pid] for every snapshot.
type RuleEngineMock struct {
	Matches map[int][]RuleMatch
}

func (e *RuleEngineMock) Evaluate(snapshot processmanager.Snapshot) []RuleMatch {
	return e.Matches[snapshot.PID()]
}

func (e *RuleEngineMock) RuleIDs() []string {
	return nil
}
