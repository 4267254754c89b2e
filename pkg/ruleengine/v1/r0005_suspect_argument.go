package ruleengine

import (
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
)

const (
	R0005ID    = "R0005"
	R0005Name  = "Suspect command-line argument"
	R0005Label = "suspect command-line argument"
)

var defaultSuspectArguments = []string{"wget", "curl", "nc", "ss"}

// R0005 matches plain substrings, so "ss" also hits "ssh" or "pass".
// It is disabled unless turned on in the configuration.
var R0005SuspectArgumentRuleDescriptor = ruleengine.RuleDescriptor{
	ID:               R0005ID,
	Name:             R0005Name,
	Label:            R0005Label,
	Description:      "Detecting network tooling in process command lines",
	Priority:         RulePriorityLow,
	Tags:             []string{"exec", "network"},
	EnabledByDefault: false,
	RuleCreationFunc: func() ruleengine.RuleEvaluator {
		return CreateRuleR0005SuspectArgument()
	},
}

var _ ruleengine.RuleEvaluator = (*R0005SuspectArgument)(nil)

type R0005SuspectArgument struct {
	BaseRule
}

func CreateRuleR0005SuspectArgument() *R0005SuspectArgument {
	return &R0005SuspectArgument{}
}

func (rule *R0005SuspectArgument) Name() string {
	return R0005Name
}

func (rule *R0005SuspectArgument) ID() string {
	return R0005ID
}

func (rule *R0005SuspectArgument) EvaluateRule(snapshot processmanager.Snapshot) ruleengine.DetectionResult {
	cmdline, err := snapshot.Cmdline()
	if err != nil {
		return ruleengine.DetectionResult{Err: err}
	}
	substrings := rule.stringsParameter(ParameterSubstrings, defaultSuspectArguments)
	return ruleengine.DetectionResult{IsFailure: containsAnySubstring(cmdline, substrings)}
}
