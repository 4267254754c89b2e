package ruleengine

import (
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
)

const (
	R0003ID    = "R0003"
	R0003Name  = "Interpreter running as root"
	R0003Label = "interpreter running as root"
)

var defaultInterpreterMarkers = []string{"python", "perl", "ruby", "php", "node"}

var R0003RootInterpreterRuleDescriptor = ruleengine.RuleDescriptor{
	ID:               R0003ID,
	Name:             R0003Name,
	Label:            R0003Label,
	Description:      "Detecting a script interpreter process owned by root",
	Priority:         RulePriorityMed,
	Tags:             []string{"privilege", "runtime"},
	EnabledByDefault: true,
	RuleCreationFunc: func() ruleengine.RuleEvaluator {
		return CreateRuleR0003RootInterpreter()
	},
}

var _ ruleengine.RuleEvaluator = (*R0003RootInterpreter)(nil)

type R0003RootInterpreter struct {
	BaseRule
}

func CreateRuleR0003RootInterpreter() *R0003RootInterpreter {
	return &R0003RootInterpreter{}
}

func (rule *R0003RootInterpreter) Name() string {
	return R0003Name
}

func (rule *R0003RootInterpreter) ID() string {
	return R0003ID
}

func (rule *R0003RootInterpreter) EvaluateRule(snapshot processmanager.Snapshot) ruleengine.DetectionResult {
	return evaluateRootRuntime(snapshot, rule.stringsParameter(ParameterMarkers, defaultInterpreterMarkers))
}
