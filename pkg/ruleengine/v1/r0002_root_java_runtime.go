package ruleengine

import (
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
)

const (
	R0002ID    = "R0002"
	R0002Name  = "Java runtime running as root"
	R0002Label = "java/catalina running as root"
)

var defaultJavaRuntimeMarkers = []string{"java", "catalina"}

var R0002RootJavaRuntimeRuleDescriptor = ruleengine.RuleDescriptor{
	ID:               R0002ID,
	Name:             R0002Name,
	Label:            R0002Label,
	Description:      "Detecting a java or tomcat (catalina) process owned by root",
	Priority:         RulePriorityHigh,
	Tags:             []string{"privilege", "runtime"},
	EnabledByDefault: true,
	RuleCreationFunc: func() ruleengine.RuleEvaluator {
		return CreateRuleR0002RootJavaRuntime()
	},
}

var _ ruleengine.RuleEvaluator = (*R0002RootJavaRuntime)(nil)

type R0002RootJavaRuntime struct {
	BaseRule
}

func CreateRuleR0002RootJavaRuntime() *R0002RootJavaRuntime {
	return &R0002RootJavaRuntime{}
}

func (rule *R0002RootJavaRuntime) Name() string {
	return R0002Name
}

func (rule *R0002RootJavaRuntime) ID() string {
	return R0002ID
}

func (rule *R0002RootJavaRuntime) EvaluateRule(snapshot processmanager.Snapshot) ruleengine.DetectionResult {
	return evaluateRootRuntime(snapshot, rule.stringsParameter(ParameterMarkers, defaultJavaRuntimeMarkers))
}

// evaluateRootRuntime matches a process whose name contains one of the
// markers and whose owner is root. The owner is only read for candidates.
func evaluateRootRuntime(snapshot processmanager.Snapshot, markers []string) ruleengine.DetectionResult {
	name, err := snapshot.Name()
	if err != nil {
		return ruleengine.DetectionResult{Err: err}
	}
	if !containsAnyFold(name, markers) {
		return ruleengine.DetectionResult{}
	}

	username, err := snapshot.Username()
	if err != nil {
		return ruleengine.DetectionResult{Err: err}
	}
	return ruleengine.DetectionResult{IsFailure: username == rootUser}
}
