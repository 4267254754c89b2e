package ruleengine

import (
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
)

const (
	R0004ID    = "R0004"
	R0004Name  = "Open file in suspect location"
	R0004Label = "open file in suspect location"
)

var defaultSuspectFilePrefixes = []string{"/tmp", "/var/tmp"}

var R0004SuspectOpenFileRuleDescriptor = ruleengine.RuleDescriptor{
	ID:               R0004ID,
	Name:             R0004Name,
	Label:            R0004Label,
	Description:      "Detecting processes holding files open under world-writable scratch directories",
	Priority:         RulePriorityLow,
	Tags:             []string{"files"},
	EnabledByDefault: true,
	RuleCreationFunc: func() ruleengine.RuleEvaluator {
		return CreateRuleR0004SuspectOpenFile()
	},
}

var _ ruleengine.RuleEvaluator = (*R0004SuspectOpenFile)(nil)

type R0004SuspectOpenFile struct {
	BaseRule
}

func CreateRuleR0004SuspectOpenFile() *R0004SuspectOpenFile {
	return &R0004SuspectOpenFile{}
}

func (rule *R0004SuspectOpenFile) Name() string {
	return R0004Name
}

func (rule *R0004SuspectOpenFile) ID() string {
	return R0004ID
}

func (rule *R0004SuspectOpenFile) EvaluateRule(snapshot processmanager.Snapshot) ruleengine.DetectionResult {
	files, err := snapshot.OpenFiles()
	if err != nil {
		return ruleengine.DetectionResult{Err: err}
	}
	prefixes := rule.stringsParameter(ParameterPrefixes, defaultSuspectFilePrefixes)
	return ruleengine.DetectionResult{IsFailure: hasAnyPrefix(files, prefixes)}
}
