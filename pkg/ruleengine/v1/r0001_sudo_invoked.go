package ruleengine

import (
	"strings"

	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
)

const (
	R0001ID    = "R0001"
	R0001Name  = "Sudo invoked"
	R0001Label = "sudo detected"
)

var R0001SudoInvokedRuleDescriptor = ruleengine.RuleDescriptor{
	ID:               R0001ID,
	Name:             R0001Name,
	Label:            R0001Label,
	Description:      "Detecting any running sudo process, reporting the command it runs",
	Priority:         RulePriorityMed,
	Tags:             []string{"privilege", "exec"},
	EnabledByDefault: true,
	RuleCreationFunc: func() ruleengine.RuleEvaluator {
		return CreateRuleR0001SudoInvoked()
	},
}

var _ ruleengine.RuleEvaluator = (*R0001SudoInvoked)(nil)

type R0001SudoInvoked struct {
	BaseRule
}

func CreateRuleR0001SudoInvoked() *R0001SudoInvoked {
	return &R0001SudoInvoked{}
}

func (rule *R0001SudoInvoked) Name() string {
	return R0001Name
}

func (rule *R0001SudoInvoked) ID() string {
	return R0001ID
}

func (rule *R0001SudoInvoked) EvaluateRule(snapshot processmanager.Snapshot) ruleengine.DetectionResult {
	name, err := snapshot.Name()
	if err != nil {
		return ruleengine.DetectionResult{Err: err}
	}
	if !strings.EqualFold(name, "sudo") {
		return ruleengine.DetectionResult{}
	}

	cmdline, err := snapshot.Cmdline()
	if err != nil {
		return ruleengine.DetectionResult{Err: err}
	}

	var detail string
	if len(cmdline) > 1 {
		detail = strings.Join(cmdline[1:], " ")
	}
	return ruleengine.DetectionResult{IsFailure: true, Detail: detail}
}
