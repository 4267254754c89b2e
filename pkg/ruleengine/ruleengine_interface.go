package ruleengine

import (
	"github.com/kubescape/procguardian/pkg/processmanager"
)

// RuleEvaluator is a pure predicate over a process snapshot.
type RuleEvaluator interface {
	// Rule ID
	ID() string

	// Rule Name
	Name() string

	// Rule evaluation
	EvaluateRule(snapshot processmanager.Snapshot) DetectionResult

	// Set rule parameters
	SetParameters(parameters map[string]interface{})

	// Get rule parameters
	GetParameters() map[string]interface{}
}

// DetectionResult is the outcome of one rule on one snapshot.
// Err is set when an attribute read failed; the result is then a no-match.
type DetectionResult struct {
	IsFailure bool
	Detail    string
	Err       error
}

// RuleDescriptor is a registry entry.
type RuleDescriptor struct {
	// Rule ID
	ID string
	// Rule Name
	Name string
	// Label written into alert lines
	Label string
	// Rule Description
	Description string
	// Priority
	Priority int
	// Tags
	Tags []string
	// Whether the rule runs when the configuration does not mention it
	EnabledByDefault bool
	// Create a rule function
	RuleCreationFunc func() RuleEvaluator
}

func (r *RuleDescriptor) HasTags(tags []string) bool {
	for _, tag := range tags {
		for _, ruleTag := range r.Tags {
			if tag == ruleTag {
				return true
			}
		}
	}
	return false
}

// RuleMatch is one matching rule for a snapshot.
type RuleMatch struct {
	RuleID   string
	Label    string
	Priority int
	Detail   string
}

// RuleEngine evaluates the enabled rules, in registry order.
type RuleEngine interface {
	Evaluate(snapshot processmanager.Snapshot) []RuleMatch
	// RuleIDs lists the enabled rules in evaluation order.
	RuleIDs() []string
}
