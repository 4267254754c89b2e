package ruleengine

import "github.com/kubescape/procguardian/pkg/ruleengine"

// List of all rules descriptions, in evaluation order.
var ruleDescriptions = []ruleengine.RuleDescriptor{
	R0001SudoInvokedRuleDescriptor,
	R0002RootJavaRuntimeRuleDescriptor,
	R0003RootInterpreterRuleDescriptor,
	R0004SuspectOpenFileRuleDescriptor,
	R0005SuspectArgumentRuleDescriptor,
}

func GetAllRuleDescriptors() []ruleengine.RuleDescriptor {
	return ruleDescriptions
}

// GetRuleDescriptor returns the registry entry for id.
func GetRuleDescriptor(id string) (ruleengine.RuleDescriptor, bool) {
	for _, rule := range ruleDescriptions {
		if rule.ID == id {
			return rule, true
		}
	}
	return ruleengine.RuleDescriptor{}, false
}

func CreateRulesByTags(tags []string) []ruleengine.RuleEvaluator {
	var rules []ruleengine.RuleEvaluator
	for _, rule := range ruleDescriptions {
		if rule.HasTags(tags) {
			rules = append(rules, rule.RuleCreationFunc())
		}
	}
	return rules
}

func CreateRuleByID(id string) ruleengine.RuleEvaluator {
	for _, rule := range ruleDescriptions {
		if rule.ID == id {
			return rule.RuleCreationFunc()
		}
	}
	return nil
}

func CreateRuleByName(name string) ruleengine.RuleEvaluator {
	for _, rule := range ruleDescriptions {
		if rule.Name == name {
			return rule.RuleCreationFunc()
		}
	}
	return nil
}
