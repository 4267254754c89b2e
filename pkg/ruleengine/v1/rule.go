package ruleengine

import (
	"github.com/goradd/maps"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/utils"
)

const (
	RulePriorityNone     = 0
	RulePriorityLow      = 1
	RulePriorityMed      = 5
	RulePriorityHigh     = 8
	RulePriorityCritical = 10
)

const (
	// privileged account checked by the elevated runtime rules
	rootUser = "root"

	ParameterMarkers    = "markers"
	ParameterPrefixes   = "prefixes"
	ParameterSubstrings = "substrings"
)

type BaseRule struct {
	// Mutex for protecting rule parameters.
	parameters maps.SafeMap[string, interface{}]
}

func (br *BaseRule) SetParameters(parameters map[string]interface{}) {
	for k, v := range parameters {
		br.parameters.Set(k, v)
	}
}

func (br *BaseRule) GetParameters() map[string]interface{} {

	// Create a copy to avoid returning a reference to the internal map
	parametersCopy := make(map[string]interface{}, br.parameters.Len())

	br.parameters.Range(
		func(key string, value interface{}) bool {
			parametersCopy[key] = value
			return true
		},
	)
	return parametersCopy
}

// stringsParameter returns the list stored under key, or fallback when the
// parameter is unset or not a list of strings.
func (br *BaseRule) stringsParameter(key string, fallback []string) []string {
	value, ok := br.parameters.Load(key)
	if !ok {
		return fallback
	}
	values, ok := utils.ToStringSlice(value)
	if !ok {
		logger.L().Warning("BaseRule - ignoring malformed rule parameter", helpers.String("parameter", key))
		return fallback
	}
	return values
}
