package ruleengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryOrder(t *testing.T) {
	var ids []string
	for _, d := range GetAllRuleDescriptors() {
		ids = append(ids, d.ID)
		assert.NotEmpty(t, d.Label, d.ID)
		assert.NotNil(t, d.RuleCreationFunc, d.ID)
		assert.Equal(t, d.ID, d.RuleCreationFunc().ID())
	}
	assert.Equal(t, []string{"R0001", "R0002", "R0003", "R0004", "R0005"}, ids)
}

func TestCreateRuleByID(t *testing.T) {
	assert.IsType(t, &R0004SuspectOpenFile{}, CreateRuleByID(R0004ID))
	assert.Nil(t, CreateRuleByID("R9999"))
	assert.IsType(t, &R0001SudoInvoked{}, CreateRuleByName(R0001Name))
}

func TestCreateRulesByTags(t *testing.T) {
	rules := CreateRulesByTags([]string{"privilege"})
	var ids []string
	for _, r := range rules {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{R0001ID, R0002ID, R0003ID}, ids)
}
