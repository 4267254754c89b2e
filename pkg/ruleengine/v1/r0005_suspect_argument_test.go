package ruleengine

import (
	"testing"

	"github.com/kubescape/procguardian/pkg/processmanager"
)

func TestR0005SuspectArgument(t *testing.T) {
	r := CreateRuleR0005SuspectArgument()
	if r == nil {
		t.Errorf("Expected r to not be nil")
	}

	if R0005SuspectArgumentRuleDescriptor.EnabledByDefault {
		t.Errorf("Expected R0005 to be disabled by default")
	}

	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "curl download", args: []string{"curl", "-o", "x", "http://example.com"}, expected: true},
		{name: "wget in a path", args: []string{"/usr/bin/wget"}, expected: true},
		{name: "substring match", args: []string{"ssh", "host"}, expected: true},
		{name: "plain ls", args: []string{"ls", "-la"}, expected: false},
		{name: "case sensitive", args: []string{"CURL"}, expected: false},
		{name: "empty command line", args: nil, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.EvaluateRule(&processmanager.SnapshotMock{Pid: 1, Args: tt.args})
			if result.IsFailure != tt.expected {
				t.Errorf("Expected match=%v for %v", tt.expected, tt.args)
			}
		})
	}
}
