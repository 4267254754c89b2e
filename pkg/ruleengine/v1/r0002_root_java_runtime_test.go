package ruleengine

import (
	"errors"
	"testing"

	"github.com/kubescape/procguardian/pkg/processmanager"
)

func TestR0002RootJavaRuntime(t *testing.T) {
	r := CreateRuleR0002RootJavaRuntime()
	if r == nil {
		t.Errorf("Expected r to not be nil")
	}

	tests := []struct {
		name     string
		comm     string
		user     string
		expected bool
	}{
		{name: "java as root", comm: "java", user: "root", expected: true},
		{name: "mixed case", comm: "OpenJDK-Java", user: "root", expected: true},
		{name: "catalina as root", comm: "catalina.sh", user: "root", expected: true},
		{name: "java as tomcat", comm: "java", user: "tomcat", expected: false},
		{name: "catalina as alice", comm: "catalina", user: "alice", expected: false},
		{name: "unrelated root process", comm: "sshd", user: "root", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.EvaluateRule(&processmanager.SnapshotMock{Pid: 1, Comm: tt.comm, User: tt.user})
			if result.IsFailure != tt.expected {
				t.Errorf("Expected match=%v for %s/%s", tt.expected, tt.comm, tt.user)
			}
			if result.Detail != "" {
				t.Errorf("Expected no detail, got %q", result.Detail)
			}
		})
	}
}

func TestR0002RootJavaRuntimeSkipsUserReadForOtherNames(t *testing.T) {
	r := CreateRuleR0002RootJavaRuntime()

	result := r.EvaluateRule(&processmanager.SnapshotMock{Pid: 1, Comm: "bash", UserErr: errors.New("gone")})
	if result.Err != nil {
		t.Errorf("Expected the user not to be read for a non java process")
	}

	result = r.EvaluateRule(&processmanager.SnapshotMock{Pid: 1, Comm: "java", UserErr: errors.New("gone")})
	if result.IsFailure || result.Err == nil {
		t.Errorf("Expected a failed user read to be a no-match carrying the error")
	}
}
