package ruleengine

import (
	"errors"
	"testing"

	"github.com/kubescape/procguardian/pkg/processmanager"
)

func TestR0004SuspectOpenFile(t *testing.T) {
	r := CreateRuleR0004SuspectOpenFile()
	if r == nil {
		t.Errorf("Expected r to not be nil")
	}

	tests := []struct {
		name     string
		files    []string
		expected bool
	}{
		{name: "no files", files: nil, expected: false},
		{name: "file in tmp", files: []string{"/etc/passwd", "/tmp/payload"}, expected: true},
		{name: "file in var tmp", files: []string{"/var/tmp/x"}, expected: true},
		{name: "literal prefix", files: []string{"/tmpfoo/bar"}, expected: true},
		{name: "tmp elsewhere in the path", files: []string{"/home/alice/tmp/x"}, expected: false},
		{name: "ordinary files", files: []string{"/usr/lib/libc.so.6", "/dev/null"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.EvaluateRule(&processmanager.SnapshotMock{Pid: 1, Files: tt.files})
			if result.IsFailure != tt.expected {
				t.Errorf("Expected match=%v for %v", tt.expected, tt.files)
			}
		})
	}
}

func TestR0004SuspectOpenFilePrefixesParameter(t *testing.T) {
	r := CreateRuleR0004SuspectOpenFile()
	r.SetParameters(map[string]interface{}{ParameterPrefixes: []string{"/dev/shm"}})

	if !r.EvaluateRule(&processmanager.SnapshotMock{Files: []string{"/dev/shm/x"}}).IsFailure {
		t.Errorf("Expected the configured prefix to match")
	}
	if r.EvaluateRule(&processmanager.SnapshotMock{Files: []string{"/tmp/x"}}).IsFailure {
		t.Errorf("Expected the default prefixes to be replaced")
	}
}

func TestR0004SuspectOpenFileReadError(t *testing.T) {
	r := CreateRuleR0004SuspectOpenFile()
	result := r.EvaluateRule(&processmanager.SnapshotMock{OpenFilesErr: errors.New("permission denied")})
	if result.IsFailure || result.Err == nil {
		t.Errorf("Expected a failed read to be a no-match carrying the error")
	}
}
