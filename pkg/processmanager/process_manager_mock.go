package processmanager

import (
	"context"
	"sync"
)

var _ Snapshot = (*SnapshotMock)(nil)

// SnapshotMock is a fixed snapshot. A non-nil *Err field makes the matching
// attribute read fail.
type SnapshotMock struct {
	Pid          int
	Start        uint64
	Comm         string
	User         string
	Args         []string
	Files        []string
	StartErr     error
	NameErr      error
	UserErr      error
	CmdlineErr   error
	OpenFilesErr error
}

func (s *SnapshotMock) PID() int {
	return s.Pid
}

func (s *SnapshotMock) StartTime() (uint64, error) {
	return s.Start, s.StartErr
}

func (s *SnapshotMock) Name() (string, error) {
	if s.NameErr != nil {
		return "", s.NameErr
	}
	return s.Comm, nil
}

func (s *SnapshotMock) Username() (string, error) {
	if s.UserErr != nil {
		return "", s.UserErr
	}
	return s.User, nil
}

func (s *SnapshotMock) Cmdline() ([]string, error) {
	if s.CmdlineErr != nil {
		return nil, s.CmdlineErr
	}
	return s.Args, nil
}

func (s *SnapshotMock) OpenFiles() ([]string, error) {
	if s.OpenFilesErr != nil {
		return nil, s.OpenFilesErr
	}
	return s.Files, nil
}

var _ ProcessManagerClient = (*ProcessManagerMock)(nil)

// ProcessManagerMock replays Cycles in order; once they are exhausted the last
// cycle is repeated. Err, when set, is returned from every call.
type ProcessManagerMock struct {
	Cycles [][]Snapshot
	Err    error

	mu    sync.Mutex
	calls int
}

func CreateProcessManagerMock(cycles ...[]Snapshot) *ProcessManagerMock {
	return &ProcessManagerMock{Cycles: cycles}
}

func (p *ProcessManagerMock) Snapshots(_ context.Context) ([]Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if p.Err != nil {
		return nil, p.Err
	}
	if len(p.Cycles) == 0 {
		return nil, nil
	}
	idx := p.calls - 1
	if idx >= len(p.Cycles) {
		idx = len(p.Cycles) - 1
	}
	return p.Cycles[idx], nil
}

// Calls returns how many times Snapshots was called.
func (p *ProcessManagerMock) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
