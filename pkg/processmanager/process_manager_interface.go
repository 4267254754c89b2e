package processmanager

import (
	"context"
)

// Snapshot is a read-only view of a single process for one scan cycle.
// Every attribute read can fail on its own (the process exited, or access was
// denied); callers treat such failures as local to that attribute.
type Snapshot interface {
	// PID is known at enumeration time and never fails.
	PID() int
	// StartTime is the process start time in clock ticks since boot.
	StartTime() (uint64, error)
	Name() (string, error)
	Username() (string, error)
	Cmdline() ([]string, error)
	OpenFiles() ([]string, error)
}

// ProcessManagerClient enumerates the live process set.
type ProcessManagerClient interface {
	// Snapshots returns one snapshot per process alive at call time.
	// Attributes are not read until requested.
	Snapshots(ctx context.Context) ([]Snapshot, error)
}
