package alertdedup

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/kubescape/procguardian/pkg/processmanager"
)

// Identity represents the key an alert is deduplicated on.
// StartTime is zero when identity is keyed on the pid alone.
type Identity struct {
	PID       int
	StartTime uint64
}

func (i Identity) String() string {
	if i.StartTime == 0 {
		return fmt.Sprintf("%d", i.PID)
	}
	return fmt.Sprintf("%d@%d", i.PID, i.StartTime)
}

// IdentityFor returns the identity of a snapshot. With includeStartTime the
// process start time is part of the key, so a recycled pid is a new identity.
// If the start time cannot be read no identity is returned: keying on the pid
// alone would let the same process alert again once its start time is readable.
func IdentityFor(snapshot processmanager.Snapshot, includeStartTime bool) (Identity, error) {
	id := Identity{PID: snapshot.PID()}
	if !includeStartTime {
		return id, nil
	}
	start, err := snapshot.StartTime()
	if err != nil {
		return Identity{}, fmt.Errorf("start time of pid %d: %w", id.PID, err)
	}
	id.StartTime = start
	return id, nil
}

// Deduplicator remembers every identity that was allowed to alert.
// The set only grows for the lifetime of the process.
type Deduplicator struct {
	seen mapset.Set[Identity]
}

// NewDeduplicator creates a new Deduplicator
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: mapset.NewSet[Identity](),
	}
}

// Admit returns true the first time it is called for id and false on every
// later call. It is safe for concurrent use.
func (d *Deduplicator) Admit(id Identity) bool {
	return d.seen.Add(id)
}

// Seen reports whether id was already admitted.
func (d *Deduplicator) Seen(id Identity) bool {
	return d.seen.Contains(id)
}

// Len returns the number of admitted identities.
func (d *Deduplicator) Len() int {
	return d.seen.Cardinality()
}
