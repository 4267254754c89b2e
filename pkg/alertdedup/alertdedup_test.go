package alertdedup

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmitOnce(t *testing.T) {
	d := NewDeduplicator()

	assert.True(t, d.Admit(Identity{PID: 42}))
	assert.False(t, d.Admit(Identity{PID: 42}))
	assert.False(t, d.Admit(Identity{PID: 42}))
	assert.True(t, d.Admit(Identity{PID: 43}))
	assert.True(t, d.Seen(Identity{PID: 42}))
	assert.False(t, d.Seen(Identity{PID: 44}))
	assert.Equal(t, 2, d.Len())
}

func TestAdmitConcurrent(t *testing.T) {
	d := NewDeduplicator()
	var admitted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Admit(Identity{PID: 7}) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
}

func TestIdentityFor(t *testing.T) {
	s := &processmanager.SnapshotMock{Pid: 10, Start: 9000}

	id, err := IdentityFor(s, false)
	require.NoError(t, err)
	assert.Equal(t, Identity{PID: 10}, id)

	id, err = IdentityFor(s, true)
	require.NoError(t, err)
	assert.Equal(t, Identity{PID: 10, StartTime: 9000}, id)

	s.StartErr = errors.New("gone")
	_, err = IdentityFor(s, true)
	assert.ErrorIs(t, err, s.StartErr)

	// the start time is not needed when identity is the pid alone
	id, err = IdentityFor(s, false)
	require.NoError(t, err)
	assert.Equal(t, Identity{PID: 10}, id)
}

func identityOf(t *testing.T, s processmanager.Snapshot, includeStartTime bool) Identity {
	t.Helper()
	id, err := IdentityFor(s, includeStartTime)
	require.NoError(t, err)
	return id
}

func TestRecycledPid(t *testing.T) {
	d := NewDeduplicator()

	first := &processmanager.SnapshotMock{Pid: 300, Start: 100}
	recycled := &processmanager.SnapshotMock{Pid: 300, Start: 250}

	// pid only: the recycled process inherits the alerted state
	assert.True(t, d.Admit(identityOf(t, first, false)))
	assert.False(t, d.Admit(identityOf(t, recycled, false)))

	d = NewDeduplicator()
	assert.True(t, d.Admit(identityOf(t, first, true)))
	assert.True(t, d.Admit(identityOf(t, recycled, true)))
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "12", Identity{PID: 12}.String())
	assert.Equal(t, "12@77", Identity{PID: 12, StartTime: 77}.String())
}
