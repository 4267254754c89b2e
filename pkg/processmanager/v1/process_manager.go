package processmanager

import (
	"context"
	"fmt"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/prometheus/procfs"
	"istio.io/pkg/cache"
)

const (
	DefaultProcRoot   = procfs.DefaultMountPoint
	usernameCacheSize = 512
	// accounts can be renamed or created while the daemon runs
	usernameTTL   = 10 * time.Minute
	unknownUIDTTL = time.Minute
	// comm is truncated by the kernel to TASK_COMM_LEN-1 bytes.
	maxCommLength = 15
)

var _ processmanager.ProcessManagerClient = (*ProcessManager)(nil)

type ProcessManager struct {
	fs        procfs.FS
	usernames *expirable.LRU[uint64, string]
	// uids without an account, so a missing entry is not looked up every cycle
	unknownUIDs cache.ExpiringCache
	// For testing purposes we allow to override the uid to user resolution.
	lookupUser func(uid string) (*user.User, error)
}

func CreateProcessManager(procRoot string) (*ProcessManager, error) {
	if procRoot == "" {
		procRoot = DefaultProcRoot
	}
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to open procfs at %s: %w", procRoot, err)
	}
	return &ProcessManager{
		fs:          fs,
		usernames:   expirable.NewLRU[uint64, string](usernameCacheSize, nil, usernameTTL),
		unknownUIDs: cache.NewTTL(unknownUIDTTL, unknownUIDTTL),
		lookupUser:  user.LookupId,
	}, nil
}

func (p *ProcessManager) Snapshots(ctx context.Context) ([]processmanager.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	procs, err := p.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("failed to read all procs: %w", err)
	}

	snapshots := make([]processmanager.Snapshot, 0, len(procs))
	for _, proc := range procs {
		snapshots = append(snapshots, &procSnapshot{proc: proc, manager: p})
	}
	return snapshots, nil
}

// username resolves a uid the way ps does: the account name when one exists,
// the numeric uid otherwise.
func (p *ProcessManager) username(uid uint64) string {
	if name, ok := p.usernames.Get(uid); ok {
		return name
	}
	uidStr := strconv.FormatUint(uid, 10)
	if _, ok := p.unknownUIDs.Get(uid); ok {
		return uidStr
	}
	u, err := p.lookupUser(uidStr)
	if err != nil {
		logger.L().Debug("ProcessManager - uid has no account", helpers.String("uid", uidStr), helpers.Error(err))
		p.unknownUIDs.Set(uid, struct{}{})
		return uidStr
	}
	p.usernames.Add(uid, u.Username)
	return u.Username
}

// lazy memoizes one attribute read (value or error) for the lifetime of a
// snapshot.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(read func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = read()
	})
	return l.value, l.err
}

var _ processmanager.Snapshot = (*procSnapshot)(nil)

type procSnapshot struct {
	proc    procfs.Proc
	manager *ProcessManager

	startTime lazy[uint64]
	name      lazy[string]
	username  lazy[string]
	cmdline   lazy[[]string]
	openFiles lazy[[]string]
}

func (s *procSnapshot) PID() int {
	return s.proc.PID
}

func (s *procSnapshot) StartTime() (uint64, error) {
	return s.startTime.get(func() (uint64, error) {
		stat, err := s.proc.Stat()
		if err != nil {
			return 0, err
		}
		return stat.Starttime, nil
	})
}

func (s *procSnapshot) Name() (string, error) {
	return s.name.get(func() (string, error) {
		comm, err := s.proc.Comm()
		if err != nil {
			return "", err
		}
		if len(comm) < maxCommLength {
			return comm, nil
		}
		// comm may be truncated, prefer the executable name from the command line
		cmdline, err := s.Cmdline()
		if err != nil || len(cmdline) == 0 {
			return comm, nil
		}
		if base := filepath.Base(cmdline[0]); strings.HasPrefix(base, comm) {
			return base, nil
		}
		return comm, nil
	})
}

func (s *procSnapshot) Username() (string, error) {
	return s.username.get(func() (string, error) {
		status, err := s.proc.NewStatus()
		if err != nil {
			return "", err
		}
		// real uid, so sudo is reported as the invoking user
		return s.manager.username(uint64(status.UIDs[0])), nil
	})
}

func (s *procSnapshot) Cmdline() ([]string, error) {
	return s.cmdline.get(s.proc.CmdLine)
}

func (s *procSnapshot) OpenFiles() ([]string, error) {
	return s.openFiles.get(func() ([]string, error) {
		targets, err := s.proc.FileDescriptorTargets()
		if err != nil {
			return nil, err
		}
		files := make([]string, 0, len(targets))
		for _, target := range targets {
			// sockets, pipes and anon inodes are not paths
			if strings.HasPrefix(target, "/") {
				files = append(files, target)
			}
		}
		return files, nil
	})
}
