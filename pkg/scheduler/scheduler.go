package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/procguardian/pkg/alertdedup"
	"github.com/kubescape/procguardian/pkg/exporters"
	"github.com/kubescape/procguardian/pkg/metricsmanager"
	"github.com/kubescape/procguardian/pkg/processmanager"
	"github.com/kubescape/procguardian/pkg/ruleengine"
	"github.com/kubescape/procguardian/pkg/utils"
	"github.com/panjf2000/ants/v2"
	"k8s.io/utils/clock"
)

type State int32

const (
	StateRunning State = iota
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

type Options struct {
	Interval                  time.Duration
	ExcludedUsers             []string
	IdentityIncludesStartTime bool
	// Workers > 1 evaluates rules on a worker pool
	Workers int
	// Clock defaults to the real clock
	Clock clock.Clock
}

// Scheduler drives the scan, evaluate, alert, sleep loop.
type Scheduler struct {
	processManager processmanager.ProcessManagerClient
	ruleEngine     ruleengine.RuleEngine
	exporter       exporters.Exporter
	metrics        metricsmanager.MetricsManager
	dedup          *alertdedup.Deduplicator
	clock          clock.Clock
	pool           *ants.Pool
	newAlertID     func() string

	interval                  time.Duration
	excludedUsers             mapset.Set[string]
	identityIncludesStartTime bool

	state atomic.Int32
	ready atomic.Bool
}

// evaluation is the rule outcome for one snapshot of the current cycle.
type evaluation struct {
	snapshot processmanager.Snapshot
	matches  []ruleengine.RuleMatch
}

func CreateScheduler(processManager processmanager.ProcessManagerClient, ruleEngine ruleengine.RuleEngine, exporter exporters.Exporter, metrics metricsmanager.MetricsManager, opts Options) (*Scheduler, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", opts.Interval)
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	s := &Scheduler{
		processManager:            processManager,
		ruleEngine:                ruleEngine,
		exporter:                  exporter,
		metrics:                   metrics,
		dedup:                     alertdedup.NewDeduplicator(),
		clock:                     opts.Clock,
		newAlertID:                uuid.NewString,
		interval:                  opts.Interval,
		excludedUsers:             utils.TrimmedSet(opts.ExcludedUsers),
		identityIncludesStartTime: opts.IdentityIncludesStartTime,
	}

	if opts.Workers > 1 {
		pool, err := ants.NewPool(opts.Workers)
		if err != nil {
			return nil, fmt.Errorf("create worker pool: %w", err)
		}
		s.pool = pool
	}
	return s, nil
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Ready reports whether at least one full cycle has completed.
func (s *Scheduler) Ready() bool {
	return s.ready.Load()
}

// Run scans until ctx is cancelled or the sink fails. Cancellation returns
// nil. After Run returns the scheduler is STOPPED.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.state.Store(int32(StateStopped))
	if s.State() == StateStopped {
		return errors.New("scheduler already stopped")
	}

	logger.L().Info("Scheduler - starting",
		helpers.String("interval", s.interval.String()),
		helpers.Int("excludedUsers", s.excludedUsers.Cardinality()),
		helpers.String("rules", strings.Join(s.ruleEngine.RuleIDs(), ",")))

	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.RunCycle(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		s.ready.Store(true)

		timer := s.clock.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C():
		}
	}
}

// RunCycle evaluates the current process set once. The returned error is
// always a sink failure.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	start := s.clock.Now()
	defer func() {
		s.metrics.ReportCycleDuration(s.clock.Since(start))
	}()

	snapshots, err := s.processManager.Snapshots(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.L().Warning("Scheduler - failed to list processes", helpers.Error(err))
			s.metrics.ReportTransientError()
		}
		return nil
	}

	if s.pool != nil {
		return s.admitAll(ctx, s.evaluateParallel(ctx, s.withoutExcluded(snapshots)))
	}

	for _, snapshot := range snapshots {
		if ctx.Err() != nil {
			return nil
		}
		if s.skip(snapshot) {
			continue
		}
		e := evaluation{snapshot: snapshot, matches: s.evaluate(snapshot)}
		if err := s.admit(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) withoutExcluded(snapshots []processmanager.Snapshot) []processmanager.Snapshot {
	candidates := make([]processmanager.Snapshot, 0, len(snapshots))
	for _, snapshot := range snapshots {
		if !s.skip(snapshot) {
			candidates = append(candidates, snapshot)
		}
	}
	return candidates
}

func (s *Scheduler) evaluate(snapshot processmanager.Snapshot) []ruleengine.RuleMatch {
	s.metrics.ReportProcessScanned()
	return s.ruleEngine.Evaluate(snapshot)
}

// evaluateParallel runs the rules for every candidate on the pool and keeps
// the results in snapshot order.
func (s *Scheduler) evaluateParallel(ctx context.Context, candidates []processmanager.Snapshot) []evaluation {
	results := make([]evaluation, len(candidates))
	var wg sync.WaitGroup
	for i, snapshot := range candidates {
		results[i].snapshot = snapshot
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			results[i].matches = s.evaluate(snapshot)
		}
		wg.Add(1)
		if err := s.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
	return results
}

func (s *Scheduler) admitAll(ctx context.Context, evaluations []evaluation) error {
	for _, e := range evaluations {
		if ctx.Err() != nil {
			return nil
		}
		if err := s.admit(e); err != nil {
			return err
		}
	}
	return nil
}

// admit echoes the debug line, then passes every match through the
// deduplicator and hands the admitted ones to the sink.
func (s *Scheduler) admit(e evaluation) error {
	pid := e.snapshot.PID()
	name, _ := e.snapshot.Name()
	user, _ := e.snapshot.Username()
	s.exporter.SendDebug(pid, name, user)

	if len(e.matches) == 0 {
		return nil
	}

	identity, err := alertdedup.IdentityFor(e.snapshot, s.identityIncludesStartTime)
	if err != nil {
		// retried next cycle, when the start time may be readable
		logger.L().Debug("Scheduler - skipping alerts without an identity", helpers.Int("pid", pid), helpers.Error(err))
		s.metrics.ReportTransientError()
		return nil
	}
	for _, match := range e.matches {
		if !s.dedup.Admit(identity) {
			s.metrics.ReportAlertSuppressed(match.RuleID)
			continue
		}

		alert := utils.AlertRecord{
			ID:        s.newAlertID(),
			RuleID:    match.RuleID,
			RuleLabel: match.Label,
			Priority:  match.Priority,
			PID:       pid,
			Name:      name,
			User:      user,
			Detail:    match.Detail,
			Timestamp: s.clock.Now(),
		}
		if err := s.exporter.SendAlert(alert); err != nil {
			return fmt.Errorf("alert %s for pid %d: %w", match.RuleID, pid, err)
		}
		s.metrics.ReportRuleAlert(match.RuleID)
	}
	return nil
}

// skip matches the owner against the excluded users, exactly after trimming.
// A process whose owner cannot be read is never excluded.
func (s *Scheduler) skip(snapshot processmanager.Snapshot) bool {
	if s.excludedUsers.Cardinality() == 0 {
		return false
	}
	user, err := snapshot.Username()
	if err != nil || !s.excludedUsers.Contains(strings.TrimSpace(user)) {
		return false
	}
	s.metrics.ReportProcessExcluded()
	return true
}

// Close releases the worker pool.
func (s *Scheduler) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}
