package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// unfinishedCounter is the shared "unfinished_run_once_modules" handle from
// §4.C Step 1: every RUN_ONCE module's completion callback decrements it;
// every RUN_TO_END_OF_PHASE module in the same phase only ever reads it.
type unfinishedCounter struct {
	n int64 // atomic
}

func (u *unfinishedCounter) dec() int64 { return atomic.AddInt64(&u.n, -1) }
func (u *unfinishedCounter) get() int64 { return atomic.LoadInt64(&u.n) }

// Scheduler runs the sibling modules of one phase concurrently, enforces
// the RUN_ONCE/RUN_TO_END_OF_PHASE lifetime rules, and recurses into
// nested sub-phases (§4.C). Grounded on the teacher's concurrent
// node-launch-and-join pattern in graph/engine.go, using
// golang.org/x/sync/errgroup in place of a hand-rolled WaitGroup-plus-
// first-error to join a phase's RUN_TO_END_OF_PHASE children.
type Scheduler struct {
	History  *History
	Ensemble Ensemble
	Now      func() int64
	Abort    *AbortFlag
	Metrics  *Metrics
	Logger   Logger

	// PhaseTimeout bounds how long the scheduler waits for a
	// RUN_TO_END_OF_PHASE module once its phase's
	// unfinished_run_once_modules counter has reached zero, before
	// declaring it hung (§4.C "Termination guarantees", §7 "Hang /
	// timeout"). Zero disables the bound — the open-question default.
	PhaseTimeout time.Duration

	// Active, when non-nil, is shared across the whole run (propagated
	// into nested schedulers) and tracks the current concurrently
	// executing module count for Metrics.
	Active *atomic.Int64
}

func (s *Scheduler) nested() *Scheduler {
	return &Scheduler{
		History: s.History, Ensemble: s.Ensemble, Now: s.Now, Abort: s.Abort,
		Metrics: s.Metrics, Logger: s.Logger, PhaseTimeout: s.PhaseTimeout, Active: s.Active,
	}
}

func (s *Scheduler) trackActive(delta int64) {
	if s.Active == nil {
		return
	}
	n := s.Active.Add(delta)
	s.Metrics.setActiveModules(int(n))
}

// RunPhase executes phase to completion (§4.C Step 2, Step 5, Step 6,
// "Termination guarantees"): every direct child is launched concurrently
// and the scheduler returns only once every child has returned (or, for a
// hung RUN_TO_END_OF_PHASE child, once PhaseTimeout has elapsed since that
// child's phase-completion barrier opened).
func (s *Scheduler) RunPhase(ctx context.Context, phase *Phase) {
	runOnceChildren := make([]PhaseNode, 0, len(phase.Children))
	runToEndChildren := make([]PhaseNode, 0, len(phase.Children))

	for _, child := range phase.Children {
		if child.SubPhase != nil || child.Instance.Lifetime == RunOnce {
			runOnceChildren = append(runOnceChildren, child)
		} else {
			runToEndChildren = append(runToEndChildren, child)
		}
	}

	counter := &unfinishedCounter{n: int64(len(runOnceChildren))}
	counterZero := make(chan struct{})
	if len(runOnceChildren) == 0 {
		close(counterZero)
	}

	var runOnceWG sync.WaitGroup
	runOnceWG.Add(len(runOnceChildren))
	for _, child := range runOnceChildren {
		child := child
		go func() {
			defer runOnceWG.Done()
			defer counter.dec()
			s.trackActive(1)
			defer s.trackActive(-1)
			s.runOnceChild(ctx, child)
		}()
	}
	if len(runOnceChildren) > 0 {
		go func() {
			runOnceWG.Wait()
			close(counterZero)
		}()
	}

	var g errgroup.Group
	for _, child := range runToEndChildren {
		child := child
		g.Go(func() error {
			s.trackActive(1)
			defer s.trackActive(-1)
			s.runRunToEndChild(ctx, child, counter, counterZero)
			return nil
		})
	}

	runOnceWG.Wait()
	_ = g.Wait()
}

// runOnceChild executes one RUN_ONCE leaf, or recurses into a nested
// sub-phase, which is opaque to this scheduler: it completes when its own
// (freshly-scoped) Scheduler returns (§4.C Step 6).
func (s *Scheduler) runOnceChild(ctx context.Context, child PhaseNode) {
	if child.SubPhase != nil {
		s.nested().RunPhase(ctx, child.SubPhase)
		return
	}
	child.Instance.runOnce(ctx, s.Now)
}

// runRunToEndChild drives one RUN_TO_END_OF_PHASE leaf per §4.C Step 4,
// then enforces the defensive barrier and hang timeout from
// "Termination guarantees".
func (s *Scheduler) runRunToEndChild(ctx context.Context, child PhaseNode, counter *unfinishedCounter, counterZero <-chan struct{}) {
	mi := child.Instance
	mi.counter = counter

	workDone := make(chan struct{})
	go func() {
		defer close(workDone)
		switch mi.RunToEndMeth {
		case Manual:
			// The module itself polls UnfinishedRunOnceModules() and
			// returns when appropriate; invoked exactly once.
			mi.runOnce(ctx, s.Now)
		default: // Automatic
			for {
				mi.runOnce(ctx, s.Now)
				if counter.get() == 0 || s.Abort.IsSet() {
					return
				}
			}
		}
	}()

	select {
	case <-workDone:
		return
	case <-counterZero:
	}

	// Defensive barrier (§4.C Step 4 final paragraph): the run-to-end
	// method may have exited its loop early, or a MANUAL module may still
	// be working. Wait for real completion, bounded by PhaseTimeout.
	if s.PhaseTimeout <= 0 {
		<-workDone
		return
	}

	timer := time.NewTimer(s.PhaseTimeout)
	defer timer.Stop()
	select {
	case <-workDone:
	case <-timer.C:
		s.Metrics.incTimeout()
		s.History.Append(Operation{
			Type: OpError, TimeNS: s.Now(), ProcessID: mi.Name, ModuleRef: mi.ModuleRef,
			Value: "timeout",
		})
		// Abandoned: the workDone goroutine keeps running cooperatively
		// in the background (§5 "Cancellation"); the scheduler proceeds
		// without joining it.
	}
}
