package uthreads

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// defaultMaxThreads and defaultStackSize are the factory defaults for
// WithMaxThreads / WithStackSize.
const (
	defaultMaxThreads = 100
	defaultStackSize  = 4096
)

// Scheduler is a cooperative-by-quantum user-space thread scheduler. A
// zero Scheduler is not usable; construct one with New.
//
// Every exported method except the plain accessors (GetTID,
// GetTotalQuantums, GetQuantumsOf) brackets its mutation of scheduler
// state with the signal mask: the mask is this library's only
// synchronization primitive, since at most one thread's user code and the
// dispatcher ever touch scheduler state concurrently.
type Scheduler struct {
	mu sync.Mutex

	opts *schedulerOptions
	log  Logger

	reg    *registry
	ids    *idPool
	source quantumSource

	totalQuantums uint64

	lifecycle *fastLifecycle

	// byGoroutine maps a backing goroutine's runtime id to the tid it is
	// running, so Checkpoint (called with no arguments, matching the
	// data model's bare func() entry points) can work out which thread
	// is calling it. Populated when a spawned thread's entry starts
	// running and cleared when it finishes.
	byGoroutine map[uint64]uint32

	// preemptDue is set by the ticker-draining goroutine whenever a
	// quantum boundary has elapsed, and consumed by whichever thread
	// next calls Checkpoint: Go cannot force a running goroutine to
	// yield, so the running thread's own next library call is what
	// actually performs the switch the timer requested.
	preemptDue atomic.Bool

	stopCh     chan struct{}
	tickerDone chan struct{}
}

// New validates quantum and options, constructs a Scheduler, arms its
// timer and dispatcher, and creates the main thread (tid 0, Running,
// quantumsRun=1) bound to the calling goroutine. That goroutine is the
// main thread from then on: its own Checkpoint calls are how control ever
// leaves it, so it must keep reaching checkpoints for spawned threads to
// run. Call Shutdown to release the timer and dispatcher.
func New(quantum time.Duration, opts ...Option) (*Scheduler, error) {
	if quantum <= 0 {
		return nil, wrapLibraryErr("New", ErrBadQuantum)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		opts:        cfg,
		log:         cfg.logger,
		ids:         newIDPool(cfg.maxThreads),
		reg:         newRegistry(cfg.maxThreads),
		lifecycle:   newFastLifecycle(),
		byGoroutine: make(map[uint64]uint32),
	}
	source, err := cfg.quantumSource(quantum)
	if err != nil {
		sysErr := newSystemError("New", err)
		logErr(s.log, "scheduler", -1, "failed to arm quantum source", sysErr)
		reportSystemError(sysErr)
		return nil, sysErr
	}
	s.source = source
	s.initMain()
	return s, nil
}

// Init is the package-level convenience constructor: it builds a
// Scheduler via New and installs it as the default instance backing the
// package-level functions (Spawn, Block, Resume, ...). The calling
// goroutine becomes the main thread, as with New.
func Init(quantum time.Duration, opts ...Option) error {
	s, err := New(quantum, opts...)
	if err != nil {
		return err
	}
	setDefault(s)
	return nil
}

// initMain creates the tid-0 record, binds it to the calling goroutine (so
// that goroutine's own future Checkpoint calls are recognized as main's),
// and starts the tick-draining goroutine.
func (s *Scheduler) initMain() {
	main := newMainThread(s.opts.stackSize)
	s.reg.add(main)
	s.reg.current = main
	s.byGoroutine[currentGoroutineID()] = 0
	s.totalQuantums = 1
	s.lifecycle.Store(lifecycleRunning)
	s.stopCh = make(chan struct{})
	s.tickerDone = make(chan struct{})
	go s.tickLoop()
	logThread(s.log, "scheduler", 0, 1, "scheduler initialized", nil)
}

// tickLoop drains the quantum source and records that a preemption is due.
// It never touches registry state directly and never blocks on a thread's
// context: Go cannot force a running goroutine to yield, so the actual
// preempt/schedule/sleep-accounting transaction (switchAway) runs on the
// preempted thread's own goroutine, at its next Checkpoint call, exactly
// as a delivered SIGVTALRM runs its handler on the thread it interrupts.
// It selects on stopCh rather than relying on Ticks() closing, since
// neither quantum source backend closes its channel on Stop.
func (s *Scheduler) tickLoop() {
	defer close(s.tickerDone)
	for {
		select {
		case <-s.source.Ticks():
			s.preemptDue.Store(true)
		case <-s.stopCh:
			return
		}
	}
}

// threadFinished destroys a thread whose entry function returned naturally
// (as opposed to being explicitly terminated), then hands control to the
// next ready thread. It runs on the finishing thread's own backing
// goroutine, via the onFinish callback passed to Context.Bootstrap, and
// like Terminate's self-path it never returns: a finished thread's
// goroutine has nothing left to do but exit.
func (s *Scheduler) threadFinished(t *thread) {
	s.mu.Lock()
	if s.reg.ready.Len() == 0 {
		s.mu.Unlock()
		invariantf("thread %d finished with no ready successor", t.tid)
	}
	incoming := s.scheduleNext()
	s.reg.remove(t.tid)
	s.ids.Release(t.tid)
	logThread(s.log, "scheduler", t.tid, s.totalQuantums, "thread finished", nil)
	s.mu.Unlock()

	incoming.ctx.Restore(0)
	runtime.Goexit()
}

// Checkpoint is the library call CPU-bound worker entry functions make to
// give the scheduler an opportunity to act on a pending preemption. Go has
// no safe mechanism to force a goroutine to yield at an arbitrary
// instruction, so a pending preemption only takes effect at a checkpoint
// like this one, the same way a signal handler only ever runs on the
// thread it interrupts. Other library calls do not consume it; control
// also leaves a thread when it blocks itself, sleeps, or terminates itself.
//
// Checkpoint identifies its caller via currentGoroutineID rather than a
// parameter, so that spawned threads can keep the plain func() entry-point
// signature from the data model. Calling Checkpoint from a goroutine this
// Scheduler did not spawn (including a goroutine other than the one that
// called New) is a no-op.
func (s *Scheduler) Checkpoint() {
	if s.lifecycle.IsTerminal() {
		s.exitIfSpawned()
		return
	}
	if !s.preemptDue.Load() {
		return
	}

	gid := currentGoroutineID()

	s.mu.Lock()
	tid, tracked := s.byGoroutine[gid]
	if !tracked {
		s.mu.Unlock()
		return
	}
	t, ok := s.reg.get(tid)
	if !ok || t != s.reg.current {
		s.mu.Unlock()
		return
	}
	if s.reg.ready.Len() == 0 {
		// Nobody else to run; consume the due flag so we don't re-check
		// every call, but there is nothing to switch to.
		s.preemptDue.Store(false)
		s.mu.Unlock()
		return
	}
	s.preemptDue.Store(false)
	s.reg.enqueueReady(t)
	logThread(s.log, "scheduler", t.tid, s.totalQuantums, "preempted at checkpoint", nil)
	s.switchAway(t)
}

// exitIfSpawned ends the calling goroutine if it backs a spawned thread.
// After Shutdown there is no scheduler left to ever park or resume such a
// goroutine, so returning to a checkpoint loop would spin forever.
func (s *Scheduler) exitIfSpawned() {
	gid := currentGoroutineID()
	s.mu.Lock()
	tid, tracked := s.byGoroutine[gid]
	s.mu.Unlock()
	if tracked && tid != 0 {
		runtime.Goexit()
	}
}

// scheduleNext dequeues the ready-queue head, promotes it to Running,
// performs the once-per-switch sleep-countdown accounting, and updates the
// total-quanta counter. Callers must hold s.mu and must have already
// confirmed the ready queue is non-empty.
func (s *Scheduler) scheduleNext() *thread {
	incoming, ok := s.reg.dequeueReady()
	if !ok {
		invariantf("scheduleNext: ready queue became empty unexpectedly")
	}
	incoming.state = Running
	incoming.quantumsRun++
	s.totalQuantums++
	s.reg.current = incoming

	for _, tid := range s.reg.tickSleepers() {
		if woken, ok := s.reg.get(tid); ok {
			s.reg.enqueueReady(woken)
			logThread(s.log, "scheduler", tid, s.totalQuantums, "sleep expired", nil)
		}
	}
	return incoming
}

// switchAway schedules the next ready thread, restores it, and parks self
// to await a future restore. Callers must hold s.mu and must have already
// moved self out of Running (Ready, Blocked, or sleeping); s.reg.current
// still points at self until scheduleNext replaces it. It returns with s.mu
// unlocked, resuming on self's own goroutine once some future switch
// restores it; if a spawned thread's context is discarded instead
// (Terminate of a parked thread), its goroutine ends via runtime.Goexit.
func (s *Scheduler) switchAway(self *thread) {
	incoming := s.scheduleNext()

	s.mu.Unlock()
	incoming.ctx.Restore(0)

	if self.tid == 0 {
		// The real caller goroutine behind tid 0 parks here directly:
		// there is no separate backing goroutine to hand off to.
		self.ctx.Save()
		return
	}
	_, resumed := self.ctx.Save()
	if !resumed {
		runtime.Goexit()
	}
}

// Spawn creates a new Ready thread running entry and returns its tid.
func (s *Scheduler) Spawn(entry func()) (uint32, error) {
	if entry == nil {
		err := wrapLibraryErr("Spawn", ErrEntryPointNil)
		logErr(s.log, "scheduler", -1, "spawn failed", err)
		reportLibraryError(err)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureRunning("Spawn"); err != nil {
		return 0, err
	}

	tid, err := s.ids.Acquire()
	if err != nil {
		wrapped := wrapLibraryErr("Spawn", err)
		logErr(s.log, "scheduler", -1, "spawn failed", wrapped)
		reportLibraryError(wrapped)
		return 0, wrapped
	}

	// wrapped registers this goroutine's runtime id against tid before
	// running the caller's entry, so Checkpoint can recognize it, and
	// unregisters it via defer so the mapping is cleaned up regardless of
	// how the goroutine ends: a normal return, a panic, or the
	// runtime.Goexit a discarded or self-terminated thread uses to unwind
	// without running further user code (see Context.Discard and
	// Terminate).
	wrapped := func() {
		gid := currentGoroutineID()
		s.mu.Lock()
		s.byGoroutine[gid] = tid
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.byGoroutine, gid)
			s.mu.Unlock()
		}()
		entry()
	}
	t := newThread(tid, wrapped, s.opts.stackSize)
	t.ctx.Bootstrap(wrapped, func() { s.threadFinished(t) })
	s.reg.add(t)
	s.reg.enqueueReady(t)

	logThread(s.log, "scheduler", tid, s.totalQuantums, "spawned", nil)
	return tid, nil
}

// Terminate destroys tid. Terminating tid 0 exits the process. Terminating
// the current thread switches control to the next ready thread and never
// returns to the caller.
func (s *Scheduler) Terminate(tid uint32) error {
	s.mu.Lock()

	if err := s.ensureRunning("Terminate"); err != nil {
		s.mu.Unlock()
		return err
	}

	t, ok := s.reg.get(tid)
	if !ok {
		s.mu.Unlock()
		err := wrapLibraryErr("Terminate", ErrNoSuchThread)
		logErr(s.log, "scheduler", int64(tid), "terminate failed", err)
		reportLibraryError(err)
		return err
	}

	if tid == 0 {
		s.mu.Unlock()
		logThread(s.log, "scheduler", 0, s.totalQuantums, "main terminated, exiting", nil)
		s.lifecycle.Store(lifecycleTerminated)
		s.source.Stop()
		os.Exit(0)
	}

	if t == s.reg.current {
		// Self-termination: pick a successor before tearing down our own
		// record, since we must not be observable once we yield.
		if s.reg.ready.Len() == 0 {
			invariantf("Terminate: current non-main thread has no ready successor")
		}
		incoming := s.scheduleNext()

		s.reg.remove(t.tid)
		s.ids.Release(t.tid)
		logThread(s.log, "scheduler", t.tid, s.totalQuantums, "self-terminated", nil)

		s.mu.Unlock()
		incoming.ctx.Restore(0)
		// This thread's own goroutine ends here via Goexit, running any
		// deferred cleanup in entry without returning normally; it never
		// parks again, so there is nothing left to discard.
		runtime.Goexit()
	}

	s.reg.remove(t.tid)
	s.ids.Release(t.tid)
	logThread(s.log, "scheduler", t.tid, s.totalQuantums, "terminated", nil)
	t.ctx.Discard()
	s.mu.Unlock()
	return nil
}

// Block marks tid explicitly blocked. Blocking the current (non-main)
// thread switches control away from it.
func (s *Scheduler) Block(tid uint32) error {
	if tid == 0 {
		err := wrapLibraryErr("Block", ErrBlockMain)
		logErr(s.log, "scheduler", 0, "block failed", err)
		reportLibraryError(err)
		return err
	}

	s.mu.Lock()

	if err := s.ensureRunning("Block"); err != nil {
		s.mu.Unlock()
		return err
	}

	t, ok := s.reg.get(tid)
	if !ok {
		s.mu.Unlock()
		err := wrapLibraryErr("Block", ErrNoSuchThread)
		logErr(s.log, "scheduler", int64(tid), "block failed", err)
		reportLibraryError(err)
		return err
	}

	if t.state == Blocked {
		t.explicitlyBlocked = true
		s.reg.unready[tid] = struct{}{}
		s.mu.Unlock()
		return nil
	}

	if t.state == Ready {
		s.reg.markBlocked(t)
		logThread(s.log, "scheduler", tid, s.totalQuantums, "blocked", nil)
		s.mu.Unlock()
		return nil
	}

	// t.state == Running: self-block.
	if s.reg.ready.Len() == 0 {
		invariantf("Block: self-block of %d has no ready successor", tid)
	}
	s.reg.markBlocked(t)
	logThread(s.log, "scheduler", tid, s.totalQuantums, "self-blocked", nil)
	s.switchAway(t)
	return nil
}

// Resume clears tid's explicit-block flag and re-readies it if it is not
// also sleeping.
func (s *Scheduler) Resume(tid uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureRunning("Resume"); err != nil {
		return err
	}

	t, ok := s.reg.get(tid)
	if !ok {
		err := wrapLibraryErr("Resume", ErrNoSuchThread)
		logErr(s.log, "scheduler", int64(tid), "resume failed", err)
		reportLibraryError(err)
		return err
	}

	if t.sleeping() {
		t.explicitlyBlocked = false
		logThread(s.log, "scheduler", tid, s.totalQuantums, "resume while sleeping: will wake at expiry", nil)
		return nil
	}

	if t.state == Blocked {
		delete(s.reg.unready, tid)
		s.reg.enqueueReady(t)
		logThread(s.log, "scheduler", tid, s.totalQuantums, "resumed", nil)
	}
	return nil
}

// Sleep unschedules the current (non-main) thread for n quanta.
func (s *Scheduler) Sleep(n uint64) error {
	s.mu.Lock()

	if err := s.ensureRunning("Sleep"); err != nil {
		s.mu.Unlock()
		return err
	}

	t := s.reg.current
	if n == 0 || t == nil || t.tid == 0 {
		s.mu.Unlock()
		err := wrapLibraryErr("Sleep", ErrBadSleepCount)
		logErr(s.log, "scheduler", currentTidOrNegative(t), "sleep failed", err)
		reportLibraryError(err)
		return err
	}

	if s.reg.ready.Len() == 0 {
		invariantf("Sleep: thread %d sleeping has no ready successor", t.tid)
	}
	s.reg.markSleeping(t, n)
	logThread(s.log, "scheduler", t.tid, s.totalQuantums, "sleeping", map[string]any{"quanta": n})
	s.switchAway(t)
	return nil
}

// GetTID returns the tid of the currently Running thread.
func (s *Scheduler) GetTID() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reg.current == nil {
		return 0
	}
	return s.reg.current.tid
}

// GetTotalQuantums returns the total number of quanta granted so far.
func (s *Scheduler) GetTotalQuantums() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalQuantums
}

// GetQuantumsOf returns the number of quanta tid has run for.
func (s *Scheduler) GetQuantumsOf(tid uint32) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.reg.get(tid)
	if !ok {
		err := wrapLibraryErr("GetQuantumsOf", ErrNoSuchThread)
		logErr(s.log, "scheduler", int64(tid), "get quantums failed", err)
		reportLibraryError(err)
		return 0, err
	}
	return t.quantumsRun, nil
}

// StackSize returns the declared per-thread stack-size budget.
func (s *Scheduler) StackSize() int {
	return s.opts.stackSize
}

// Shutdown stops the dispatcher and the underlying quantum source. It
// does not forcibly terminate any thread, but goroutines backing spawned
// threads end at their next Checkpoint call, since nothing can ever
// schedule them again.
func (s *Scheduler) Shutdown() {
	if !s.lifecycle.TryTransition(lifecycleRunning, lifecycleTerminating) &&
		!s.lifecycle.TryTransition(lifecycleAwake, lifecycleTerminating) {
		return
	}
	if s.stopCh != nil {
		close(s.stopCh)
		<-s.tickerDone
	}
	s.source.Stop()
	s.lifecycle.Store(lifecycleTerminated)
}

func (s *Scheduler) ensureRunning(op string) error {
	if s.lifecycle.IsTerminal() {
		err := wrapLibraryErr(op, ErrSchedulerClosed)
		logErr(s.log, "scheduler", -1, "operation after shutdown", err)
		reportLibraryError(err)
		return err
	}
	return nil
}

func currentTidOrNegative(t *thread) int64 {
	if t == nil {
		return -1
	}
	return int64(t.tid)
}

// reportLibraryError writes the stderr diagnostic for a library-level
// error, distinct from the system-level prefix below.
func reportLibraryError(err error) {
	fmt.Fprintf(os.Stderr, "thread library error: %v\n", err)
}

// reportSystemError writes the stderr diagnostic for a failure of the
// timer/signal backend.
func reportSystemError(err error) {
	fmt.Fprintf(os.Stderr, "system error: %v\n", err)
}
