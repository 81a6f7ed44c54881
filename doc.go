// Package uthreads provides a cooperative-by-quantum user-space thread
// library for Go, multiplexing independently-executing control flows onto a
// single logical executor and preempting them on a periodic timer. The
// timer runs on wall-clock time (a [time.Ticker], or ITIMER_REAL on Linux);
// no virtual-time (process CPU time) timer is used.
//
// # Architecture
//
// The scheduler is built around a [Scheduler] core that owns thread records,
// an identifier pool, and a ready/blocked/sleeping registry. Each spawned
// thread is backed by a real goroutine parked behind a [Context], the
// safe, GC-aware equivalent of a raw setjmp/longjmp style save/restore
// pair. A quantum source — either a
// portable [time.Ticker] or a Linux-only ITIMER_REAL-backed driver using
// golang.org/x/sys/unix — fires periodically, and a dispatcher goroutine
// records each tick as a pending preemption. The preempt/schedule/
// sleep-accounting transaction itself runs on the running thread's own
// goroutine at its next [Scheduler.Checkpoint] call; ticks that arrive
// before that checkpoint count as a single pending preemption.
//
// # Scheduling Model
//
// Exactly one thread's user code is considered Running at a time. Threads
// transition between Ready, Running, and Blocked; sleeping is layered on
// Blocked via a per-thread countdown measured in quanta, not wall time.
// [Scheduler.Spawn], [Scheduler.Block], [Scheduler.Resume],
// [Scheduler.Sleep], [Scheduler.Terminate], and [Scheduler.Checkpoint] are
// the only entry points that mutate this state, each bracketed by a
// software signal mask.
//
// # Thread Safety
//
// The scheduler's public mutating entry points are designed to be called
// from the main thread and from spawned thread bodies themselves (for
// self-block, self-sleep, and self-terminate); they are not designed for
// concurrent invocation from multiple unrelated goroutines outside the
// scheduler's own threads, matching the single-logical-executor model.
//
// # Usage
//
//	sched, err := uthreads.New(10*time.Millisecond)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sched.Shutdown()
//
//	tid, err := sched.Spawn(func() {
//		for i := 0; i < 3; i++ {
//			fmt.Println("worker running")
//			sched.Checkpoint()
//		}
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// The caller of New backs the main thread (tid 0), so it must keep
//	// reaching checkpoints of its own for spawned threads to be
//	// scheduled. Once the worker's entry returns, its record is destroyed
//	// and GetQuantumsOf reports ErrNoSuchThread.
//	for {
//		if _, err := sched.GetQuantumsOf(tid); err != nil {
//			break
//		}
//		sched.Checkpoint()
//		time.Sleep(time.Millisecond)
//	}
//
// # Error Types
//
// The package reports library misuse and system failures as distinct error
// types:
//   - [ErrBadQuantum], [ErrOutOfIDs], [ErrEntryPointNil], [ErrNoSuchThread],
//     [ErrBlockMain], [ErrBadSleepCount]: library-level sentinel errors,
//     matchable via [errors.Is].
//   - [SystemError]: wraps a failure of the underlying timer/signal backend.
//
// Internal consistency violations panic via [InvariantViolation] rather than
// being reported as ordinary errors, since they indicate a scheduler bug
// rather than caller misuse.
package uthreads
