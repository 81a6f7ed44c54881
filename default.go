package uthreads

import "sync"

// defaultScheduler backs the package-level convenience functions. Nothing
// about Scheduler itself requires a singleton, but a program has one
// main thread and one natural scheduler, so Init/Spawn/Block/... as free
// functions are the ergonomic surface most callers want.
var defaultScheduler struct {
	sync.RWMutex
	s *Scheduler
}

func setDefault(s *Scheduler) {
	defaultScheduler.Lock()
	defer defaultScheduler.Unlock()
	defaultScheduler.s = s
}

func getDefault() *Scheduler {
	defaultScheduler.RLock()
	defer defaultScheduler.RUnlock()
	return defaultScheduler.s
}

// Spawn creates a new thread on the default Scheduler. It panics if Init
// has not been called; see [Init].
func Spawn(entry func()) (uint32, error) {
	return mustDefault().Spawn(entry)
}

// Terminate destroys tid on the default Scheduler.
func Terminate(tid uint32) error {
	return mustDefault().Terminate(tid)
}

// Block marks tid explicitly blocked on the default Scheduler.
func Block(tid uint32) error {
	return mustDefault().Block(tid)
}

// Resume clears tid's explicit-block flag on the default Scheduler.
func Resume(tid uint32) error {
	return mustDefault().Resume(tid)
}

// Sleep unschedules the calling thread for n quanta on the default
// Scheduler.
func Sleep(n uint64) error {
	return mustDefault().Sleep(n)
}

// Checkpoint yields to the default Scheduler if a preemption is due.
func Checkpoint() {
	mustDefault().Checkpoint()
}

// GetTID returns the current tid on the default Scheduler.
func GetTID() uint32 {
	return mustDefault().GetTID()
}

// GetTotalQuantums returns the total-quanta counter on the default
// Scheduler.
func GetTotalQuantums() uint64 {
	return mustDefault().GetTotalQuantums()
}

// GetQuantumsOf returns tid's quantum count on the default Scheduler.
func GetQuantumsOf(tid uint32) (uint64, error) {
	return mustDefault().GetQuantumsOf(tid)
}

// Shutdown stops the default Scheduler's timer.
func Shutdown() {
	if s := getDefault(); s != nil {
		s.Shutdown()
	}
}

func mustDefault() *Scheduler {
	s := getDefault()
	if s == nil {
		panic("uthreads: package-level call made before Init")
	}
	return s
}
