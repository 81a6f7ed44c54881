package uthreads

// thread is a single scheduled control flow: its identity, scheduling
// state, and the context used to suspend and resume it.
type thread struct {
	tid   uint32
	state State

	// entryPoint is nil for the main thread (tid 0), which is never
	// bootstrapped: the caller's own goroutine backs it, parking in its
	// Save and being resumed by another thread's Restore.
	entryPoint func()

	ctx *Context

	quantumsRun uint64

	// sleepRemaining is the number of quanta left before a sleeping
	// thread is re-readied. Zero means not sleeping.
	sleepRemaining uint64

	// explicitlyBlocked is true iff a Block call targeted this thread,
	// independent of whether it is also sleeping.
	explicitlyBlocked bool
}

// unready reports whether t belongs in the blocked bookkeeping set: it is
// unready for any reason, explicit block or sleep.
func (t *thread) unready() bool {
	return t.explicitlyBlocked || t.sleepRemaining > 0
}

// sleeping reports whether t belongs in the sleeping set.
func (t *thread) sleeping() bool {
	return t.sleepRemaining > 0
}

// newThread allocates a thread record for a spawned (non-main) thread in
// state Ready. Its context is not bootstrapped yet: callers (Spawn) do
// that once they have a stable *thread to close over in the finish
// callback (see Scheduler.threadFinished).
func newThread(tid uint32, entry func(), stackSize int) *thread {
	return &thread{
		tid:        tid,
		state:      Ready,
		entryPoint: entry,
		ctx:        NewContext(stackSize),
	}
}

// newMainThread allocates the implicit tid-0 record, already Running with
// one quantum credited, per Init's contract. Its context is never
// bootstrapped: Init's caller goroutine *is* the main thread's backing
// goroutine.
func newMainThread(stackSize int) *thread {
	return &thread{
		tid:         0,
		state:       Running,
		quantumsRun: 1,
		ctx:         NewContext(stackSize),
	}
}
