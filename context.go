package uthreads

// Context is the save/restore primitive for a single thread's execution
// state. It is the sole locus of runtime-adjacent machinery in this
// package: rather than manipulating raw registers and a stack pointer the
// way a setjmp/longjmp pair would, it parks and readies a real Go
// goroutine behind an unbuffered rendezvous channel, which is the
// portable, GC-safe equivalent of what runtime.gopark/runtime.goready do
// internally, reached here through the sanctioned channel API instead of
// a go:linkname trick.
//
// Restore is a handoff, not a round trip: it blocks only until the target
// goroutine is ready to receive (which, for a goroutine already parked on
// resume, is immediate), never until that goroutine later yields again in
// turn. Each thread is responsible for parking itself (via Save) as the
// very next thing it does after restoring its successor; see
// Scheduler.switchAway. A design where Restore instead waits for its
// target's *next* yield deadlocks once three or more threads are in
// rotation.
type Context struct {
	// resume is the rendezvous channel. Save blocks receiving on it;
	// Restore sends the resume value on it.
	resume chan int

	// stackSize is the declared, bookkeeping-only stack budget; the Go
	// runtime owns and grows the real stack.
	stackSize int

	// started is true once Bootstrap has launched the backing goroutine.
	started bool
}

// NewContext allocates a Context with the given declared stack-size
// budget. The context is not usable until Bootstrap is called.
func NewContext(stackSize int) *Context {
	return &Context{
		resume:    make(chan int),
		stackSize: stackSize,
	}
}

// Bootstrap initializes ctx so that the first Restore enters entry on a
// freshly launched goroutine. entry must not be nil; callers (Spawn) are
// responsible for validating that before calling Bootstrap.
//
// onFinish, if non-nil, runs on the backing goroutine immediately after
// entry returns of its own accord (as opposed to the thread being
// terminated mid-flight). It is the finishing thread's only opportunity to
// hand control onward — see Scheduler.threadFinished — so it must itself
// transfer control to a successor and never return.
func (c *Context) Bootstrap(entry func(), onFinish func()) {
	c.started = true
	go func() {
		// Block until the scheduler's first Restore hands control to
		// this thread.
		if _, ok := <-c.resume; !ok {
			return
		}
		entry()
		if onFinish != nil {
			onFinish()
		}
	}()
}

// Save parks the calling goroutine until a corresponding Restore hands it
// a resume value, or until Discard closes ctx out from under it. The
// latter is reported via resumed=false, signaling the caller that this
// context has been torn down rather than legitimately rescheduled.
func (c *Context) Save() (resumeValue int, resumed bool) {
	v, ok := <-c.resume
	return v, ok
}

// Restore hands v to the goroutine parked behind ctx, unblocking its
// pending Save (or its initial Bootstrap wait). It returns as soon as that
// handoff completes — i.e. once ctx's goroutine is scheduled to run —
// never once that goroutine later yields again; see the deadlock note on
// Context above.
func (c *Context) Restore(v int) {
	c.resume <- v
}

// Discard releases ctx's backing goroutine, used when a thread is
// terminated without ever being resumed again. If the goroutine was never
// started, this is a no-op.
func (c *Context) Discard() {
	if !c.started {
		return
	}
	close(c.resume)
}

// StackSize returns the declared stack-size budget.
func (c *Context) StackSize() int {
	return c.stackSize
}
