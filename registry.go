package uthreads

// registry is the canonical owner of every live thread record, and
// maintains the auxiliary structures (ready queue, unready set, sleeping
// order) whose membership tracks each record's state.
type registry struct {
	// byID is the canonical id-to-record map.
	byID map[uint32]*thread

	// ready is the FIFO ready queue, holding tids in admission order.
	ready *ringQueue[uint32]

	// unready mirrors which tids are explicitly blocked or sleeping; a
	// single set covers both since either condition keeps a thread out
	// of the ready queue.
	unready map[uint32]struct{}

	// sleeping preserves insertion order of tids with sleepRemaining > 0,
	// for deterministic wake iteration.
	sleeping []uint32

	// current is the Running thread, or nil if nothing is.
	current *thread
}

// newRegistry builds an empty registry sized for maxThreads.
func newRegistry(maxThreads uint32) *registry {
	return &registry{
		byID:    make(map[uint32]*thread, maxThreads),
		ready:   newRingQueue[uint32](int(maxThreads)),
		unready: make(map[uint32]struct{}),
	}
}

// add inserts t into byID. It does not touch the ready/unready/sleeping
// structures; callers place t into the structure matching its initial
// state.
func (r *registry) add(t *thread) {
	r.byID[t.tid] = t
}

// get looks up a thread by tid.
func (r *registry) get(tid uint32) (*thread, bool) {
	t, ok := r.byID[tid]
	return t, ok
}

// remove destroys the record for tid, removing it from every auxiliary
// structure it might belong to. It does not release the id to the pool;
// callers do that once they've decided destruction is safe.
func (r *registry) remove(tid uint32) {
	t, ok := r.byID[tid]
	if !ok {
		return
	}
	if t == r.current {
		r.current = nil
	}
	r.ready.Remove(tid)
	delete(r.unready, tid)
	r.removeSleeping(tid)
	delete(r.byID, tid)
}

// enqueueReady transitions t to Ready and appends it to the ready queue.
func (r *registry) enqueueReady(t *thread) {
	t.state = Ready
	t.explicitlyBlocked = false
	r.ready.PushBack(t.tid)
}

// dequeueReady pops the ready queue's head, if any.
func (r *registry) dequeueReady() (*thread, bool) {
	tid, ok := r.ready.PopFront()
	if !ok {
		return nil, false
	}
	t := r.byID[tid]
	if t == nil {
		invariantf("ready queue referenced unknown tid %d", tid)
	}
	return t, true
}

// markBlocked moves t into the unready set with explicitlyBlocked set,
// and out of the ready queue if it was there.
func (r *registry) markBlocked(t *thread) {
	t.state = Blocked
	t.explicitlyBlocked = true
	r.ready.Remove(t.tid)
	r.unready[t.tid] = struct{}{}
}

// markSleeping moves t into the unready and sleeping sets with the given
// countdown, and out of the ready queue if it was there.
func (r *registry) markSleeping(t *thread, n uint64) {
	t.state = Blocked
	t.sleepRemaining = n
	r.ready.Remove(t.tid)
	r.unready[t.tid] = struct{}{}
	r.sleeping = append(r.sleeping, t.tid)
}

func (r *registry) removeSleeping(tid uint32) {
	for i, id := range r.sleeping {
		if id == tid {
			r.sleeping = append(r.sleeping[:i], r.sleeping[i+1:]...)
			return
		}
	}
}

// tickSleepers decrements every sleeping thread's countdown by one
// quantum, returning (in sleeping-set iteration order) the tids that
// reached zero and are not explicitly blocked, which the caller must
// re-ready.
func (r *registry) tickSleepers() []uint32 {
	var woken []uint32
	remaining := r.sleeping[:0]
	for _, tid := range r.sleeping {
		t := r.byID[tid]
		if t == nil {
			invariantf("sleeping set referenced unknown tid %d", tid)
		}
		if t.sleepRemaining == 0 {
			invariantf("thread %d in sleeping set with zero sleepRemaining", tid)
		}
		t.sleepRemaining--
		if t.sleepRemaining == 0 {
			delete(r.unready, tid)
			if !t.explicitlyBlocked {
				woken = append(woken, tid)
			} else {
				r.unready[tid] = struct{}{}
			}
			continue
		}
		remaining = append(remaining, tid)
	}
	r.sleeping = remaining
	return woken
}
