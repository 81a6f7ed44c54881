package uthreads

// idPool hands out thread identifiers drawn from [1, maxThreads), always
// returning the smallest free id (tid 0 is reserved for main and never
// enters the pool).
type idPool struct {
	// free holds available ids in ascending order.
	free []uint32
}

// newIDPool builds a pool pre-populated with {1, ..., maxThreads-1}.
func newIDPool(maxThreads uint32) *idPool {
	p := &idPool{}
	if maxThreads > 1 {
		p.free = make([]uint32, maxThreads-1)
		for i := range p.free {
			p.free[i] = uint32(i + 1)
		}
	}
	return p
}

// Acquire removes and returns the smallest free id.
func (p *idPool) Acquire() (uint32, error) {
	if len(p.free) == 0 {
		return 0, ErrOutOfIDs
	}
	tid := p.free[0]
	p.free = p.free[1:]
	return tid, nil
}

// Release returns tid to the pool, maintaining ascending order.
func (p *idPool) Release(tid uint32) {
	i := 0
	for i < len(p.free) && p.free[i] < tid {
		i++
	}
	p.free = append(p.free, 0)
	copy(p.free[i+1:], p.free[i:])
	p.free[i] = tid
}
