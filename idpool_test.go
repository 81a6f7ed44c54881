package uthreads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDPool(t *testing.T) {
	p := newIDPool(4)
	assert.Equal(t, []uint32{1, 2, 3}, p.free)
}

func TestNewIDPool_MaxThreadsOne(t *testing.T) {
	p := newIDPool(1)
	assert.Empty(t, p.free)
	_, err := p.Acquire()
	assert.ErrorIs(t, err, ErrOutOfIDs)
}

func TestIDPool_AcquireSmallestFirst(t *testing.T) {
	p := newIDPool(4)

	tid, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tid)

	tid, err = p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tid)
}

func TestIDPool_ExhaustionError(t *testing.T) {
	p := newIDPool(2)
	_, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	assert.ErrorIs(t, err, ErrOutOfIDs)
}

func TestIDPool_ReleaseMaintainsAscendingOrder(t *testing.T) {
	p := newIDPool(5)
	a, _ := p.Acquire()
	b, _ := p.Acquire()
	c, _ := p.Acquire()
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{a, b, c})

	p.Release(b)
	p.Release(a)
	// 4 was never acquired, so it is still in the pool after 2 and 1
	assert.Equal(t, []uint32{1, 2, 4}, p.free)

	// the smallest released id comes back out first
	tid, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), tid)
}

func TestIDPool_ReleaseIntoMiddle(t *testing.T) {
	p := newIDPool(5)
	for i := 0; i < 4; i++ {
		_, err := p.Acquire()
		require.NoError(t, err)
	}
	assert.Empty(t, p.free)

	p.Release(2)
	p.Release(4)
	p.Release(3)
	assert.Equal(t, []uint32{2, 3, 4}, p.free)
}
