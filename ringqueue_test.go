package uthreads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueue_PushPopFIFO(t *testing.T) {
	q := newRingQueue[uint32](4)
	q.PushBack(1)
	q.PushBack(2)
	q.PushBack(3)

	v, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, uint32(1), v)

	v, ok = q.PopFront()
	require.True(t, ok)
	assert.Equal(t, uint32(2), v)

	assert.Equal(t, 1, q.Len())
}

func TestRingQueue_PopFrontEmpty(t *testing.T) {
	q := newRingQueue[uint32](4)
	_, ok := q.PopFront()
	assert.False(t, ok)
}

func TestRingQueue_GrowsBeyondInitialCapacity(t *testing.T) {
	q := newRingQueue[uint32](2)
	for i := uint32(0); i < 20; i++ {
		q.PushBack(i)
	}
	assert.Equal(t, 20, q.Len())
	for i := uint32(0); i < 20; i++ {
		v, ok := q.PopFront()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestRingQueue_Remove(t *testing.T) {
	q := newRingQueue[uint32](4)
	q.PushBack(1)
	q.PushBack(2)
	q.PushBack(3)

	assert.True(t, q.Remove(2))
	assert.Equal(t, []uint32{1, 3}, q.Slice())

	assert.False(t, q.Remove(2))
}

func TestRingQueue_RemoveHeadAndTail(t *testing.T) {
	q := newRingQueue[uint32](4)
	q.PushBack(1)
	q.PushBack(2)
	q.PushBack(3)

	assert.True(t, q.Remove(1))
	assert.True(t, q.Remove(3))
	assert.Equal(t, []uint32{2}, q.Slice())
}

func TestRingQueue_SliceOrderAfterWraparound(t *testing.T) {
	// the minimum capacity is 8, so fill it before popping to force the
	// last two pushes to wrap to the start of the buffer
	q := newRingQueue[uint32](4)
	for i := uint32(0); i < 8; i++ {
		q.PushBack(i)
	}
	_, _ = q.PopFront()
	_, _ = q.PopFront()
	q.PushBack(8)
	q.PushBack(9)

	assert.Equal(t, []uint32{2, 3, 4, 5, 6, 7, 8, 9}, q.Slice())
}

func TestRingQueue_SliceEmpty(t *testing.T) {
	q := newRingQueue[uint32](4)
	assert.Nil(t, q.Slice())
}
