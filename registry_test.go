package uthreads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistryThread(tid uint32, state State) *thread {
	return &thread{tid: tid, state: state}
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := newRegistry(8)
	th := newTestRegistryThread(1, Ready)
	r.add(th)

	got, ok := r.get(1)
	require.True(t, ok)
	assert.Same(t, th, got)

	_, ok = r.get(2)
	assert.False(t, ok)
}

func TestRegistry_EnqueueDequeueReady(t *testing.T) {
	r := newRegistry(8)
	a := newTestRegistryThread(1, Blocked)
	b := newTestRegistryThread(2, Blocked)
	r.add(a)
	r.add(b)

	r.enqueueReady(a)
	r.enqueueReady(b)
	assert.Equal(t, Ready, a.state)

	first, ok := r.dequeueReady()
	require.True(t, ok)
	assert.Same(t, a, first)

	second, ok := r.dequeueReady()
	require.True(t, ok)
	assert.Same(t, b, second)

	_, ok = r.dequeueReady()
	assert.False(t, ok)
}

func TestRegistry_MarkBlockedRemovesFromReady(t *testing.T) {
	r := newRegistry(8)
	a := newTestRegistryThread(1, Ready)
	r.add(a)
	r.enqueueReady(a)

	r.markBlocked(a)
	assert.Equal(t, Blocked, a.state)
	assert.True(t, a.explicitlyBlocked)
	_, ok := r.unready[1]
	assert.True(t, ok)

	_, ok = r.dequeueReady()
	assert.False(t, ok, "blocked thread must not remain in the ready queue")
}

func TestRegistry_MarkSleepingAndTick(t *testing.T) {
	r := newRegistry(8)
	a := newTestRegistryThread(1, Running)
	r.add(a)

	r.markSleeping(a, 2)
	assert.True(t, a.sleeping())
	assert.Equal(t, []uint32{1}, r.sleeping)

	woken := r.tickSleepers()
	assert.Empty(t, woken)
	assert.Equal(t, uint64(1), a.sleepRemaining)

	woken = r.tickSleepers()
	assert.Equal(t, []uint32{1}, woken)
	assert.Equal(t, uint64(0), a.sleepRemaining)
	assert.Empty(t, r.sleeping)
}

func TestRegistry_TickSleepersKeepsExplicitlyBlocked(t *testing.T) {
	r := newRegistry(8)
	a := newTestRegistryThread(1, Running)
	r.add(a)
	r.markSleeping(a, 1)
	a.explicitlyBlocked = true

	woken := r.tickSleepers()
	assert.Empty(t, woken, "a thread that is still explicitly blocked must not be woken by sleep expiry")
	_, stillUnready := r.unready[1]
	assert.True(t, stillUnready)
}

func TestRegistry_RemoveClearsAllStructures(t *testing.T) {
	r := newRegistry(8)
	a := newTestRegistryThread(1, Ready)
	r.add(a)
	r.enqueueReady(a)
	r.current = a

	r.remove(1)
	_, ok := r.get(1)
	assert.False(t, ok)
	assert.Nil(t, r.current)
	_, ok = r.dequeueReady()
	assert.False(t, ok)
}

func TestRegistry_RemoveSleepingThread(t *testing.T) {
	r := newRegistry(8)
	a := newTestRegistryThread(1, Running)
	r.add(a)
	r.markSleeping(a, 5)

	r.remove(1)
	assert.Empty(t, r.sleeping)
	_, ok := r.unready[1]
	assert.False(t, ok)
}
