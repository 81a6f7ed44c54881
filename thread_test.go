package uthreads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThread_UnreadyAndSleeping(t *testing.T) {
	th := &thread{}
	assert.False(t, th.unready())
	assert.False(t, th.sleeping())

	th.explicitlyBlocked = true
	assert.True(t, th.unready())
	assert.False(t, th.sleeping())

	th.explicitlyBlocked = false
	th.sleepRemaining = 3
	assert.True(t, th.unready())
	assert.True(t, th.sleeping())
}

func TestNewMainThread(t *testing.T) {
	main := newMainThread(defaultStackSize)
	assert.Equal(t, uint32(0), main.tid)
	assert.Equal(t, Running, main.state)
	assert.Equal(t, uint64(1), main.quantumsRun)
	assert.Nil(t, main.entryPoint)
}

func TestNewThread(t *testing.T) {
	entry := func() {}
	th := newThread(1, entry, defaultStackSize)
	assert.Equal(t, uint32(1), th.tid)
	assert.Equal(t, Ready, th.state)
	assert.Equal(t, uint64(0), th.quantumsRun)
	assert.NotNil(t, th.ctx)
	assert.False(t, th.ctx.started, "newThread must not bootstrap its own context")

	ran := make(chan struct{})
	th.ctx.Bootstrap(func() { close(ran) }, nil)
	th.ctx.Restore(0)
	<-ran
}
