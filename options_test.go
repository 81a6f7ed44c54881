package uthreads

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(defaultMaxThreads), cfg.maxThreads)
	assert.Equal(t, defaultStackSize, cfg.stackSize)
	assert.NotNil(t, cfg.logger)
	assert.NotNil(t, cfg.quantumSource)
}

func TestResolveOptions_WithMaxThreadsAndStackSize(t *testing.T) {
	cfg, err := resolveOptions([]Option{
		WithMaxThreads(16),
		WithStackSize(8192),
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(16), cfg.maxThreads)
	assert.Equal(t, 8192, cfg.stackSize)
}

func TestResolveOptions_WithLogger(t *testing.T) {
	logger := NewNoOpLogger()
	cfg, err := resolveOptions([]Option{WithLogger(logger)})
	require.NoError(t, err)
	assert.Same(t, logger, cfg.logger)
}

func TestResolveOptions_NilOptionIgnored(t *testing.T) {
	cfg, err := resolveOptions([]Option{nil, WithMaxThreads(4)})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cfg.maxThreads)
}

func TestResolveOptions_WithRealTimeSignalSelectsBackend(t *testing.T) {
	tickerCfg, err := resolveOptions([]Option{WithRealTimeSignal(false)})
	require.NoError(t, err)

	signalCfg, err := resolveOptions([]Option{WithRealTimeSignal(true)})
	require.NoError(t, err)

	// the two options must resolve to distinct constructor functions
	assert.NotNil(t, tickerCfg.quantumSource)
	assert.NotNil(t, signalCfg.quantumSource)
	assert.NotEqual(t,
		reflect.ValueOf(tickerCfg.quantumSource).Pointer(),
		reflect.ValueOf(signalCfg.quantumSource).Pointer())
}
