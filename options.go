package uthreads

import "time"

// schedulerOptions holds configuration options for Scheduler creation.
type schedulerOptions struct {
	maxThreads    uint32
	stackSize     int
	logger        Logger
	quantumSource func(time.Duration) (quantumSource, error)
}

// --- Scheduler Options ---

// Option configures a Scheduler instance.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

type optionFunc func(*schedulerOptions) error

func (f optionFunc) applyScheduler(opts *schedulerOptions) error {
	return f(opts)
}

// WithMaxThreads sets the upper bound on concurrently-live threads,
// including the main thread. The default is 100.
func WithMaxThreads(n uint32) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		opts.maxThreads = n
		return nil
	})
}

// WithStackSize sets the declared stack-size budget reported by
// [Scheduler.StackSize]. It is bookkeeping only: each thread is backed by
// a goroutine whose real stack the Go runtime owns and grows, so no raw
// stack memory is allocated. The default is 4096 bytes.
func WithStackSize(bytes int) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		opts.stackSize = bytes
		return nil
	})
}

// WithLogger overrides the scheduler's logger. When unset, the package
// global logger (see [SetStructuredLogger]) is used.
func WithLogger(logger Logger) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	})
}

// WithRealTimeSignal selects the quantum timer backend. When enabled, the
// scheduler arms a real ITIMER_REAL interval timer and drives its
// dispatcher from the delivered signal (Linux only). When
// disabled (the default), a portable time.Ticker drives the dispatcher.
// Both backends satisfy the same internal quantumSource contract and are
// indistinguishable to callers.
func WithRealTimeSignal(enabled bool) Option {
	return optionFunc(func(opts *schedulerOptions) error {
		if enabled {
			opts.quantumSource = newSignalQuantumSource
		} else {
			opts.quantumSource = newTickerQuantumSource
		}
		return nil
	})
}

// resolveOptions applies Option instances to schedulerOptions.
func resolveOptions(opts []Option) (*schedulerOptions, error) {
	cfg := &schedulerOptions{
		maxThreads:    defaultMaxThreads,
		stackSize:     defaultStackSize,
		logger:        getGlobalLogger(),
		quantumSource: newTickerQuantumSource,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
