//go:build !linux

package uthreads

import (
	"errors"
	"time"
)

// quantumSource delivers one tick per scheduling quantum on Ticks, until
// Stop is called.
type quantumSource interface {
	Ticks() <-chan time.Time
	Stop()
}

type tickerQuantumSource struct {
	t *time.Ticker
}

func newTickerQuantumSource(quantum time.Duration) (quantumSource, error) {
	return &tickerQuantumSource{t: time.NewTicker(quantum)}, nil
}

func (s *tickerQuantumSource) Ticks() <-chan time.Time { return s.t.C }
func (s *tickerQuantumSource) Stop()                   { s.t.Stop() }

// newSignalQuantumSource requires setitimer, which golang.org/x/sys/unix
// only exposes on Linux; WithRealTimeSignal(true) fails with a
// SystemError elsewhere.
func newSignalQuantumSource(time.Duration) (quantumSource, error) {
	return nil, errors.New("uthreads: real-time-signal backend is not supported on this platform")
}
