//go:build linux

package uthreads

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// quantumSource delivers one tick per scheduling quantum on Ticks, until
// Stop is called. Both backends (portable ticker, real interval timer)
// satisfy this contract identically from the dispatcher's point of view.
type quantumSource interface {
	Ticks() <-chan time.Time
	Stop()
}

// tickerQuantumSource is the portable, default backend: a time.Ticker.
type tickerQuantumSource struct {
	t *time.Ticker
}

func newTickerQuantumSource(quantum time.Duration) (quantumSource, error) {
	return &tickerQuantumSource{t: time.NewTicker(quantum)}, nil
}

func (s *tickerQuantumSource) Ticks() <-chan time.Time { return s.t.C }
func (s *tickerQuantumSource) Stop()                   { s.t.Stop() }

// signalQuantumSource arms a real ITIMER_REAL interval timer via
// golang.org/x/sys/unix and surfaces delivered SIGALRMs as ticks, the
// idiomatic Go rendering of a raw sigaction/setitimer pair (Linux only,
// selected via WithRealTimeSignal).
type signalQuantumSource struct {
	sigCh chan chan time.Time
	ticks chan time.Time
	stop  chan struct{}
}

func newSignalQuantumSource(quantum time.Duration) (quantumSource, error) {
	it := unix.Itimerval{
		Interval: unix.NsecToTimeval(quantum.Nanoseconds()),
		Value:    unix.NsecToTimeval(quantum.Nanoseconds()),
	}
	if _, err := unix.Setitimer(unix.ITIMER_REAL, it); err != nil {
		return nil, err
	}

	notify := make(chan os.Signal, 4)
	signal.Notify(notify, syscall.SIGALRM)

	s := &signalQuantumSource{
		ticks: make(chan time.Time, 4),
		stop:  make(chan struct{}),
	}

	go func() {
		defer signal.Stop(notify)
		for {
			select {
			case <-notify:
				select {
				case s.ticks <- time.Now():
				default:
				}
			case <-s.stop:
				var disarm unix.Itimerval
				_, _ = unix.Setitimer(unix.ITIMER_REAL, disarm)
				return
			}
		}
	}()

	return s, nil
}

func (s *signalQuantumSource) Ticks() <-chan time.Time { return s.ticks }
func (s *signalQuantumSource) Stop()                   { close(s.stop) }
