// Package poll drives artifact readiness polling. A poller is an explicit
// cancellable task: it re-runs a refetch on a fixed period until the watched
// status turns terminal or the handle is cancelled. Timer creation goes
// through a Scheduler so tests can drive ticks by hand.
package poll

import (
	"sync"
	"time"

	"talklens/types"
)

// Timer is a stoppable recurring timer issued by a Scheduler.
type Timer interface {
	Stop()
}

// Scheduler creates recurring timers. The production implementation is
// TickerScheduler; tests substitute a manual one.
type Scheduler interface {
	Schedule(interval time.Duration, fn func()) Timer
}

// Handle controls one running poller. Cancel is idempotent and safe to call
// from any goroutine; after it returns no further refetches are issued.
type Handle struct {
	mu    sync.Mutex
	timer Timer
	done  bool
}

// Cancel stops the poller immediately.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopLocked()
}

// Done reports whether the poller has stopped, either by reaching a terminal
// status or by cancellation.
func (h *Handle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

func (h *Handle) stopLocked() {
	if h.done {
		return
	}
	h.done = true
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
}

// Start begins polling. getStatus reports the artifact's current status as
// known to the caller; an unknown status (empty string, not yet fetched)
// counts as non-terminal so the poller does not spin down on transient
// "no data yet" states. refetch re-requests the status from the backend; the
// poller re-evaluates termination after every tick and stops on the first
// terminal observation. A failed status stops polling like completed does;
// retrying is a user action, not the poller's.
func Start(s Scheduler, interval time.Duration, getStatus func() types.Status, refetch func()) *Handle {
	h := &Handle{}

	if getStatus().Terminal() {
		h.done = true
		return h
	}

	t := s.Schedule(interval, func() {
		h.mu.Lock()
		if h.done {
			h.mu.Unlock()
			return
		}
		if getStatus().Terminal() {
			h.stopLocked()
			h.mu.Unlock()
			return
		}
		h.mu.Unlock()

		// The refetch runs outside the lock so Cancel is never blocked on a
		// slow request.
		refetch()

		h.mu.Lock()
		if !h.done && getStatus().Terminal() {
			h.stopLocked()
		}
		h.mu.Unlock()
	})

	h.mu.Lock()
	if h.done {
		// Cancelled before the timer was recorded; stop it here instead.
		h.mu.Unlock()
		t.Stop()
		return h
	}
	h.timer = t
	h.mu.Unlock()
	return h
}

// TickerScheduler is the production Scheduler, backed by time.Ticker.
type TickerScheduler struct{}

type tickerTimer struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// Schedule runs fn on every tick until the returned Timer is stopped.
func (TickerScheduler) Schedule(interval time.Duration, fn func()) Timer {
	t := &tickerTimer{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}
