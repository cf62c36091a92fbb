package redcore

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// watchdog is the connection watchdog: it schedules reconnect attempts
// on an exponential backoff after the channel is lost, exposing three
// external controls — setListenOnChannelInactive, setReconnectSuspended,
// scheduleReconnect — as Go methods. It never dials itself; runAttempt
// calls the endpoint's dial-and-activate closure (dial) and acts on the
// success or failure it reports back.
type watchdog struct {
	mu        sync.Mutex
	listening bool
	suspended bool
	attempt   int
	timer     *time.Timer

	backoffBase time.Duration
	backoffCap  time.Duration

	dial func(attempt int) error

	// onScheduled, if set, fires whenever a reconnect attempt is armed.
	onScheduled func(attempt int, delay time.Duration)

	log *zap.Logger

	closed bool
}

func newWatchdog(base, cap time.Duration, dial func(attempt int) error, log *zap.Logger) *watchdog {
	return &watchdog{
		listening:   true,
		backoffBase: base,
		backoffCap:  cap,
		dial:        dial,
		log:         log,
	}
}

// setListenOnChannelInactive toggles whether losing the channel triggers
// a scheduled reconnect at all. Disabling it (e.g. while the endpoint is
// being closed) stops future automatic attempts without touching any
// attempt already in flight.
func (w *watchdog) setListenOnChannelInactive(listen bool) {
	w.mu.Lock()
	w.listening = listen
	w.mu.Unlock()
}

// setReconnectSuspended pauses or resumes the backoff clock. A suspended
// watchdog keeps its attempt counter, so resuming continues the same
// backoff curve rather than restarting it.
func (w *watchdog) setReconnectSuspended(suspended bool) {
	w.mu.Lock()
	w.suspended = suspended
	if suspended && w.timer != nil {
		w.timer.Stop()
	}
	resume := !suspended && w.listening && !w.closed
	w.mu.Unlock()
	if resume {
		w.scheduleReconnect()
	}
}

// isSuspended reports whether the backoff clock is currently paused.
func (w *watchdog) isSuspended() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.suspended
}

// onChannelInactive is called by the endpoint when the transport channel
// reports Inactive. It starts the reconnect cycle if listening is
// enabled and not suspended.
func (w *watchdog) onChannelInactive() {
	w.mu.Lock()
	listen := w.listening && !w.suspended && !w.closed
	w.mu.Unlock()
	if listen {
		w.scheduleReconnect()
	}
}

// scheduleReconnect arms a timer for the next attempt using a jittered
// exponential backoff. Calling it while suspended or closed is a no-op;
// calling it while a timer is already armed replaces that timer with one
// armed for the current backoff delay.
func (w *watchdog) scheduleReconnect() {
	w.mu.Lock()
	if w.suspended || w.closed {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	delay := w.nextDelay()
	nextAttempt := w.attempt + 1
	w.timer = time.AfterFunc(delay, w.runAttempt)
	w.mu.Unlock()

	w.log.Debug("reconnect scheduled", zap.Duration("delay", delay))
	if w.onScheduled != nil {
		w.onScheduled(nextAttempt, delay)
	}
}

func (w *watchdog) nextDelay() time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.backoffBase
	b.MaxInterval = w.backoffCap
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.Reset()
	for i := 0; i < w.attempt; i++ {
		b.NextBackOff()
	}
	d := b.NextBackOff()
	if d == backoff.Stop {
		d = w.backoffCap
	}
	return d
}

func (w *watchdog) runAttempt() {
	w.mu.Lock()
	if w.suspended || w.closed {
		w.mu.Unlock()
		return
	}
	w.attempt++
	attempt := w.attempt
	w.mu.Unlock()

	recordCount(MReconnectAttempts, 1)
	err := w.dial(attempt)

	w.mu.Lock()
	if err == nil {
		w.attempt = 0
	}
	closed := w.closed
	listen := w.listening && !w.suspended
	w.mu.Unlock()

	if err != nil {
		recordCount(MReconnectFailures, 1)
		if !closed && listen {
			w.scheduleReconnect()
		}
	}
}

// reset clears the attempt counter, called once the endpoint reaches
// ACTIVE.
func (w *watchdog) reset() {
	w.mu.Lock()
	w.attempt = 0
	w.mu.Unlock()
}

// stop disarms any pending timer and prevents further scheduling, called
// from Endpoint.Close.
func (w *watchdog) stop() {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}
