package redcore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWatchdog(dial func(attempt int) error) *watchdog {
	return newWatchdog(time.Millisecond, 5*time.Millisecond, dial, zap.NewNop())
}

func TestWatchdogRetriesUntilDialSucceeds(t *testing.T) {
	var mu sync.Mutex
	var attempts []int

	w := newTestWatchdog(func(attempt int) error {
		mu.Lock()
		attempts = append(attempts, attempt)
		n := len(attempts)
		mu.Unlock()
		if n < 3 {
			return assertError("dial failed")
		}
		return nil
	})

	w.onChannelInactive()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(attempts) >= 3
	}, time.Second, time.Millisecond)

	mu.Lock()
	got := append([]int(nil), attempts...)
	mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestWatchdogResetClearsAttemptCounter(t *testing.T) {
	calls := make(chan int, 1)
	w := newTestWatchdog(func(attempt int) error {
		calls <- attempt
		return nil
	})

	w.onChannelInactive()
	first := <-calls
	assert.Equal(t, 1, first)

	w.reset()
	w.onChannelInactive()
	second := <-calls
	assert.Equal(t, 1, second)
}

func TestWatchdogSetListenOnChannelInactiveSuppressesScheduling(t *testing.T) {
	calls := make(chan int, 1)
	w := newTestWatchdog(func(attempt int) error {
		calls <- attempt
		return nil
	})
	w.setListenOnChannelInactive(false)

	w.onChannelInactive()

	select {
	case <-calls:
		t.Fatal("dial should not have been called while not listening")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestWatchdogSetReconnectSuspendedPausesAndResumesBackoffCurve(t *testing.T) {
	calls := make(chan int, 4)
	w := newTestWatchdog(func(attempt int) error {
		calls <- attempt
		return assertError("dial failed")
	})

	w.onChannelInactive()
	first := <-calls
	assert.Equal(t, 1, first)

	w.setReconnectSuspended(true)
	select {
	case <-calls:
		t.Fatal("dial should not fire while suspended")
	case <-time.After(20 * time.Millisecond):
	}

	w.setReconnectSuspended(false)
	second := <-calls
	assert.Equal(t, 2, second, "attempt counter should continue rather than restart")
}

func TestWatchdogStopPreventsFurtherAttempts(t *testing.T) {
	calls := make(chan int, 4)
	w := newTestWatchdog(func(attempt int) error {
		calls <- attempt
		return assertError("dial failed")
	})

	w.onChannelInactive()
	<-calls

	w.stop()

	select {
	case <-calls:
		t.Fatal("dial should not fire after stop")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestWatchdogOnScheduledFiresWithNextAttemptAndDelay(t *testing.T) {
	type scheduled struct {
		attempt int
		delay   time.Duration
	}
	got := make(chan scheduled, 1)

	w := newTestWatchdog(func(attempt int) error { return assertError("dial failed") })
	w.onScheduled = func(attempt int, delay time.Duration) {
		select {
		case got <- scheduled{attempt, delay}:
		default:
		}
	}

	w.onChannelInactive()

	select {
	case s := <-got:
		assert.Equal(t, 1, s.attempt)
		assert.GreaterOrEqual(t, s.delay, time.Duration(0))
	case <-time.After(time.Second):
		t.Fatal("onScheduled was never called")
	}
}
