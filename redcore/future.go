package redcore

import (
	"context"
	"time"
)

// Await blocks until the command completes or ctx is done, whichever
// comes first. A timed-out Await does not touch the command's state —
// it may later complete and a subsequent IsDone/Value/Err call will see
// it.
func (c *Command) Await(ctx context.Context) (interface{}, error) {
	select {
	case <-c.done:
		return c.value, c.cmdErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitTimeout is Await with a relative deadline.
func (c *Command) AwaitTimeout(d time.Duration) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return c.Await(ctx)
}

// IsDone reports whether the command has reached a terminal state.
func (c *Command) IsDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the command's terminal state is Cancelled.
func (c *Command) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Cancelled
}

// Err returns the command's terminal error, or nil if it has not
// completed yet or completed successfully.
func (c *Command) Err() error {
	if !c.IsDone() {
		return nil
	}
	return c.cmdErr
}

// Value returns the command's decoded value. It is meaningless until
// IsDone reports true.
func (c *Command) Value() interface{} {
	if !c.IsDone() {
		return nil
	}
	return c.value
}

// Cancel attempts to move the command directly to the Cancelled state.
// It succeeds only while the command is still Pending. A command still
// sitting in the endpoint's pre-wire buffer is also removed from it, so
// it is never sent; a command already written to the wire stays in the
// in-flight queue (its reply will still arrive and is discarded).
// mayInterrupt is otherwise unused — this client has no blocking encode
// to interrupt.
func (c *Command) Cancel(mayInterrupt bool) bool {
	_ = mayInterrupt
	ok := c.complete(nil, &CancelledError{Reason: ExplicitCancel})
	if ok && c.onCancel != nil {
		c.onCancel(c)
	}
	return ok
}

// AddListener registers l to run when the command completes. If the
// command is already terminal, l runs immediately (on this goroutine,
// via the configured executor if one is set).
func (c *Command) AddListener(l Listener) {
	c.mu.Lock()
	if c.state == Pending {
		c.listeners = append(c.listeners, l)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.runListeners([]Listener{l})
}

// complete transitions the command to a terminal state exactly once and
// fires its listeners. It returns false if the command was already
// terminal. Cancelled vs Completed is decided by whether err is a
// *CancelledError, so both the disconnect/at-most-once path and the
// explicit Cancel() path land in the Cancelled state.
func (c *Command) complete(value interface{}, err error) bool {
	c.mu.Lock()
	if c.state != Pending {
		c.mu.Unlock()
		return false
	}
	c.value, c.cmdErr = value, err
	if _, ok := err.(*CancelledError); ok {
		c.state = Cancelled
	} else {
		c.state = Completed
	}
	listeners := c.listeners
	c.listeners = nil
	c.mu.Unlock()

	close(c.done)
	c.runListeners(listeners)
	return true
}

func (c *Command) runListeners(ls []Listener) {
	if len(ls) == 0 {
		return
	}
	run := func() {
		for _, l := range ls {
			l(c)
		}
	}
	if c.executor != nil {
		c.executor(run)
	} else {
		run()
	}
}
