package redcore

import "sync"

// commandBuffer is the pre-wire FIFO: commands land here when submitted,
// and Endpoint.flushLocked drains it into the in-flight queue as it
// encodes each one. Ownership of a Command moves from the buffer to the
// in-flight queue the instant its bytes are handed to the channel
// writer, generalizing a pending-writes counter from "bytes sent,
// awaiting flush" to "command sent, awaiting reply".
type commandBuffer struct {
	mu    sync.Mutex
	items []*Command
}

func newCommandBuffer() *commandBuffer {
	return &commandBuffer{}
}

func (b *commandBuffer) push(c *Command) {
	b.mu.Lock()
	b.items = append(b.items, c)
	b.mu.Unlock()
}

// drain removes and returns every buffered command in submission order,
// leaving the buffer empty. Endpoint.flushLocked calls this to take a
// batch to encode.
func (b *commandBuffer) drain() []*Command {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()
	return items
}

// requeueFront puts items back at the front of the buffer, preserving
// their relative order ahead of anything submitted since. Used when an
// at-least-once reconnect rewrites commands that were in flight on the
// lost channel.
func (b *commandBuffer) requeueFront(items []*Command) {
	if len(items) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(items, b.items...)
	b.mu.Unlock()
}

// remove deletes c from the buffer if present, reporting whether it was
// found there. Used to pull an unsent command out ahead of a cancel, so
// it never reaches writeCommand.
func (b *commandBuffer) remove(c *Command) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, item := range b.items {
		if item == c {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

func (b *commandBuffer) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// drainAll empties the buffer and returns its contents, for use when the
// endpoint closes or a reconnect attempt is abandoned under
// cancelCommandsOnReconnectFailure.
func (b *commandBuffer) drainAll() []*Command {
	return b.drain()
}
