package redcore

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/gomodule/redcore/resp"
)

// CommandState is the Command lifecycle: PENDING → (CANCELLED |
// COMPLETED).
type CommandState uint8

const (
	Pending CommandState = iota
	Cancelled
	Completed
)

// Listener is invoked when a Command reaches a terminal state. Listeners
// fire exactly once in submission order for a single Command;
// registering a listener on an already-terminal Command fires it
// immediately.
type Listener func(*Command)

// Command is the immutable (type, argument bytes, output decoder) triple,
// paired with the mutable completion cell that makes it also a future
// for the eventual reply. A Command may be submitted at most once; the
// retry path (Endpoint.onChannelLost in endpoint.go) is the only caller
// allowed to re-encode and re-decode one after Reset.
type Command struct {
	ID   uuid.UUID
	Name string
	Args []interface{}

	// Output decodes this command's single reply. It must be reset (via
	// Output.Reset) before a retried re-encode, which resetForRetry does.
	Output resp.Output

	// Codec overrides the endpoint's default argument codec for this
	// command only. Nil means "use the endpoint's codec".
	Codec resp.Codec

	// executor runs this command's listeners; nil means "run inline on
	// whichever goroutine completes the command".
	executor func(func())

	// onCancel, if set, is invoked when Cancel succeeds so the owning
	// endpoint can pull the command out of whatever queue still holds it.
	// Set by Endpoint.Write for a buffered (not yet sent) command; a
	// command already in flight has no entry to remove, so its reply is
	// simply discarded when it arrives.
	onCancel func(*Command)

	mu        sync.Mutex
	state     CommandState
	value     interface{}
	cmdErr    error
	listeners []Listener
	done      chan struct{}
}

// NewCommand builds a Command ready for submission to an Endpoint.
func NewCommand(name string, output resp.Output, args ...interface{}) *Command {
	return &Command{
		ID:     uuid.New(),
		Name:   name,
		Args:   args,
		Output: output,
		done:   make(chan struct{}),
	}
}

// WithExecutor sets the executor Listener callbacks run on and returns
// the Command for chaining at construction time.
func (c *Command) WithExecutor(executor func(func())) *Command {
	c.executor = executor
	return c
}

// encode writes the command as a RESP multi-bulk request using codec
// unless the command carries its own override.
func (c *Command) encode(w io.Writer, codec resp.Codec) error {
	if c.Codec != nil {
		codec = c.Codec
	}
	return resp.Encode(w, codec, c.Name, c.Args...)
}

// resetForRetry clears this command's Output so it can be safely
// re-encoded and re-decoded after a reconnect.
func (c *Command) resetForRetry() {
	c.Output.Reset()
}
