package redcore

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/gomodule/redcore/internal/state"
	"github.com/gomodule/redcore/resp"
)

// handler is the command handler / protocol state machine: it owns the
// in-flight queue, decodes bytes into replies, matches each non-push
// reply to the command at the head of the queue, and routes pub/sub
// pushes to the subscription dispatcher instead. onRead and the reply
// path run on the channel's read-loop goroutine; writeCommand runs on
// whichever goroutine writes a command (Endpoint.Write/Flush, the
// restorer, the keepalive loop). The in-flight queue and subscriptions
// carry their own locks, and pendingAcks is guarded by mu.
type handler struct {
	decoder  resp.Decoder
	inFlight *inFlightQueue
	subs     *subscriptions
	mode     state.Mode
	log      *zap.Logger

	// onProtocolError fires once when the decoder reports malformed wire
	// bytes: the connection cannot be trusted to resynchronize and must
	// be torn down.
	onProtocolError func(error)

	mu          sync.Mutex
	pendingAcks map[*Command]int
}

func newHandler(subs *subscriptions, log *zap.Logger) *handler {
	return &handler{
		inFlight:    newInFlightQueue(),
		subs:        subs,
		log:         log,
		pendingAcks: make(map[*Command]int),
	}
}

// clearPendingAcks drops any outstanding ack-count bookkeeping for the
// given commands, called by the endpoint after draining the in-flight
// queue on disconnect so a later retry starts counting acks fresh.
func (h *handler) clearPendingAcks(cmds []*Command) {
	h.mu.Lock()
	for _, c := range cmds {
		delete(h.pendingAcks, c)
	}
	h.mu.Unlock()
}

// reset clears decode state for a fresh channel; the in-flight queue is
// left untouched. Commands still sitting in it are the caller's responsibility
// to drain first (endpoint.go does this before calling reset, choosing
// retry or cancellation per the configured delivery guarantee).
func (h *handler) reset() {
	h.decoder = resp.Decoder{}
}

// writeCommand encodes cmd and writes it to w, pushing it onto the
// in-flight queue and updating pub/sub mode tracking. It pushes cmd onto
// the queue once per acknowledgement Redis will send for it: one for an
// ordinary command, or one per channel/pattern argument for (P)SUBSCRIBE
// and (P)UNSUBSCRIBE, which each provoke one ack frame per name.
func (h *handler) writeCommand(w io.Writer, cmd *Command, codec resp.Codec) error {
	if cmd.IsDone() {
		// Cancelled (or otherwise already-terminal) before it reached the
		// wire; commandBuffer.remove is the primary defense, this is the
		// backstop for anything that slips past it.
		return nil
	}
	var buf bytes.Buffer
	if err := cmd.encode(&buf, codec); err != nil {
		return &EncodeError{Err: err}
	}

	h.mode = h.mode.Update(cmd.Name)

	acks := 1
	switch strings.ToUpper(cmd.Name) {
	case "SUBSCRIBE", "PSUBSCRIBE", "UNSUBSCRIBE", "PUNSUBSCRIBE":
		if n := len(cmd.Args); n > 0 {
			acks = n
		}
	}
	if acks > 1 {
		h.mu.Lock()
		h.pendingAcks[cmd] = acks
		h.mu.Unlock()
	}
	// The command is recorded as in flight before its bytes reach the
	// wire: a same-goroutine or reentrant transport (as in tests) may
	// deliver the reply before Write returns, and the reply must always
	// find a queue entry waiting for it.
	for i := 0; i < acks; i++ {
		h.inFlight.push(cmd)
	}

	n, err := w.Write(buf.Bytes())
	recordCount(MBytesWritten, int64(n))
	if err != nil {
		return err
	}
	return nil
}

// onRead feeds newly arrived bytes to the decoder and dispatches every
// fully buffered reply. It is called on the channel's read-loop
// goroutine (transport.Transport's onRead callback).
func (h *handler) onRead(data []byte) {
	recordCount(MBytesRead, int64(len(data)))
	h.decoder.Feed(data)
	for {
		events, err := h.decoder.Next()
		if err != nil {
			if h.onProtocolError != nil {
				h.onProtocolError(err)
			}
			return
		}
		if events == nil {
			return
		}
		h.handleReply(events)
	}
}

func (h *handler) handleReply(events []resp.Reply) {
	if h.mode.IsPubSub() {
		if kind, fields, data, ok := classifyPush(events); ok {
			if kind.IsMessage() {
				h.subs.dispatch(kind, fields, data)
				return
			}
			if kind.IsSubscribeAck() {
				if len(fields) > 0 {
					h.subs.applyAck(kind, fields[0])
				}
				h.completeAck(events)
				return
			}
		}
	}

	cmd := h.inFlight.popFront()
	if cmd == nil {
		h.log.Warn("reply received with no in-flight command")
		return
	}
	h.completeCommand(cmd, events)
}

// completeAck matches a (p)subscribe/(p)unsubscribe acknowledgement to
// the in-flight command that requested it, completing the command only
// once every acknowledgement it is owed has arrived.
func (h *handler) completeAck(events []resp.Reply) {
	cmd := h.inFlight.popFront()
	if cmd == nil {
		h.log.Warn("subscribe ack received with no in-flight command")
		return
	}

	h.mu.Lock()
	remaining, tracked := h.pendingAcks[cmd]
	if tracked {
		remaining--
		if remaining > 0 {
			h.pendingAcks[cmd] = remaining
			h.mu.Unlock()
			return
		}
		delete(h.pendingAcks, cmd)
	}
	h.mu.Unlock()

	h.completeCommand(cmd, events)
}

func (h *handler) completeCommand(cmd *Command, events []resp.Reply) {
	feedErr := cmd.Output.Feed(events)
	var cmdErr error
	switch e := feedErr.(type) {
	case nil:
		cmdErr = nil
	case resp.Error:
		cmdErr = &ServerError{Message: string(e)}
	default:
		cmdErr = &DecodeError{Err: feedErr}
	}
	cmd.complete(cmd.Output.Value(), cmdErr)
}

// classifyPush interprets a flattened reply's events as a pub/sub push
// frame: an array whose first element is one of the recognized verbs.
// ok is false for anything else, including a well-formed array reply to
// an ordinary command (e.g. KEYS) that merely happens not to match any
// push verb — ordinary commands never reach this check because
// handleReply only calls it while mode.IsPubSub() is true, gating
// subscribe push decoding on the connection's pub/sub state the same way
// a RESP client's read loop must. The verb/field/payload split itself is
// resp.PushOutput's job; this function only adds the domain
// classification on top of it.
func classifyPush(events []resp.Reply) (kind state.PushKind, fields []string, data []byte, ok bool) {
	var out resp.PushOutput
	if err := out.Feed(events); err != nil {
		return 0, nil, nil, false
	}
	push := out.Value().(resp.Push)
	k := state.ClassifyPush(push.Verb)
	if k == state.NotPush {
		return 0, nil, nil, false
	}
	return k, push.Fields, push.Data, true
}
