package redcore

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gomodule/redcore/transport"
)

// EndpointStats is a point-in-time snapshot for diagnostics: a
// documented accessor in place of ad-hoc introspection into private
// endpoint fields.
type EndpointStats struct {
	State      LifecycleState
	QueueDepth int
	Channels   int
	Patterns   int
	LastActive time.Time
}

// Endpoint is the single public entry point for C3 (Endpoint / Channel
// Writer): applications build commands with NewCommand and submit them
// with Write, observe lifecycle and subscription events with
// AddEventListener, and read delivered pub/sub messages via
// SetMessageListener. Internally it owns the buffer, in-flight queue
// (through handler), watchdog and restorer that implement C3–C6.
type Endpoint struct {
	opts      Options
	transport transport.Transport
	resources *ClientResources
	log       *zap.Logger

	mu         sync.Mutex
	state      LifecycleState
	channel    transport.Channel
	autoFlush  bool
	lastActive time.Time

	buffer   *commandBuffer
	handler  *handler
	subs     *subscriptions
	watchdog *watchdog
	restorer *restorer
	events   eventBus
}

// NewEndpoint constructs an Endpoint in NOT_CONNECTED. resources may be
// shared across many Endpoints; pass nil to get a private one.
func NewEndpoint(t transport.Transport, opts Options, resources *ClientResources) *Endpoint {
	if resources == nil {
		resources = NewClientResources()
	}
	log := opts.Logger
	if log == nil {
		log = resources.Logger
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Endpoint{
		opts:      opts,
		transport: t,
		resources: resources,
		log:       log,
		state:     NotConnected,
		autoFlush: true,
		buffer:    newCommandBuffer(),
		subs:      newSubscriptions(),
	}
	e.handler = newHandler(e.subs, log)
	e.handler.onProtocolError = e.onProtocolError
	e.restorer = newRestorer(e.handler, opts.Codec, 5*time.Second)
	e.watchdog = newWatchdog(opts.BackoffBase, opts.BackoffCap, e.attemptConnect, log)
	e.watchdog.setListenOnChannelInactive(opts.AutoReconnect)
	e.watchdog.onScheduled = func(attempt int, delay time.Duration) {
		e.events.Publish(Event{Kind: ReconnectScheduled, Attempt: attempt, Delay: delay})
	}
	return e
}

// Connect moves the endpoint from NOT_CONNECTED to REGISTERED and
// performs the first connection attempt synchronously. Subsequent
// reconnects after a lost channel are the watchdog's job.
func (e *Endpoint) Connect() error {
	e.mu.Lock()
	if e.state != NotConnected {
		e.mu.Unlock()
		return validationErrorf("connect called from state %s", e.state)
	}
	e.setState(Registered)
	e.mu.Unlock()

	return e.attemptConnect(0)
}

// attemptConnect dials a fresh channel and runs session restoration. It
// is both Connect's first attempt and the watchdog's retry callback, so
// its error return governs whether the watchdog schedules another
// attempt.
func (e *Endpoint) attemptConnect(attempt int) error {
	e.mu.Lock()
	if e.state == Closed {
		e.mu.Unlock()
		return &ClientClosedError{}
	}
	e.setState(Connected)
	e.mu.Unlock()

	recordCount(MDials, 1)
	ch, err := e.transport.Dial(e.handler.onRead, e.onTransportEvent)
	if err != nil {
		recordCount(MDialErrors, 1)
		e.log.Warn("dial failed", zap.Int("attempt", attempt), zap.Error(err))
		e.mu.Lock()
		e.setState(Disconnected)
		e.mu.Unlock()
		e.events.Publish(Event{Kind: ReconnectFailed, Attempt: attempt, Err: err})
		if e.opts.CancelCommandsOnReconnectFailure && attempt > 0 {
			e.cancelAll(&ReconnectFailedError{Attempt: attempt, LastErr: err})
			e.watchdog.setReconnectSuspended(true)
		}
		return err
	}

	e.mu.Lock()
	e.channel = ch
	e.handler.reset()
	e.setState(Activating)
	e.mu.Unlock()

	channels, patterns := e.subs.snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.restorer.restore(ctx, ch, e.opts, channels, patterns); err != nil {
		e.log.Warn("session restoration failed", zap.Error(err))
		ch.Close()
		if fatal, ok := err.(*FatalError); ok {
			e.fail(fatal)
			return fatal
		}
		e.mu.Lock()
		e.setState(Disconnected)
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	e.setState(Active)
	e.lastActive = time.Now()
	e.mu.Unlock()
	e.watchdog.reset()
	e.events.Publish(Event{Kind: LifecycleChanged, From: Connected, To: Active})
	if len(channels) > 0 || len(patterns) > 0 {
		recordCount(MSubscriptionsRestored, int64(len(channels)+len(patterns)))
		e.events.Publish(Event{Kind: SubscriptionRestored, Channels: len(channels), Patterns: len(patterns)})
	}
	if e.opts.KeepAlivePeriod > 0 {
		e.startKeepAlive(ch, e.opts.KeepAlivePeriod)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushLocked()
}

func (e *Endpoint) onTransportEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.Inactive:
		e.onChannelLost(ev.Err)
	}
}

func (e *Endpoint) onProtocolError(err error) {
	e.log.Error("protocol error, tearing down channel", zap.Error(err))
	e.mu.Lock()
	ch := e.channel
	e.mu.Unlock()
	if ch != nil {
		ch.Close()
	}
	if e.opts.SuspendReconnectOnProtocolFailure {
		e.watchdog.setReconnectSuspended(true)
	}
}

// onChannelLost runs the disconnect path: in-flight commands are either
// rewritten to the front of the buffer (at-least-once) or cancelled
// (at-most-once), and the watchdog is notified so it can schedule a
// reconnect.
func (e *Endpoint) onChannelLost(err error) {
	e.mu.Lock()
	if e.state == Closed {
		e.mu.Unlock()
		return
	}
	from := e.state
	e.setState(Disconnected)
	e.channel = nil
	e.mu.Unlock()

	inFlight := dedupeCommands(e.handler.inFlight.drainAll())
	e.handler.clearPendingAcks(inFlight)
	switch e.opts.Delivery {
	case AtMostOnce:
		recordCount(MCommandsCancelled, int64(len(inFlight)))
		for _, cmd := range inFlight {
			cmd.complete(nil, &CancelledError{Reason: AtMostOnce})
		}
	default: // AtLeastOnce
		recordCount(MCommandsRetried, int64(len(inFlight)))
		for _, cmd := range inFlight {
			cmd.resetForRetry()
		}
		e.buffer.requeueFront(inFlight)
	}

	e.events.Publish(Event{Kind: LifecycleChanged, From: from, To: Disconnected, Err: err})
	e.watchdog.onChannelInactive()
}

// fail moves the endpoint to CLOSED and cancels every pending command,
// for a fatal AUTH rejection during restoration.
func (e *Endpoint) fail(err error) {
	e.mu.Lock()
	e.setState(Closed)
	ch := e.channel
	e.channel = nil
	e.mu.Unlock()
	if ch != nil {
		ch.Close()
	}
	e.watchdog.stop()
	e.cancelAll(err)
}

// dedupeCommands collapses the in-flight queue's possible repeated
// entries for a single (P)SUBSCRIBE/(P)UNSUBSCRIBE command (one entry
// per acknowledgement Redis owes it, see handler.writeCommand) back
// down to one entry per distinct Command, so a disconnect retries or
// cancels it exactly once instead of once per outstanding ack.
func dedupeCommands(cmds []*Command) []*Command {
	seen := make(map[*Command]bool, len(cmds))
	out := make([]*Command, 0, len(cmds))
	for _, c := range cmds {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (e *Endpoint) cancelAll(err error) {
	for _, cmd := range e.handler.inFlight.drainAll() {
		cmd.complete(nil, err)
	}
	for _, cmd := range e.buffer.drainAll() {
		cmd.complete(nil, err)
	}
}

// setState must be called with e.mu held.
func (e *Endpoint) setState(next LifecycleState) {
	if !e.state.CanTransition(next) {
		e.log.Warn("unexpected lifecycle transition", zap.Stringer("from", e.state), zap.Stringer("to", next))
	}
	e.state = next
}

// Write submits cmd for sending. It fails fast with a *ClientClosedError
// if the endpoint is closed, with a *ValidationError while DISCONNECTED
// under RejectCommands, or with a *QueueOverflowError once the combined
// buffer and in-flight depth reaches Options.RequestQueueSize.
func (e *Endpoint) Write(cmd *Command) error {
	if e.resources.ListenerExecutor != nil {
		cmd.WithExecutor(e.resources.ListenerExecutor)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Closed {
		return &ClientClosedError{}
	}
	if e.state == Disconnected && e.opts.DisconnectedBehavior == RejectCommands {
		return validationErrorf("endpoint disconnected")
	}

	depth := e.buffer.len() + e.handler.inFlight.len()
	if e.opts.RequestQueueSize > 0 && depth >= e.opts.RequestQueueSize {
		return &QueueOverflowError{Size: e.opts.RequestQueueSize}
	}

	cmd.onCancel = func(c *Command) { e.buffer.remove(c) }
	e.buffer.push(cmd)
	if e.autoFlush {
		e.flushLocked()
	}
	recordCount(MQueueDepth, int64(e.buffer.len()+e.handler.inFlight.len()))
	return nil
}

// Flush writes every buffered command to the channel immediately. It is
// a no-op while the channel is not open; buffered commands simply wait
// for the next successful activation.
func (e *Endpoint) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flushLocked()
}

// flushLocked must be called with e.mu held.
func (e *Endpoint) flushLocked() error {
	if e.state != Active || e.channel == nil {
		return nil
	}
	for _, cmd := range e.buffer.drain() {
		if err := e.handler.writeCommand(e.channel, cmd, e.opts.Codec); err != nil {
			cmd.complete(nil, err)
		}
	}
	return nil
}

// SetAutoFlushCommands toggles whether Write immediately flushes,
// mirroring a Flush/Send split between buffering writes and sending
// them.
func (e *Endpoint) SetAutoFlushCommands(auto bool) {
	e.mu.Lock()
	e.autoFlush = auto
	e.mu.Unlock()
}

// SetMessageListener registers the callback that receives pub/sub
// messages delivered on any subscribed channel or pattern.
func (e *Endpoint) SetMessageListener(l MessageListener) {
	e.subs.setListener(l)
}

// AddEventListener registers an observer for lifecycle, reconnect and
// subscription-restoration events.
func (e *Endpoint) AddEventListener(l EventListener) {
	e.events.Subscribe(l)
}

// State returns the endpoint's current lifecycle state.
func (e *Endpoint) State() LifecycleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Stats returns a snapshot of queue depth, subscription counts and last
// activity time.
func (e *Endpoint) Stats() EndpointStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	channels, patterns := e.subs.count()
	return EndpointStats{
		State:      e.state,
		QueueDepth: e.buffer.len() + e.handler.inFlight.len(),
		Channels:   channels,
		Patterns:   patterns,
		LastActive: e.lastActive,
	}
}

// Close transitions the endpoint to CLOSED, stops the watchdog, closes
// the channel if one is open, and cancels every buffered and in-flight
// command with a *CancelledError{Reason: ClientClosed}.
func (e *Endpoint) Close() error {
	e.mu.Lock()
	if e.state == Closed {
		e.mu.Unlock()
		return nil
	}
	e.setState(Closed)
	ch := e.channel
	e.channel = nil
	e.mu.Unlock()

	e.watchdog.stop()
	if ch != nil {
		ch.Close()
	}
	e.cancelAll(&CancelledError{Reason: ClientClosed})
	return nil
}
