package redcore

import (
	"time"

	"go.uber.org/zap"

	"github.com/gomodule/redcore/resp"
)

// DisconnectedBehavior governs what happens to submissions while an
// endpoint is DISCONNECTED.
type DisconnectedBehavior uint8

const (
	// DefaultDisconnectedBehavior buffers submissions, same as ACTIVE.
	DefaultDisconnectedBehavior DisconnectedBehavior = iota
	// AcceptCommands always buffers submissions regardless of autoReconnect.
	AcceptCommands
	// RejectCommands fails submissions fast with a ValidationError.
	RejectCommands
)

// DeliveryGuarantee selects the fate of an in-flight, already-flushed
// command when its channel is lost. It shares its underlying type with
// CancelledReason so Options.Delivery and CancelledError.Reason can be
// compared against the same AtMostOnce value.
type DeliveryGuarantee = CancelledReason

// Options holds the enumerated Endpoint configuration.
type Options struct {
	AutoReconnect                     bool
	CancelCommandsOnReconnectFailure  bool
	SuspendReconnectOnProtocolFailure bool
	PingBeforeActivateConnection      bool
	RequestQueueSize                  int
	DisconnectedBehavior              DisconnectedBehavior
	Delivery                          DeliveryGuarantee

	Password string
	Database int

	// KeepAlivePeriod, when non-zero, makes the handler schedule a PING
	// every period while ACTIVE and treat a PING that does not complete
	// within one more period as a disconnect.
	KeepAlivePeriod time.Duration

	// Backoff parameters for the watchdog.
	BackoffBase time.Duration
	BackoffCap  time.Duration

	Codec resp.Codec

	Logger *zap.Logger
}

// DefaultOptions returns the client's default configuration:
// autoReconnect on, cancelCommandsOnReconnectFailure off,
// suspendReconnectOnProtocolFailure off, at-least-once delivery.
func DefaultOptions() Options {
	return Options{
		AutoReconnect:                     true,
		CancelCommandsOnReconnectFailure:  false,
		SuspendReconnectOnProtocolFailure: false,
		PingBeforeActivateConnection:      false,
		RequestQueueSize:                  1 << 20,
		DisconnectedBehavior:              DefaultDisconnectedBehavior,
		Delivery:                          AtLeastOnce,
		BackoffBase:                       100 * time.Millisecond,
		BackoffCap:                        30 * time.Second,
		Codec:                             resp.UTF8Codec{},
		Logger:                            zap.NewNop(),
	}
}

// Option mutates an Options value at Endpoint construction time.
type Option func(*Options)

func WithAutoReconnect(v bool) Option {
	return func(o *Options) { o.AutoReconnect = v }
}

func WithCancelCommandsOnReconnectFailure(v bool) Option {
	return func(o *Options) { o.CancelCommandsOnReconnectFailure = v }
}

func WithSuspendReconnectOnProtocolFailure(v bool) Option {
	return func(o *Options) { o.SuspendReconnectOnProtocolFailure = v }
}

func WithPingBeforeActivateConnection(v bool) Option {
	return func(o *Options) { o.PingBeforeActivateConnection = v }
}

func WithRequestQueueSize(n int) Option {
	return func(o *Options) { o.RequestQueueSize = n }
}

func WithDisconnectedBehavior(b DisconnectedBehavior) Option {
	return func(o *Options) { o.DisconnectedBehavior = b }
}

func WithDeliveryGuarantee(g DeliveryGuarantee) Option {
	return func(o *Options) { o.Delivery = g }
}

func WithPassword(password string) Option {
	return func(o *Options) { o.Password = password }
}

func WithDatabase(db int) Option {
	return func(o *Options) { o.Database = db }
}

func WithKeepAlivePeriod(d time.Duration) Option {
	return func(o *Options) { o.KeepAlivePeriod = d }
}

func WithBackoff(base, cap time.Duration) Option {
	return func(o *Options) { o.BackoffBase, o.BackoffCap = base, cap }
}

func WithCodec(c resp.Codec) Option {
	return func(o *Options) { o.Codec = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
