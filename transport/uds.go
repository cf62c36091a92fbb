package transport

import (
	"net"

	"go.uber.org/zap"
)

// UDS dials a Unix domain socket. It is the transport behind a
// redis-socket:// endpoint URI.
type UDS struct {
	Opts DialOptions
	Log  *zap.Logger
}

func NewUDS(opts DialOptions, log *zap.Logger) *UDS {
	if log == nil {
		log = zap.NewNop()
	}
	return &UDS{Opts: opts, Log: log}
}

func (u *UDS) Dial(onRead func([]byte), onEvent func(Event)) (Channel, error) {
	d := net.Dialer{Timeout: u.Opts.Timeout}
	conn, err := d.Dial("unix", u.Opts.Address)
	if err != nil {
		return nil, err
	}
	ch := newStreamChannel(conn, u.Log.Named("channel").With(zap.String("path", u.Opts.Address)))
	ch.start(onRead, onEvent)
	return ch, nil
}
