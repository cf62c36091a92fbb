package transport

import (
	"crypto/tls"
	"net"

	"go.uber.org/zap"
)

// TLS dials a TLS-wrapped TCP connection. It is the transport behind a
// rediss:// endpoint URI.
type TLS struct {
	Opts   DialOptions
	Config *tls.Config
	Log    *zap.Logger
}

func NewTLS(opts DialOptions, cfg *tls.Config, log *zap.Logger) *TLS {
	if log == nil {
		log = zap.NewNop()
	}
	return &TLS{Opts: opts, Config: cfg, Log: log}
}

func (t *TLS) Dial(onRead func([]byte), onEvent func(Event)) (Channel, error) {
	d := net.Dialer{Timeout: t.Opts.Timeout, KeepAlive: t.Opts.KeepAlive}
	conn, err := tls.DialWithDialer(&d, "tcp", t.Opts.Address, t.Config)
	if err != nil {
		return nil, err
	}
	ch := newStreamChannel(conn, t.Log.Named("channel").With(zap.String("addr", t.Opts.Address)))
	ch.start(onRead, onEvent)
	return ch, nil
}
