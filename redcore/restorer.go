package redcore

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/gomodule/redcore/resp"
)

// restorer drives the CONNECTED → ACTIVATING → ACTIVE session
// restoration sequence: PING (if configured), AUTH (if a password is
// set), SELECT (if a non-zero database is set), then SUBSCRIBE/PSUBSCRIBE
// replay for every channel and pattern the endpoint was subscribed to
// before the channel was lost. Any step before the subscribe replay
// failing moves the endpoint back to DISCONNECTED for another reconnect
// attempt, except AUTH, whose failure is fatal.
type restorer struct {
	handler *handler
	codec   resp.Codec
	timeout time.Duration
}

func newRestorer(h *handler, codec resp.Codec, timeout time.Duration) *restorer {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &restorer{handler: h, codec: codec, timeout: timeout}
}

// restore runs the sequence against w (the channel being activated) and
// replays channels/patterns. It returns a *FatalError if AUTH is
// rejected, and a plain error for anything else that should simply be
// treated as a failed reconnect attempt.
func (r *restorer) restore(ctx context.Context, w io.Writer, opts Options, channels, patterns []string) error {
	if opts.PingBeforeActivateConnection {
		if _, err := r.do(ctx, w, "PING"); err != nil {
			return err
		}
	}

	if opts.Password != "" {
		if _, err := r.do(ctx, w, "AUTH", opts.Password); err != nil {
			return &FatalError{Err: err}
		}
	}

	if opts.Database != 0 {
		if _, err := r.do(ctx, w, "SELECT", strconv.Itoa(opts.Database)); err != nil {
			return err
		}
	}

	for _, ch := range channels {
		if _, err := r.do(ctx, w, "SUBSCRIBE", ch); err != nil {
			return err
		}
	}
	for _, pat := range patterns {
		if _, err := r.do(ctx, w, "PSUBSCRIBE", pat); err != nil {
			return err
		}
	}

	return nil
}

func (r *restorer) do(ctx context.Context, w io.Writer, name string, args ...interface{}) (interface{}, error) {
	cmd := NewCommand(name, &resp.GenericOutput{}, args...)
	if err := r.handler.writeCommand(w, cmd, r.codec); err != nil {
		return nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return cmd.Await(waitCtx)
}
