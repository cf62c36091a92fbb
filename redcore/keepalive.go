package redcore

import (
	"time"

	"github.com/gomodule/redcore/resp"
	"github.com/gomodule/redcore/transport"
)

// startKeepAlive runs a PING loop on ch for as long as ch remains the
// endpoint's active channel, pinging idle connections to detect a dead
// peer faster than a TCP timeout would. A half-open TCP connection
// typically still accepts writes, so the loop cannot rely on the write
// itself failing: instead it remembers the PING it issued on the
// previous tick and, if that PING is still pending a full period later,
// treats the connection as dead and closes ch directly rather than
// waiting for the transport to notice.
func (e *Endpoint) startKeepAlive(ch transport.Channel, period time.Duration) {
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		var pending *Command
		for range ticker.C {
			e.mu.Lock()
			stillCurrent := e.state == Active && e.channel == ch
			e.mu.Unlock()
			if !stillCurrent {
				return
			}
			if pending != nil && !pending.IsDone() {
				e.log.Warn("keepalive ping outstanding past one period, closing channel")
				ch.Close()
				return
			}
			cmd := NewCommand("PING", &resp.GenericOutput{})
			if err := e.handler.writeCommand(ch, cmd, e.opts.Codec); err != nil {
				return
			}
			pending = cmd
		}
	}()
}
