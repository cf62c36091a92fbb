package transport

import (
	"net"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// TCP dials a plain TCP connection. It is the default transport behind
// a redis:// endpoint URI.
type TCP struct {
	Opts DialOptions
	Log  *zap.Logger
}

func NewTCP(opts DialOptions, log *zap.Logger) *TCP {
	if log == nil {
		log = zap.NewNop()
	}
	return &TCP{Opts: opts, Log: log}
}

func (t *TCP) Dial(onRead func([]byte), onEvent func(Event)) (Channel, error) {
	d := net.Dialer{Timeout: t.Opts.Timeout, KeepAlive: t.Opts.KeepAlive}
	conn, err := d.Dial("tcp", t.Opts.Address)
	if err != nil {
		return nil, err
	}
	ch := newStreamChannel(conn, t.Log.Named("channel").With(zap.String("addr", t.Opts.Address)))
	ch.start(onRead, onEvent)
	return ch, nil
}

// streamChannel drives any net.Conn with a read-loop/write-loop goroutine
// pair: a buffered write queue channel decouples Write (called from the
// command handler's goroutine) from the blocking conn.Write call, and a
// dedicated reader goroutine feeds bytes to the handler as they arrive
// rather than the handler pulling them.
type streamChannel struct {
	conn net.Conn
	log  *zap.Logger

	writeQueue chan []byte
	done       chan struct{}

	closeOnce sync.Once
	closeErr  error
}

const writeQueueDepth = 256

func newStreamChannel(conn net.Conn, log *zap.Logger) *streamChannel {
	return &streamChannel{
		conn:       conn,
		log:        log,
		writeQueue: make(chan []byte, writeQueueDepth),
		done:       make(chan struct{}),
	}
}

func (c *streamChannel) start(onRead func([]byte), onEvent func(Event)) {
	var loopWaiter sync.WaitGroup
	loopWaiter.Add(2)

	var readErr, writeErr error

	go func() {
		defer loopWaiter.Done()
		readErr = c.readLoop(onRead)
	}()

	go func() {
		defer loopWaiter.Done()
		writeErr = c.writeLoop()
	}()

	onEvent(Event{Kind: Active})

	go func() {
		loopWaiter.Wait()
		err := multierr.Combine(readErr, writeErr)
		if isLocalClose(err) {
			err = nil
		}
		onEvent(Event{Kind: Inactive, Err: err})
	}()
}

func (c *streamChannel) readLoop(onRead func([]byte)) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onRead(chunk)
		}
		if err != nil {
			c.triggerClose()
			return err
		}
	}
}

func (c *streamChannel) writeLoop() error {
	for {
		select {
		case <-c.done:
			return nil
		case p, ok := <-c.writeQueue:
			if !ok {
				return nil
			}
			if _, err := c.conn.Write(p); err != nil {
				c.triggerClose()
				return err
			}
		}
	}
}

// Write enqueues p for the write loop. It returns an error immediately
// if the channel has already closed; otherwise it never blocks on
// network I/O, only on a full write queue, handing off to a channel
// rather than writing inline.
func (c *streamChannel) Write(p []byte) (int, error) {
	select {
	case <-c.done:
		return 0, net.ErrClosed
	default:
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	select {
	case c.writeQueue <- cp:
		return len(p), nil
	case <-c.done:
		return 0, net.ErrClosed
	}
}

func (c *streamChannel) Close() error {
	c.closeOnce.Do(func() {
		c.triggerClose()
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *streamChannel) triggerClose() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

func (c *streamChannel) RemoteAddr() string {
	if c.conn == nil {
		return ""
	}
	return c.conn.RemoteAddr().String()
}

func isLocalClose(err error) bool {
	return err != nil && strings.Contains(err.Error(), "use of closed network connection")
}
