package transport

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/arzzra/rtsp_gateway/pkg/rtsp/message"
)

// RequestHandler receives each decoded request
type RequestHandler func(*message.Request)

// ErrorHandler receives stream and decode faults
type ErrorHandler func(error)

// CloseHandler runs exactly once when the connection closes
type CloseHandler func()

// Conn owns one accepted byte-stream connection: it frames and decodes
// requests off the stream and guards writes with a closed flag that is set
// once and never cleared. Handlers are attached before the read loop
// starts, so registration cannot race with incoming requests.
type Conn struct {
	id     string
	conn   net.Conn
	closed atomic.Bool

	requestHandler RequestHandler
	errorHandler   ErrorHandler
	closeHandler   CloseHandler
}

func newConn(netConn net.Conn) *Conn {
	return &Conn{
		id:   uuid.NewString(),
		conn: netConn,
	}
}

// ID returns the connection identifier
func (c *Conn) ID() string { return c.id }

// LocalAddr returns the local address
func (c *Conn) LocalAddr() net.Addr { return c.conn.LocalAddr() }

// RemoteAddr returns the peer address
func (c *Conn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// RemoteIP returns the peer address without the port
func (c *Conn) RemoteIP() string {
	addr := c.conn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// OnRequest registers the handler invoked for each decoded request
func (c *Conn) OnRequest(handler RequestHandler) {
	c.requestHandler = handler
}

// OnError registers the handler invoked for stream and decode faults
func (c *Conn) OnError(handler ErrorHandler) {
	c.errorHandler = handler
}

// OnClose registers the handler invoked once when the connection closes
func (c *Conn) OnClose(handler CloseHandler) {
	c.closeHandler = handler
}

// IsClosed reports whether the connection has closed
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Write sends raw bytes to the peer. After close it refuses with
// ErrConnClosed: a write to a closed connection is never attempted.
func (c *Conn) Write(data []byte) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	_, err := c.conn.Write(data)
	return err
}

// Close closes the connection and fires the close handler. Safe to call
// more than once; only the first call does anything.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := c.conn.Close()
	if c.closeHandler != nil {
		c.closeHandler()
	}
	return err
}

// serve reads the connection until it closes. Decode faults are reported
// and the stream keeps going; read faults end the connection. A clean EOF
// is a closure, not a fault, and reaches only the close handler.
func (c *Conn) serve() {
	defer c.Close()

	reader := bufio.NewReader(c.conn)
	for !c.closed.Load() {
		data, err := message.ReadMessage(reader)
		if err != nil {
			if c.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			if c.errorHandler != nil {
				c.errorHandler(err)
			}
			return
		}

		req, err := message.ParseRequest(data)
		if err != nil {
			if c.errorHandler != nil {
				c.errorHandler(err)
			}
			continue
		}

		if c.requestHandler != nil {
			c.requestHandler(req)
		}
	}
}
