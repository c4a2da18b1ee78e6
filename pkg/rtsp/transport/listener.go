package transport

import (
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
)

// ConnectionHandler receives each accepted connection, synchronously,
// before its read loop starts.
type ConnectionHandler func(*Conn)

// Listener accepts stream connections and hands each one to the
// registered connection handler. Connections that arrive while no handler
// is registered are closed and dropped.
type Listener struct {
	listener net.Listener
	handler  ConnectionHandler
	closed   atomic.Bool
	wg       sync.WaitGroup

	mu    sync.Mutex
	conns map[string]*Conn
}

// NewListener creates a listener with no connection handler attached
func NewListener() *Listener {
	return &Listener{
		conns: make(map[string]*Conn),
	}
}

// OnConnection registers the connection handler. Register before Listen:
// the handler is what attaches per-connection capabilities, and without it
// accepted connections are dropped.
func (l *Listener) OnConnection(handler ConnectionHandler) {
	l.handler = handler
}

// Listen binds addr on all interfaces and starts accepting
func (l *Listener) Listen(addr string) error {
	if l.listener != nil {
		return ErrAlreadyListening
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	l.listener = listener

	l.wg.Add(1)
	go l.acceptLoop()

	return nil
}

// Addr returns the bound address
func (l *Listener) Addr() net.Addr {
	if l.listener == nil {
		return nil
	}
	return l.listener.Addr()
}

// Close stops accepting, closes every tracked connection and waits for
// the per-connection loops to finish. Idempotent.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}

	if l.listener != nil {
		l.listener.Close()
	}

	l.mu.Lock()
	conns := make([]*Conn, 0, len(l.conns))
	for _, conn := range l.conns {
		conns = append(conns, conn)
	}
	l.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}

	l.wg.Wait()
	return nil
}

func (l *Listener) acceptLoop() {
	defer l.wg.Done()

	for !l.closed.Load() {
		netConn, err := l.listener.Accept()
		if err != nil {
			if l.closed.Load() {
				return
			}
			slog.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}

		if l.handler == nil {
			slog.Debug("no connection handler registered, dropping connection",
				slog.String("remote", netConn.RemoteAddr().String()))
			netConn.Close()
			continue
		}

		conn := newConn(netConn)
		if !l.track(conn) {
			conn.Close()
			return
		}

		// The handler attaches capabilities before any request can arrive
		l.handler(conn)

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			conn.serve()
			l.untrack(conn)
		}()
	}
}

// track registers a conn for Close to reach. A conn racing Close is
// refused and stays the caller's to close; Close only reaches conns that
// made it into the map before its snapshot.
func (l *Listener) track(conn *Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed.Load() {
		return false
	}
	l.conns[conn.ID()] = conn
	return true
}

func (l *Listener) untrack(conn *Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.conns, conn.ID())
}
