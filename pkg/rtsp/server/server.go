package server

import (
	"log/slog"
	"net"
	"time"

	"github.com/arzzra/rtsp_gateway/pkg/rtsp/transport"
)

// DefaultNegotiationTimeout bounds media-plane awaits when the config
// leaves the timeout unset.
const DefaultNegotiationTimeout = 10 * time.Second

// SessionHandler receives each new session, synchronously, before its
// first request is read.
type SessionHandler func(*Session)

// Config configures the server
type Config struct {
	// NegotiationTimeout bounds each setup/play/teardown await so a hung
	// media plane fails the request with 504 instead of stalling the
	// connection forever.
	NegotiationTimeout time.Duration
}

// Server accepts control connections and runs one Session per connection
type Server struct {
	listener           *transport.Listener
	sessionHandler     SessionHandler
	negotiationTimeout time.Duration
}

// New creates a server
func New(cfg Config) *Server {
	if cfg.NegotiationTimeout <= 0 {
		cfg.NegotiationTimeout = DefaultNegotiationTimeout
	}

	s := &Server{
		listener:           transport.NewListener(),
		negotiationTimeout: cfg.NegotiationTimeout,
	}
	s.listener.OnConnection(s.handleConn)
	return s
}

// OnSession registers the callback that attaches capabilities to each new
// session. Register before Listen: sessions arriving without it have no
// capabilities and answer 501 to everything session-affecting.
func (s *Server) OnSession(handler SessionHandler) {
	s.sessionHandler = handler
}

// Listen starts accepting control connections on addr
func (s *Server) Listen(addr string) error {
	if err := s.listener.Listen(addr); err != nil {
		return err
	}
	slog.Info("control server listening", slog.String("addr", s.listener.Addr().String()))
	return nil
}

// Addr returns the bound address
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting and closes every open session
func (s *Server) Close() error {
	return s.listener.Close()
}

// handleConn wires one accepted connection into a session. The session
// callback runs first, then the request/error/close handlers are attached,
// all before the connection's read loop starts.
func (s *Server) handleConn(c *transport.Conn) {
	sess := newSession(c, s.negotiationTimeout)

	if s.sessionHandler != nil {
		s.sessionHandler(sess)
	}

	c.OnRequest(sess.handleRequest)
	c.OnError(sess.handleTransportError)
	c.OnClose(sess.handleClose)

	sessionsActive.Inc()
	sess.log.Info("session opened", slog.String("remote", c.RemoteIP()))
}
