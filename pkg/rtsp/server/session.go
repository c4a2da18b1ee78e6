// Package server implements the control-protocol core: a listener that
// turns each accepted connection into a Session, and a per-session
// dispatcher that negotiates media delivery through application-supplied
// setup/play/teardown handlers.
package server

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/looplab/fsm"

	"github.com/arzzra/rtsp_gateway/pkg/rtsp/message"
	"github.com/arzzra/rtsp_gateway/pkg/rtsp/transport"
)

// SetupHandler negotiates one media stream: it receives the serialized
// offer and returns the media plane's serialized answer.
type SetupHandler func(ctx context.Context, offer string) (answer string, err error)

// PlayHandler starts media flow for the request target
type PlayHandler func(ctx context.Context, uri string) error

// TeardownHandler releases media resources for the request target
type TeardownHandler func(ctx context.Context, uri string) error

// transportConn is the slice of the transport connection a session needs
type transportConn interface {
	ID() string
	RemoteIP() string
	IsClosed() bool
	Write(data []byte) error
	Close() error
}

// Session is the per-connection protocol state: the capability surface the
// owning application plugs its media-plane logic into, and the phase
// machine requests are validated against. Register capabilities inside the
// server's session callback; it runs before the first request is read, so
// registration cannot race with dispatch.
type Session struct {
	conn               transportConn
	phase              *fsm.FSM
	negotiationTimeout time.Duration
	log                *slog.Logger

	setupHandler    SetupHandler
	playHandler     PlayHandler
	teardownHandler TeardownHandler
	errorHandler    func(error)
	closeHandler    func()
}

func newSession(conn transportConn, negotiationTimeout time.Duration) *Session {
	log := slog.With(slog.String("session", conn.ID()))
	return &Session{
		conn:               conn,
		phase:              newPhaseFSM(log),
		negotiationTimeout: negotiationTimeout,
		log:                log,
	}
}

// OnSetup registers the setup capability
func (sess *Session) OnSetup(handler SetupHandler) {
	sess.setupHandler = handler
}

// OnPlay registers the play capability
func (sess *Session) OnPlay(handler PlayHandler) {
	sess.playHandler = handler
}

// OnTeardown registers the teardown capability
func (sess *Session) OnTeardown(handler TeardownHandler) {
	sess.teardownHandler = handler
}

// OnError registers the handler receiving stream faults, negotiation
// timeouts and malformed media-plane answers.
func (sess *Session) OnError(handler func(error)) {
	sess.errorHandler = handler
}

// OnClose registers the handler invoked once when the connection closes,
// whether by the peer, by teardown or by the server.
func (sess *Session) OnClose(handler func()) {
	sess.closeHandler = handler
}

// ID returns the session identifier
func (sess *Session) ID() string {
	return sess.conn.ID()
}

// RemoteIP returns the peer address without the port
func (sess *Session) RemoteIP() string {
	return sess.conn.RemoteIP()
}

// Phase returns the current session phase
func (sess *Session) Phase() string {
	return sess.phase.Current()
}

// Close closes the underlying connection
func (sess *Session) Close() error {
	return sess.conn.Close()
}

// advance fires a phase transition that was already checked with Can
func (sess *Session) advance(event string) {
	if err := sess.phase.Event(context.Background(), event); err != nil {
		sess.log.Debug("phase transition rejected",
			slog.String("event", event),
			slog.String("error", err.Error()))
	}
}

// negotiationContext bounds one media-plane await
func (sess *Session) negotiationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sess.negotiationTimeout)
}

// writeResponse finalizes and writes one response. Content-Length is set
// immediately before the write, and only if the connection is still open:
// a response is never written to a closed connection.
func (sess *Session) writeResponse(resp *message.Response) {
	if sess.conn.IsClosed() {
		sess.log.Debug("connection closed, dropping response",
			slog.Int("status", resp.StatusCode))
		return
	}

	if body := resp.Body(); len(body) > 0 {
		resp.SetHeader("Content-Length", strconv.Itoa(len(body)))
	}

	if err := sess.conn.Write(resp.Bytes()); err != nil {
		if errors.Is(err, transport.ErrConnClosed) {
			return
		}
		sess.reportError(err)
	}
}

// reportError logs a fault and routes it to the registered error handler
func (sess *Session) reportError(err error) {
	sess.log.Error("session error", slog.String("error", err.Error()))
	if sess.errorHandler != nil {
		sess.errorHandler(err)
	}
}

// handleTransportError receives stream and decode faults from the
// connection. Faults do not close the connection by themselves; closure
// is its own event.
func (sess *Session) handleTransportError(err error) {
	sess.log.Warn("transport fault", slog.String("error", err.Error()))
	if sess.errorHandler != nil {
		sess.errorHandler(err)
	}
}

// handleClose runs once when the connection closes
func (sess *Session) handleClose() {
	sessionsActive.Dec()
	sess.log.Info("session closed", slog.String("phase", sess.Phase()))
	if sess.closeHandler != nil {
		sess.closeHandler()
	}
}
