package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/arzzra/rtsp_gateway/pkg/rtsp/headers"
	"github.com/arzzra/rtsp_gateway/pkg/rtsp/message"
	"github.com/arzzra/rtsp_gateway/pkg/rtsp/sdp"
)

// sdpMediaType is the session-description media type required in the
// Accept header of DESCRIBE requests.
const sdpMediaType = "application/sdp"

// placeholderSessionID is the fixed session identifier. One session per
// connection is supported, so the value is a label, never a key.
const placeholderSessionID uint64 = 12345678

// dateLayout is RFC 1123 with the GMT zone the protocol requires
const dateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// handleRequest dispatches one decoded request and writes exactly one
// response for it.
func (sess *Session) handleRequest(req *message.Request) {
	resp, closeAfter := sess.dispatch(req)

	requestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	sess.writeResponse(resp)
	if closeAfter {
		sess.conn.Close()
	}
}

// dispatch routes a request to its method handler. CSeq echo and Date are
// populated before method processing so they are present on error paths
// too. The returned flag asks the caller to close the connection once the
// response is out.
func (sess *Session) dispatch(req *message.Request) (*message.Response, bool) {
	sess.log.Debug("request",
		slog.String("method", req.Method),
		slog.String("uri", req.URI))

	resp := message.NewResponse(message.StatusOK)
	if cseq := req.GetHeader("CSeq"); cseq != "" {
		resp.SetHeader("CSeq", cseq)
	}
	resp.SetHeader("Date", time.Now().UTC().Format(dateLayout))

	closeAfter := false
	switch req.Method {
	case message.MethodOptions:
		sess.handleOptions(resp)
	case message.MethodDescribe:
		sess.handleDescribe(req, resp)
	case message.MethodSetup:
		closeAfter = sess.handleSetup(req, resp)
	case message.MethodPlay:
		closeAfter = sess.handlePlay(req, resp)
	case message.MethodTeardown:
		closeAfter = sess.handleTeardown(req, resp)
	default:
		sess.log.Debug("unknown method", slog.String("method", req.Method))
		resp.StatusCode = message.StatusNotImplemented
	}

	return resp, closeAfter
}

// handleOptions advertises the supported method set
func (sess *Session) handleOptions(resp *message.Response) {
	resp.SetHeader("Public", strings.Join(message.Methods(), ", "))
}

// handleDescribe answers a capability-discovery offer: no client ports,
// media port 0, built for the peer's address and family.
func (sess *Session) handleDescribe(req *message.Request, resp *message.Response) {
	if !strings.Contains(req.GetHeader("Accept"), sdpMediaType) {
		resp.StatusCode = message.StatusNotAcceptable
		return
	}

	offer := sdp.BuildOffer(sdp.OfferParams{
		PeerAddr:  sess.conn.RemoteIP(),
		SessionID: placeholderSessionID,
	})

	data, err := offer.Marshal()
	if err != nil {
		resp.StatusCode = message.StatusInternalServerError
		sess.reportError(err)
		return
	}

	resp.SetHeader("Content-Type", sdpMediaType)
	resp.SetBody(data)
}

// handleSetup negotiates transport parameters: it builds an offer with the
// client's ports, awaits the media plane's answer through the setup
// handler, and folds the answered ports and ssrc into the Transport
// response header.
func (sess *Session) handleSetup(req *message.Request, resp *message.Response) bool {
	value := req.GetHeader("Transport")
	if value == "" {
		resp.StatusCode = message.StatusBadRequest
		return false
	}

	tr := headers.ParseTransport(value)
	if tr.IsReliable() {
		resp.StatusCode = message.StatusUnsupportedTransport
		return false
	}

	if sess.setupHandler == nil {
		sess.log.Warn("no setup handler registered")
		resp.StatusCode = message.StatusNotImplemented
		return false
	}

	if !sess.phase.Can(eventSetup) {
		resp.StatusCode = message.StatusMethodNotValidInState
		return false
	}

	// Session id comes from the request when it carries a numeric one,
	// else the placeholder.
	sessionID := placeholderSessionID
	if s := req.GetHeader("Session"); s != "" {
		if id, err := strconv.ParseUint(s, 10, 64); err == nil {
			sessionID = id
		}
	}

	offer := sdp.BuildOffer(sdp.OfferParams{
		PeerAddr:    sess.conn.RemoteIP(),
		SessionID:   sessionID,
		ClientPorts: tr.ClientPorts,
	})
	offerData, err := offer.Marshal()
	if err != nil {
		resp.StatusCode = message.StatusInternalServerError
		sess.reportError(err)
		return false
	}

	ctx, cancel := sess.negotiationContext()
	defer cancel()

	start := time.Now()
	answer, err := sess.setupHandler(ctx, string(offerData))
	negotiateDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return sess.failNegotiation(resp, err)
	}

	params, err := sdp.ExtractAnswer([]byte(answer))
	if err != nil {
		mediaPlaneErrors.Inc()
		resp.StatusCode = message.StatusInternalServerError
		sess.reportError(err)
		return false
	}

	serverPorts := []int{params.RTPPort}
	if params.RTCPPort > 0 {
		serverPorts = append(serverPorts, params.RTCPPort)
	}

	resp.SetHeader("Transport", tr.FormatResponse(serverPorts, params.SSRC))
	resp.SetHeader("Session", strconv.FormatUint(placeholderSessionID, 10))

	sess.advance(eventSetup)
	return false
}

// handlePlay starts playback through the play handler
func (sess *Session) handlePlay(req *message.Request, resp *message.Response) bool {
	if sess.playHandler == nil {
		sess.log.Warn("no play handler registered")
		resp.StatusCode = message.StatusNotImplemented
		return false
	}

	if !sess.phase.Can(eventPlay) {
		resp.StatusCode = message.StatusMethodNotValidInState
		return false
	}

	ctx, cancel := sess.negotiationContext()
	defer cancel()

	if err := sess.playHandler(ctx, req.URI); err != nil {
		return sess.failNegotiation(resp, err)
	}

	sess.advance(eventPlay)
	return false
}

// handleTeardown releases the session through the teardown handler. On
// success the connection is closed once the farewell response is out.
func (sess *Session) handleTeardown(req *message.Request, resp *message.Response) bool {
	if sess.teardownHandler == nil {
		sess.log.Warn("no teardown handler registered")
		resp.StatusCode = message.StatusNotImplemented
		return false
	}

	if !sess.phase.Can(eventTeardown) {
		resp.StatusCode = message.StatusMethodNotValidInState
		return false
	}

	ctx, cancel := sess.negotiationContext()
	defer cancel()

	if err := sess.teardownHandler(ctx, req.URI); err != nil {
		return sess.failNegotiation(resp, err)
	}

	sess.advance(eventTeardown)
	return true
}

// failNegotiation maps a media-plane failure onto the response: a timed
// out await becomes 504 and ends the connection, anything else is an
// internal fault. Both reach the error handler.
func (sess *Session) failNegotiation(resp *message.Response, err error) bool {
	mediaPlaneErrors.Inc()

	if errors.Is(err, context.DeadlineExceeded) {
		resp.StatusCode = message.StatusGatewayTimeout
		sess.reportError(fmt.Errorf("%w: %v", ErrNegotiationTimeout, err))
		return true
	}

	resp.StatusCode = message.StatusInternalServerError
	sess.reportError(err)
	return false
}
