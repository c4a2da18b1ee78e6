package server

import "errors"

var (
	// ErrNegotiationTimeout is surfaced through the session error handler
	// when the media plane does not answer within the configured deadline.
	// The request fails with 504 and the connection is closed.
	ErrNegotiationTimeout = errors.New("media-plane negotiation timed out")
)
