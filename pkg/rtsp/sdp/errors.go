package sdp

import "errors"

var (
	ErrInvalidDescription = errors.New("invalid session description")
	ErrMalformedAnswer    = errors.New("malformed session description answer")
)
