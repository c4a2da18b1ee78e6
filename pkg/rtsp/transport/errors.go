package transport

import "errors"

var (
	ErrConnClosed       = errors.New("connection closed")
	ErrAlreadyListening = errors.New("already listening")
)
