package message

import "errors"

var (
	// Parser errors
	ErrInvalidMessage     = errors.New("invalid RTSP message")
	ErrInvalidRequestLine = errors.New("invalid request line")
	ErrInvalidVersion     = errors.New("invalid RTSP version")
	ErrInvalidHeader      = errors.New("invalid header format")

	// Size errors
	ErrMessageTooLarge = errors.New("message too large")
	ErrHeaderTooLarge  = errors.New("header too large")
	ErrTooManyHeaders  = errors.New("too many headers")
)
