package mediaplane

import "errors"

var (
	// ErrClientClosed is returned by calls made after the client closed or
	// after the media server connection was lost.
	ErrClientClosed = errors.New("media plane client closed")

	// ErrNoPipeline is returned when an operation needs a pipeline that has
	// not been built yet.
	ErrNoPipeline = errors.New("media pipeline not created")
)
