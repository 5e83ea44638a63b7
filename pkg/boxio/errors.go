package boxio

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned from stream and connection operations that fail
	// because the corresponding task counterpart (demuxer, muxer, or their
	// queues) is gone.
	ErrClosed = errors.New("closed")
	// errFormatInvalid indicates that a frame body was shorter than the
	// 16-byte stream identifier. It never leaves this package: per-frame
	// format errors are swallowed by the demux loop (see connection.go).
	errFormatInvalid = errors.New("frame format invalid")
)

// IoFailure wraps a transport-level failure encountered during connect,
// listen, or accept. Per-frame I/O failures inside the demux loop are not
// reported this way; they are swallowed and the loop continues.
type IoFailure struct {
	// Op names the operation that failed (e.g. "dial", "listen", "accept").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements error.Error.
func (f *IoFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

// Unwrap allows IoFailure to participate in errors.Is/errors.As chains.
func (f *IoFailure) Unwrap() error {
	return f.Err
}

// newIoFailure constructs an *IoFailure, or returns nil if err is nil.
func newIoFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IoFailure{Op: op, Err: err}
}
