package boxio

import (
	"net"
)

// Session is the accepting side of a multiplexed connection: it is produced
// by Listener.Accept and surfaces remotely-initiated streams as they arrive.
type Session struct {
	connection *connection
}

// Next blocks until the peer opens a new stream, returning it. Streams are
// surfaced in the order their introducing frame was received. Each
// previously-unseen identifier is surfaced exactly once; later frames for it
// are routed to the stream already returned.
func (s *Session) Next() (*BoxIo, error) {
	return s.connection.next()
}

// Close enqueues the connection-wide Close command, shutting down the
// muxer. See BoxIo.Close for the coarse-grained semantics this implies.
func (s *Session) Close() error {
	return s.connection.enqueueClose()
}

// Shutdown closes the underlying carrier unconditionally, immediately
// terminating both the demuxer and the muxer.
func (s *Session) Shutdown() error {
	return s.connection.Close()
}

// LocalAddr returns a diagnostic net.Addr for the connection.
func (s *Session) LocalAddr() net.Addr {
	return connectionAddress{}
}
