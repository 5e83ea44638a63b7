package boxio

import (
	"sync"
)

// BoxIo is one full-duplex, independently-ordered stream multiplexed over a
// connection's single underlying carrier. A BoxIo is obtained either by
// opening a new stream locally (Client.Open) or by receiving one opened by
// the peer (Session.Next).
//
// A BoxIo is safe for concurrent use by one reading goroutine and one
// writing goroutine. It is not safe for concurrent Read calls among
// themselves, nor for concurrent Write calls among themselves.
type BoxIo struct {
	connection *connection
	id         StreamID
	entry      *streamEntry

	closeOnce sync.Once
}

// newBoxIo constructs a BoxIo bound to id, backed by entry's inbound queue.
func newBoxIo(c *connection, id StreamID, entry *streamEntry) *BoxIo {
	return &BoxIo{
		connection: c,
		id:         id,
		entry:      entry,
	}
}

// ID returns the stream's identifier.
func (b *BoxIo) ID() StreamID {
	return b.id
}

// LocalAddr returns a diagnostic net.Addr identifying this stream.
func (b *BoxIo) LocalAddr() streamAddress {
	return streamAddress{remote: false, id: b.id}
}

// RemoteAddr returns a diagnostic net.Addr identifying this stream's remote
// side. Since both sides of a stream share the same identifier, this differs
// from LocalAddr only cosmetically.
func (b *BoxIo) RemoteAddr() streamAddress {
	return streamAddress{remote: true, id: b.id}
}

// Read blocks until a payload addressed to this stream is available,
// returning ErrClosed if the stream or its connection has been closed in
// the interim without one arriving.
func (b *BoxIo) Read() ([]byte, error) {
	select {
	case payload := <-b.entry.inbound:
		return payload, nil
	case <-b.entry.done:
		return nil, ErrClosed
	case <-b.connection.closed:
		return nil, ErrClosed
	}
}

// Write tags payload with this stream's identifier and enqueues it for
// transmission. It returns as soon as the frame is queued for the muxer, not
// once it has actually been written to the carrier; delivery is not
// acknowledged. It returns ErrClosed if the stream or its connection has
// already been closed.
func (b *BoxIo) Write(payload []byte) error {
	if isClosed(b.entry.done) || isClosed(b.connection.closed) {
		return ErrClosed
	}
	frame := tag(b.id, payload)
	select {
	case b.connection.outbound <- outboundCommand{frame: frame}:
		return nil
	case <-b.entry.done:
		return ErrClosed
	case <-b.connection.closed:
		return ErrClosed
	}
}

// Close removes this stream's routing table entry, unblocking any pending
// Read or Write on it, and enqueues the connection-wide Close command.
//
// Close is coarse-grained: because the wire protocol carries no per-stream
// close frame, closing any one BoxIo tears down the muxer for the entire
// connection, including every other stream sharing it. See DESIGN.md for the
// rationale. Callers that want to close only their own half of a stream
// without affecting sibling streams have no way to do so; this mirrors the
// system this package's design is grounded on.
func (b *BoxIo) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.connection.closeStream(b.id, b.entry)
		err = b.connection.enqueueClose()
	})
	return err
}
